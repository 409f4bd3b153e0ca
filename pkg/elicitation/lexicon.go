package elicitation

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LoadLexicon reads a lexicon from a TOML file. Missing lists fall back to
// the built-in defaults, so an override file can replace just one of them.
func LoadLexicon(path string) (*Lexicon, error) {
	lexicon := &Lexicon{}
	if _, err := toml.DecodeFile(path, lexicon); err != nil {
		return nil, fmt.Errorf("decode lexicon %s: %w", path, err)
	}

	defaults := DefaultLexicon()
	if len(lexicon.VagueTerms) == 0 {
		lexicon.VagueTerms = defaults.VagueTerms
	}
	if len(lexicon.WeakPhrases) == 0 {
		lexicon.WeakPhrases = defaults.WeakPhrases
	}

	return lexicon, nil
}

// Holder hands out the current lexicon and can hot-reload it from a watched
// TOML file. Detection keeps working with the last good lexicon if a reload
// fails.
type Holder struct {
	mu      sync.RWMutex
	lexicon *Lexicon
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewHolder wraps a fixed lexicon. Pass DefaultLexicon() when no override
// file is configured.
func NewHolder(lexicon *Lexicon, logger *zap.Logger) *Holder {
	return &Holder{
		lexicon: lexicon,
		logger:  logger,
	}
}

// Current returns the lexicon to use for the next detection run.
func (h *Holder) Current() *Lexicon {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lexicon
}

// Watch loads the lexicon from path and reloads it whenever the file changes.
func (h *Holder) Watch(path string) error {
	lexicon, err := LoadLexicon(path)
	if err != nil {
		return err
	}
	h.set(lexicon)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	h.watcher = watcher

	go h.watchLoop(path)

	h.logger.Info("watching lexicon file", zap.String("path", path))
	return nil
}

// Close stops the file watcher, if one was started.
func (h *Holder) Close() error {
	if h.watcher == nil {
		return nil
	}
	return h.watcher.Close()
}

func (h *Holder) set(lexicon *Lexicon) {
	h.mu.Lock()
	h.lexicon = lexicon
	h.mu.Unlock()
}

func (h *Holder) watchLoop(path string) {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			// Editors often replace the file rather than write in place
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			lexicon, err := LoadLexicon(path)
			if err != nil {
				h.logger.Warn("lexicon reload failed, keeping previous", zap.Error(err))
				continue
			}

			h.set(lexicon)
			h.logger.Info("lexicon reloaded",
				zap.Int("vague_terms", len(lexicon.VagueTerms)),
				zap.Int("weak_phrases", len(lexicon.WeakPhrases)),
			)

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn("lexicon watcher error", zap.Error(err))
		}
	}
}
