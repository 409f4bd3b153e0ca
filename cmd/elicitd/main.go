package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"elicit/pkg/logger"
	"elicit/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to TOML config file")
	listenAddr := flag.String("listen", ":5000", "Address to listen on")
	upstreamURL := flag.String("upstream", "http://localhost:11434", "Upstream Ollama-compatible endpoint URL")
	model := flag.String("model", "llama3.1:8b", "Model name for chat requests")
	dataDir := flag.String("data", "artifacts", "Directory for conversations and specifications")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides JSON file storage)")
	lexiconPath := flag.String("lexicon", "", "Path to TOML ambiguity lexicon (hot-reloaded)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set up logger
	log := logger.New(*debug)
	defer log.Sync()

	config := server.Config{
		ListenAddr:  *listenAddr,
		UpstreamURL: *upstreamURL,
		Model:       *model,
		APIKey:      os.Getenv("OLLAMA_API_KEY"),
		DataDir:     *dataDir,
		DBPath:      *dbPath,
		LexiconPath: *lexiconPath,
	}

	// Config file fills in anything the flags left at defaults; flags that
	// were set explicitly win
	if *configPath != "" {
		if err := server.LoadConfig(*configPath, &config); err != nil {
			log.Fatal("failed to load config", zap.Error(err))
		}
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "listen":
				config.ListenAddr = *listenAddr
			case "upstream":
				config.UpstreamURL = *upstreamURL
			case "model":
				config.Model = *model
			case "data":
				config.DataDir = *dataDir
			case "db":
				config.DBPath = *dbPath
			case "lexicon":
				config.LexiconPath = *lexiconPath
			}
		})
	}

	log.Info("elicitation server starting",
		zap.String("listen", config.ListenAddr),
		zap.String("upstream", config.UpstreamURL),
		zap.String("model", config.Model),
		zap.Bool("debug", *debug),
	)

	srv, err := server.New(config, log)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Run(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
