package exportcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"elicit/cmd/elicit/datadir"
	"elicit/pkg/artifact"
)

const exportLongDesc string = `Export the latest generated SRS document for a session.

The document is rendered as markdown when writing to a terminal.
With --out the rendered text is stripped of escape sequences and
written to a file instead.

Examples:
  elicit export 5f8c...
  elicit export 5f8c... --out srs.txt`

const exportShortDesc string = "Export the latest SRS document for a session"

type exportCommander struct {
	dataDir string
	outPath string
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.dataDir, "data", "d", "", "Path to data directory")
	cmd.Flags().StringVarP(&cmder.outPath, "out", "o", "", "Write to file instead of stdout")

	return cmd
}

func (c *exportCommander) run(cmd *cobra.Command, sessionID string) error {
	dir := datadir.Resolve(c.dataDir)

	store, err := artifact.NewStore(filepath.Join(dir, "specifications"))
	if err != nil {
		return fmt.Errorf("could not open artifact store: %w", err)
	}

	name, content, err := store.Latest(sessionID)
	if err != nil {
		return fmt.Errorf("could not load specification: %w", err)
	}

	rendered := c.render(content)

	if c.outPath != "" {
		if err := os.WriteFile(c.outPath, []byte(ansi.Strip(rendered)), 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", c.outPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", c.outPath, name)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

// render pretty-prints the SRS markdown when stdout is a color-capable
// terminal, and returns it untouched otherwise.
func (c *exportCommander) render(content string) string {
	if c.outPath == "" && !term.IsTerminal(int(os.Stdout.Fd())) {
		return content
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return rendered
}
