package sessionscmder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"elicit/cmd/elicit/datadir"
	"elicit/pkg/conversation"
)

const sessionsLongDesc string = `Inspect stored elicitation sessions.

Sessions are read from the per-session JSON files under the data
directory, or from a SQLite database when --db is given.

Examples:
  elicit sessions list
  elicit sessions show 5f8c... --data /var/lib/elicit`

const sessionsShortDesc string = "Inspect stored elicitation sessions"

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	stampStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type sessionsCommander struct {
	dataDir string
	dbPath  string
}

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.dataDir, "data", "d", "", "Path to data directory")
	cmd.PersistentFlags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite database")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List session summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.list(cmd.Context(), cmd)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.show(cmd.Context(), cmd, args[0])
		},
	}

	cmd.AddCommand(listCmd, showCmd)

	return cmd
}

func (c *sessionsCommander) open() (conversation.Store, error) {
	if c.dbPath != "" {
		store, err := conversation.NewSQLiteStore(c.dbPath)
		if err != nil {
			return nil, fmt.Errorf("could not open database %s: %w", c.dbPath, err)
		}
		return store, nil
	}

	dir := datadir.Resolve(c.dataDir)
	store, err := conversation.NewFileStore(filepath.Join(dir, "conversations"))
	if err != nil {
		return nil, fmt.Errorf("could not open data directory %s: %w", dir, err)
	}
	return store, nil
}

func (c *sessionsCommander) list(ctx context.Context, cmd *cobra.Command) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("could not list sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %8s  %5s  %s\n",
		"SESSION", "CREATED", "MESSAGES", "REQS", "PROJECT")
	for _, summary := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %8d  %5d  %s\n",
			summary.SessionID,
			summary.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			summary.MessageCount,
			summary.RequirementsCount,
			summary.ProjectName,
		)
	}

	return nil
}

func (c *sessionsCommander) show(ctx context.Context, cmd *cobra.Command, id string) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("could not load session %s: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s (created %s)\n\n",
		session.ID, session.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	for _, msg := range session.Messages {
		style := assistantStyle
		if msg.Role == "user" {
			style = userStyle
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n\n",
			style.Render(msg.Role+":"),
			stampStyle.Render(msg.Timestamp.Local().Format("15:04:05")),
			msg.Content,
		)
	}

	if len(session.Metadata.Requirements) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Elicited requirements:")
		for i, req := range session.Metadata.Requirements {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, req.Text)
		}
	}

	return nil
}
