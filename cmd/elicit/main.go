package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "elicit/cmd/elicit/chat"
	exportcmder "elicit/cmd/elicit/export"
	sessionscmder "elicit/cmd/elicit/sessions"
)

func main() {
	root := &cobra.Command{
		Use:           "elicit",
		Short:         "Requirements elicitation assistant CLI",
		Long:          "Inspect elicitation sessions, export generated SRS documents, and chat with a running elicitd server.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		sessionscmder.NewSessionsCmd(),
		exportcmder.NewExportCmd(),
		chatcmder.NewChatCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
