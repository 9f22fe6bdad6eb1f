package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the metrics warehouse",
	Long:  "Create the configuration directory with a default config.yaml and initialize the SQLite database schema.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Config dir and default config.yaml were created by the root
	// command's config loading; opening the store creates the schema.
	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Datax warehouse initialized")
	return nil
}
