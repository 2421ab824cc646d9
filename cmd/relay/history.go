package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpt/klein-relay/internal/history"
	"github.com/fpt/klein-relay/internal/infra"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset stored channel history",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List channels with stored history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openStore(cmd, opts)
				if err != nil {
					return err
				}
				ids := store.Channels()
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stored history.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d turns\n", id, len(store.Get(id)))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <channel>",
			Short: "Print a channel's stored history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(cmd, opts)
				if err != nil {
					return err
				}
				turns := store.Get(args[0])
				if len(turns) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No history for channel %s.\n", args[0])
					return nil
				}
				for _, t := range turns {
					fmt.Fprintln(cmd.OutOrStdout(), t.TruncatedString())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear <channel>",
			Short: "Delete a channel's stored history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(cmd, opts)
				if err != nil {
					return err
				}
				if err := store.Clear(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared history for channel %s.\n", args[0])
				return nil
			},
		},
	)

	return cmd
}

// openStore loads the history file named by the effective config. Log lines
// go to stderr only, never to the relay log file.
func openStore(cmd *cobra.Command, opts *rootOptions) (*history.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := pkgLogger.NewConsoleOnlyLogger(pkgLogger.LogLevel(opts.logLevel), cmd.ErrOrStderr())
	return history.NewStore(infra.NewHistoryFileRepository(cfg.HistoryFile), cfg.HistoryLimit, logger.WithComponent("history")), nil
}
