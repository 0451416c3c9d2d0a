package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) cacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or flush the SQLite mine cache",
	}

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List cached minion functions and when they were written",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := a.openCache()
				if err != nil {
					return err
				}
				defer repo.Close()

				entries, err := repo.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(entries)
			},
		},
		&cobra.Command{
			Use:   "flush <minion>...",
			Short: "Drop everything cached for the given minions",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := a.openCache()
				if err != nil {
					return err
				}
				defer repo.Close()

				for _, id := range args {
					if err := repo.Delete(cmd.Context(), id); err != nil {
						return err
					}
					a.logger.Info("flushed minion", zap.String("minion", id))
				}

				remaining, err := repo.ListMinions(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(remaining)
			},
		},
	)

	return cacheCmd
}
