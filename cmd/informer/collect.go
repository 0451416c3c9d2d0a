package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"informer/internal/collector"
	"informer/internal/config"
)

func (a *app) collectCmd() *cobra.Command {
	var scan []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Refresh the mine cache from every configured target over SSH",
		Long: `Refresh the mine cache from every configured target over SSH.

With --scan, the given networks are scanned with nmap first and every host
with the SSH port open is collected as well. Discovered hosts are named by
reverse DNS, or by address when they have none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := a.cfg.Collector
			list := targets(cc)

			if len(scan) > 0 {
				found, err := collector.NewScanner(cc.Port, a.logger).Discover(cmd.Context(), scan)
				if err != nil {
					if len(found) == 0 {
						return err
					}
					a.logger.Warn("scan incomplete", zap.Error(err))
				}
				list = collector.MergeTargets(list, found)
			}

			repo, err := a.openCache()
			if err != nil {
				return err
			}
			defer repo.Close()

			c := collector.New(repo, collector.Auth{
				User:       cc.User,
				KeyFile:    cc.KeyFile,
				Passphrase: cc.Passphrase,
				Password:   cc.Password,
			}, cc.Timeout.Duration(), a.logger)

			res, collectErr := c.Collect(cmd.Context(), list)
			if err := a.print(res); err != nil {
				return err
			}
			return collectErr
		},
	}

	cmd.Flags().StringSliceVar(&scan, "scan", nil, "networks to scan for SSH hosts (CIDR or address, repeatable)")
	return cmd
}

// targets converts configured targets, filling in the default port
func targets(cc config.CollectorConfig) []collector.Target {
	out := make([]collector.Target, 0, len(cc.Targets))
	for _, t := range cc.Targets {
		port := t.Port
		if port == 0 {
			port = cc.Port
		}
		out = append(out, collector.Target{ID: t.ID, Host: t.Host, Port: port})
	}
	return out
}
