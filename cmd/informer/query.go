package main

import (
	"strings"

	"github.com/spf13/cobra"

	"informer/internal/informer"
)

func (a *app) rolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles <role>",
		Short: "List minions whose roles grain contains role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *informer.Service) (any, error) {
				return svc.GetRoles(cmd.Context(), args[0])
			})
		},
	}
}

func (a *app) grainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grain <minion> <item>",
		Short: "Show one grain of one minion",
		Long: `Show one grain of one minion.

The minion name "master" is looked up as "saltmaster".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *informer.Service) (any, error) {
				return svc.GetNodeGrainItem(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func (a *app) allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Map every minion to its address",
		Long: `Map every minion to its address.

The EC2 local IPv4 grain is used when present, otherwise the first entry
of network.ip_addrs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *informer.Service) (any, error) {
				return svc.All(cmd.Context())
			})
		},
	}
}

func (a *app) callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <function> [args...]",
		Short: "Invoke a function by name with positional arguments",
		Long: `Invoke a function by name with positional arguments, as the host
runtime does.

Functions: ` + strings.Join(informer.Functions(), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *informer.Service) (any, error) {
				return svc.Call(cmd.Context(), args[0], args[1:]...)
			})
		},
	}
}
