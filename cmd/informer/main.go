package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"informer/internal/codec"
	"informer/internal/config"
	"informer/internal/informer"
	"informer/internal/logging"
	"informer/internal/mine"
	"informer/internal/repository"
	"informer/internal/repository/sqlite"
)

// app carries state shared by every subcommand
type app struct {
	// Flags
	configPath string
	output     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:   "informer",
		Short: "Query minion roles and addresses from the mine",
		Long: `informer answers service-discovery questions from the grains minions
publish to the mine: which minions carry a role, what a grain of one
minion is, and which address every minion is reached on.

Mine data is read from a SQLite cache (refreshed with "informer collect")
or from a YAML snapshot file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search INFORMER_CONFIG, ./informer.yaml, XDG dirs)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		a.rolesCmd(),
		a.grainCmd(),
		a.allCmd(),
		a.callCmd(),
		a.collectCmd(),
		a.cacheCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

// setup loads config and builds the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = zapcore.DebugLevel.String()
	}
	a.logger, err = logging.New(level, cfg.Log.Format)
	if err != nil {
		return err
	}

	if path != "" {
		a.logger.Debug("loaded config", zap.String("path", path))
	}
	a.logger.Debug("effective config", zap.String("summary", cfg.Summary()))
	return nil
}

// openMine returns the configured mine and a function releasing it
func (a *app) openMine() (mine.Mine, func(), error) {
	switch a.cfg.Mine.Backend {
	case config.BackendFile:
		m, err := mine.LoadFile(a.cfg.Mine.File)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	default:
		repo, err := a.openCache()
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	}
}

func (a *app) openCache() (repository.MineCache, error) {
	repo, err := sqlite.New(a.cfg.Mine.Database)
	if err != nil {
		return nil, fmt.Errorf("open mine cache %s: %w", a.cfg.Mine.Database, err)
	}
	return repo, nil
}

// withService runs fn against a query service on the configured mine
func (a *app) withService(fn func(svc *informer.Service) (any, error)) error {
	m, release, err := a.openMine()
	if err != nil {
		return err
	}
	defer release()

	result, err := fn(informer.New(m, a.logger))
	if err != nil {
		return err
	}
	return a.print(result)
}

func (a *app) print(v any) error {
	enc, err := codec.ForFormat(a.output)
	if err != nil {
		return err
	}
	return enc.Encode(a.out, v)
}
