// Package collector refreshes the mine cache by gathering grains from
// minions over SSH.
//
// Each target is dialed once; the fact commands run in sequence and the
// results are stored as the minion's grains.item and network.ip_addrs.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"informer/internal/domain"
)

const (
	defaultPort    = 22
	defaultTimeout = 10 * time.Second
)

// Target is a minion reachable over SSH
type Target struct {
	ID   string
	Host string
	Port int
}

// Store receives gathered mine data
type Store interface {
	Store(ctx context.Context, id, function string, value any) error
}

// Result summarizes one Collect run
type Result struct {
	Collected []string `json:"collected"`
	Failed    []string `json:"failed,omitempty"`
}

// session is an open connection to one minion
type session interface {
	CommandRunner
	io.Closer
}

// Collector gathers grains from minions and writes them to a Store
type Collector struct {
	store    Store
	auth     Auth
	timeout  time.Duration
	commands []FactCommand
	logger   *zap.Logger

	dial func(ctx context.Context, t Target) (session, error)
}

// New creates a collector. timeout bounds each dial and each command.
func New(store Store, auth Auth, timeout time.Duration, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		store:    store,
		auth:     auth,
		timeout:  timeout,
		commands: DefaultFactCommands,
		logger:   logger.Named("collector"),
	}
	c.dial = c.dialSSH
	return c
}

func (c *Collector) dialSSH(ctx context.Context, t Target) (session, error) {
	config, err := c.auth.clientConfig(c.timeout)
	if err != nil {
		return nil, err
	}
	return dialSSH(ctx, t, config, c.timeout)
}

// Collect gathers every target in order. A failing target does not stop the
// run; all failures are returned joined.
func (c *Collector) Collect(ctx context.Context, targets []Target) (*Result, error) {
	res := &Result{Collected: []string{}}
	var errs []error

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if t.Port == 0 {
			t.Port = defaultPort
		}

		if err := c.collectOne(ctx, t); err != nil {
			c.logger.Warn("collect failed",
				zap.String("minion", t.ID),
				zap.String("host", t.Host),
				zap.Error(err))
			res.Failed = append(res.Failed, t.ID)
			errs = append(errs, fmt.Errorf("minion %s: %w", t.ID, err))
			continue
		}
		res.Collected = append(res.Collected, t.ID)
	}

	c.logger.Info("collect finished",
		zap.Int("collected", len(res.Collected)),
		zap.Int("failed", len(res.Failed)))

	return res, errors.Join(errs...)
}

func (c *Collector) collectOne(ctx context.Context, t Target) error {
	if t.ID == "" || t.Host == "" {
		return fmt.Errorf("target needs an id and a host")
	}

	sess, err := c.dial(ctx, t)
	if err != nil {
		return err
	}
	defer sess.Close()

	grains, addrs, err := Gather(ctx, t.ID, sess, c.commands)
	if err != nil {
		return err
	}
	c.logger.Debug("gathered grains",
		zap.String("minion", t.ID),
		zap.Any("grains", grains),
		zap.Strings("ip_addrs", addrs))

	if err := c.store.Store(ctx, t.ID, domain.FunctionGrainsItem, grains); err != nil {
		return err
	}
	return c.store.Store(ctx, t.ID, domain.FunctionIPAddrs, addrs)
}
