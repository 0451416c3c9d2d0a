// Package informer answers service-discovery questions from minion grains:
// which minions hold a role, what one grain of a minion is, and which
// address every minion should be reached on.
//
// Every operation fetches fresh data from the mine and keeps no state
// between calls.
package informer

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"informer/internal/domain"
	"informer/internal/mine"
)

// Service runs role and grain queries against a mine
type Service struct {
	mine   mine.Mine
	logger *zap.Logger
}

// New creates a query service. A nil logger discards diagnostics.
func New(m mine.Mine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		mine:   m,
		logger: logger.Named("informer"),
	}
}

// GetRoles returns the display names of every minion whose roles grain
// contains role. Minions without a roles grain never match, and neither do
// minions whose grains are not a mapping.
func (s *Service) GetRoles(ctx context.Context, role string) ([]string, error) {
	nodes, err := s.mine.Get(ctx, domain.TargetAll, domain.FunctionGrainsItem)
	if err != nil {
		return nil, fmt.Errorf("get roles: %w", err)
	}
	s.logger.Debug("fetched grains",
		zap.String("target", domain.TargetAll),
		zap.Int("minions", len(nodes)),
		zap.Any("nodes", nodes))

	ret := []string{}
	for _, id := range sortedIDs(nodes) {
		grains, err := domain.DecodeGrains(nodes[id])
		if err != nil {
			s.logger.Warn("skipping minion", zap.String("minion", id), zap.Error(err))
			continue
		}
		if grains.HasRole(role) {
			ret = append(ret, domain.RealName(id))
		}
	}
	return ret, nil
}

// GetNodeGrainItem returns the value of one grain on one minion.
// name is remapped with RealName before the query; an already remapped
// name is passed through as is.
func (s *Service) GetNodeGrainItem(ctx context.Context, name, item string) (any, error) {
	name = domain.RealName(name)

	node, err := s.mine.Get(ctx, name, domain.FunctionGrainsItem)
	if err != nil {
		return nil, fmt.Errorf("get grain item: %w", err)
	}

	raw, ok := node[name]
	if !ok {
		return nil, &LookupError{Kind: ErrMinionNotFound, Minion: name, Function: domain.FunctionGrainsItem}
	}
	s.logger.Debug("fetched node details", zap.String("minion", name), zap.Any("grains", raw))

	grains, err := domain.DecodeGrains(raw)
	if err != nil {
		return nil, fmt.Errorf("get grain item: minion %q: %w", name, err)
	}

	value, ok := grains.Item(item)
	if !ok {
		return nil, &LookupError{Kind: ErrGrainNotFound, Minion: name, Function: domain.FunctionGrainsItem, Key: item}
	}
	return value, nil
}

// All maps every minion's display name to its address. The EC2 local
// address wins when present; otherwise the first entry of
// network.ip_addrs is used, fetched one minion at a time.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	nodes, err := s.mine.Get(ctx, domain.TargetAll, domain.FunctionGrainsItem)
	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}

	ret := make(map[string]string, len(nodes))
	for _, id := range sortedIDs(nodes) {
		grains, err := domain.DecodeGrains(nodes[id])
		if err != nil {
			return nil, fmt.Errorf("all: minion %q: %w", id, err)
		}

		addr, ok, err := grains.EC2LocalIPv4()
		if err != nil {
			return nil, fmt.Errorf("all: minion %q: %w", id, err)
		}
		if ok {
			ret[domain.RealName(id)] = addr
			continue
		}

		ip, err := s.firstAddr(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		s.logger.Debug("resolved address from ip_addrs", zap.String("minion", id), zap.String("ip", ip))
		ret[domain.RealName(id)] = ip
	}
	return ret, nil
}

// firstAddr queries network.ip_addrs for a single minion by its raw identity
func (s *Service) firstAddr(ctx context.Context, id string) (string, error) {
	resp, err := s.mine.Get(ctx, id, domain.FunctionIPAddrs)
	if err != nil {
		return "", err
	}

	raw, ok := resp[id]
	if !ok {
		return "", &LookupError{Kind: ErrMinionNotFound, Minion: id, Function: domain.FunctionIPAddrs}
	}

	addrs, err := domain.DecodeAddrs(raw)
	if err != nil {
		return "", fmt.Errorf("minion %q: %w", id, err)
	}
	if len(addrs) == 0 {
		return "", &LookupError{Kind: ErrNoAddress, Minion: id, Function: domain.FunctionIPAddrs}
	}
	return addrs[0], nil
}

func sortedIDs(nodes map[string]any) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
