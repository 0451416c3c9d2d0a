package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	nmap "github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"
)

// Scanner discovers minions by scanning networks for an open SSH port
type Scanner struct {
	port   int
	logger *zap.Logger

	run func(ctx context.Context, cidr string, port int) (*nmap.Run, error)
}

// NewScanner creates a scanner probing port (22 when zero)
func NewScanner(port int, logger *zap.Logger) *Scanner {
	if port == 0 {
		port = defaultPort
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scanner{
		port:   port,
		logger: logger.Named("scanner"),
	}
	s.run = s.runNmap
	return s
}

// Discover scans every network (CIDR range or single address) and returns
// one target per host with the port open. A host is identified by its
// first reverse-DNS name, or by its address when it has none.
func (s *Scanner) Discover(ctx context.Context, networks []string) ([]Target, error) {
	var (
		found []Target
		errs  []error
		seen  = make(map[string]bool)
	)

	for _, network := range networks {
		s.logger.Info("scanning", zap.String("network", network), zap.Int("port", s.port))

		result, err := s.run(ctx, network, s.port)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", network, err))
			continue
		}

		for _, t := range targetsFromRun(result, s.port) {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			found = append(found, t)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	s.logger.Info("scan finished", zap.Int("hosts", len(found)))

	return found, errors.Join(errs...)
}

func (s *Scanner) runNmap(ctx context.Context, cidr string, port int) (*nmap.Run, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(cidr),
		nmap.WithPorts(strconv.Itoa(port)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, err
	}
	if warnings != nil && len(*warnings) > 0 {
		s.logger.Warn("nmap warnings", zap.String("network", cidr), zap.Strings("warnings", *warnings))
	}
	return result, nil
}

// targetsFromRun keeps hosts that are up with port open
func targetsFromRun(result *nmap.Run, port int) []Target {
	if result == nil {
		return nil
	}

	var out []Target
	for _, host := range result.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}
		if !portOpen(host.Ports, port) {
			continue
		}

		ip := ""
		for _, addr := range host.Addresses {
			if addr.AddrType == "ipv4" {
				ip = addr.Addr
				break
			}
		}
		if ip == "" {
			ip = host.Addresses[0].Addr
		}

		id := ip
		if len(host.Hostnames) > 0 && host.Hostnames[0].Name != "" {
			id = strings.TrimSuffix(host.Hostnames[0].Name, ".")
		}

		out = append(out, Target{ID: id, Host: ip, Port: port})
	}
	return out
}

func portOpen(ports []nmap.Port, port int) bool {
	for _, p := range ports {
		if int(p.ID) == port && p.State.State == "open" {
			return true
		}
	}
	return false
}

// MergeTargets appends discovered targets to the configured ones. A
// discovered host already configured, by id or by address, is dropped.
func MergeTargets(configured, discovered []Target) []Target {
	ids := make(map[string]bool, len(configured))
	hosts := make(map[string]bool, len(configured))
	out := make([]Target, 0, len(configured)+len(discovered))

	for _, t := range configured {
		ids[t.ID] = true
		hosts[t.Host] = true
		out = append(out, t)
	}
	for _, t := range discovered {
		if ids[t.ID] || hosts[t.Host] {
			continue
		}
		ids[t.ID] = true
		hosts[t.Host] = true
		out = append(out, t)
	}
	return out
}
