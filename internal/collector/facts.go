package collector

import (
	"context"
	"fmt"
	"net"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandRunner runs a shell command on a minion and returns its output
type CommandRunner interface {
	Run(ctx context.Context, cmd string) (string, error)
}

// FactCommand defines a command to run over SSH for grain gathering
type FactCommand struct {
	Name     string                                      // e.g., "custom_grains"
	Command  string                                      // e.g., "cat /etc/salt/grains"
	Optional bool                                        // failures are ignored
	Parser   func(output string) (map[string]any, error) // Parse command output into grains
}

// DefaultFactCommands are the standard grain-gathering commands
var DefaultFactCommands = []FactCommand{
	{
		Name:    "hostname",
		Command: "hostname -f 2>/dev/null || hostname",
		Parser:  parseHostname,
	},
	{
		Name:     "custom_grains",
		Command:  "cat /etc/salt/grains 2>/dev/null",
		Optional: true,
		Parser:   parseGrainsFile,
	},
	{
		Name:     "ec2_local_ipv4",
		Command:  "curl -sf -m 2 http://169.254.169.254/latest/meta-data/local-ipv4",
		Optional: true,
		Parser:   parseEC2LocalIPv4,
	},
}

// AddrCommand lists the minion's addresses for network.ip_addrs
const AddrCommand = "hostname -I 2>/dev/null || ip -o -4 addr show | awk '{print $4}' | cut -d/ -f1"

// Gather runs the fact commands on one minion and returns its grains.item
// record and its network.ip_addrs list
func Gather(ctx context.Context, id string, runner CommandRunner, commands []FactCommand) (map[string]any, []string, error) {
	grains := map[string]any{
		"id": id,
	}

	for _, fc := range commands {
		out, err := runner.Run(ctx, fc.Command)
		if err != nil {
			if fc.Optional {
				continue
			}
			return nil, nil, fmt.Errorf("%s: %w", fc.Name, err)
		}

		facts, err := fc.Parser(out)
		if err != nil {
			if fc.Optional {
				continue
			}
			return nil, nil, fmt.Errorf("parse %s: %w", fc.Name, err)
		}
		for k, v := range facts {
			grains[k] = v
		}
	}

	out, err := runner.Run(ctx, AddrCommand)
	if err != nil {
		return nil, nil, fmt.Errorf("ip_addrs: %w", err)
	}

	return grains, parseIPAddrs(out), nil
}

// parseHostname extracts hostname grains from the hostname command
func parseHostname(output string) (map[string]any, error) {
	hostname := strings.TrimSpace(output)
	if hostname == "" {
		return nil, fmt.Errorf("empty hostname")
	}

	facts := map[string]any{
		"fqdn": hostname,
		"host": hostname,
	}

	// Extract short hostname if FQDN
	if idx := strings.Index(hostname, "."); idx > 0 {
		facts["host"] = hostname[:idx]
		facts["domain"] = hostname[idx+1:]
	}

	return facts, nil
}

// parseGrainsFile reads the static grains file (YAML)
func parseGrainsFile(output string) (map[string]any, error) {
	if strings.TrimSpace(output) == "" {
		return map[string]any{}, nil
	}

	var facts map[string]any
	if err := yaml.Unmarshal([]byte(output), &facts); err != nil {
		return nil, fmt.Errorf("invalid grains file: %w", err)
	}
	if facts == nil {
		facts = map[string]any{}
	}
	return facts, nil
}

// parseEC2LocalIPv4 validates the instance metadata response
func parseEC2LocalIPv4(output string) (map[string]any, error) {
	addr := strings.TrimSpace(output)
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("not an IPv4 address: %q", addr)
	}
	return map[string]any{"ec2_local-ipv4": ip.String()}, nil
}

// parseIPAddrs splits address output and drops loopback and junk entries
func parseIPAddrs(output string) []string {
	addrs := []string{}
	seen := make(map[string]bool)
	for _, field := range strings.Fields(output) {
		ip := net.ParseIP(field)
		if ip == nil || ip.IsLoopback() || seen[ip.String()] {
			continue
		}
		seen[ip.String()] = true
		addrs = append(addrs, ip.String())
	}
	return addrs
}
