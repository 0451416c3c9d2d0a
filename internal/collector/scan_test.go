package collector

import (
	"context"
	"errors"
	"testing"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sshHost(ip, hostname, state, portState string) nmap.Host {
	h := nmap.Host{
		Addresses: []nmap.Address{
			{Addr: "AA:BB:CC:DD:EE:FF", AddrType: "mac"},
			{Addr: ip, AddrType: "ipv4"},
		},
		Status: nmap.Status{State: state},
		Ports: []nmap.Port{
			{ID: 22, Protocol: "tcp", State: nmap.State{State: portState}},
			{ID: 80, Protocol: "tcp", State: nmap.State{State: "open"}},
		},
	}
	if hostname != "" {
		h.Hostnames = []nmap.Hostname{{Name: hostname}}
	}
	return h
}

func TestTargetsFromRun(t *testing.T) {
	result := &nmap.Run{
		Hosts: []nmap.Host{
			sshHost("10.0.0.1", "master.example.com.", "up", "open"),
			sshHost("10.0.0.5", "", "up", "open"),
			sshHost("10.0.0.6", "web2", "up", "closed"),
			sshHost("10.0.0.7", "web3", "down", "open"),
			{Status: nmap.Status{State: "up"}},
		},
	}

	got := targetsFromRun(result, 22)
	assert.Equal(t, []Target{
		{ID: "master.example.com", Host: "10.0.0.1", Port: 22},
		{ID: "10.0.0.5", Host: "10.0.0.5", Port: 22},
	}, got)

	assert.Empty(t, targetsFromRun(result, 2222), "no host has 2222 open")
	assert.Nil(t, targetsFromRun(nil, 22))
}

func TestScannerDiscover(t *testing.T) {
	s := NewScanner(0, zaptest.NewLogger(t))
	assert.Equal(t, 22, s.port)

	s.run = func(ctx context.Context, cidr string, port int) (*nmap.Run, error) {
		switch cidr {
		case "10.0.0.0/24":
			return &nmap.Run{Hosts: []nmap.Host{
				sshHost("10.0.0.9", "web9", "up", "open"),
				sshHost("10.0.0.1", "master", "up", "open"),
			}}, nil
		case "10.0.0.1":
			return &nmap.Run{Hosts: []nmap.Host{
				sshHost("10.0.0.1", "master", "up", "open"),
			}}, nil
		default:
			return nil, errors.New("nmap: failed to resolve")
		}
	}

	got, err := s.Discover(context.Background(), []string{"10.0.0.0/24", "10.0.0.1", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan bogus")
	assert.Equal(t, []Target{
		{ID: "master", Host: "10.0.0.1", Port: 22},
		{ID: "web9", Host: "10.0.0.9", Port: 22},
	}, got)
}

func TestMergeTargets(t *testing.T) {
	configured := []Target{
		{ID: "master", Host: "10.0.0.1", Port: 22},
	}
	discovered := []Target{
		{ID: "10.0.0.1", Host: "10.0.0.1", Port: 22},
		{ID: "master", Host: "10.0.0.2", Port: 22},
		{ID: "web9", Host: "10.0.0.9", Port: 22},
		{ID: "web9", Host: "10.0.0.10", Port: 22},
	}

	got := MergeTargets(configured, discovered)
	assert.Equal(t, []Target{
		{ID: "master", Host: "10.0.0.1", Port: 22},
		{ID: "web9", Host: "10.0.0.9", Port: 22},
	}, got)

	assert.Empty(t, MergeTargets(nil, nil))
}
