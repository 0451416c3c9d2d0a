// Package mine defines the fact store informer queries and the in-process
// implementations of it.
//
// The mine maps every minion to the values it published for a set of
// functions (grains.item, network.ip_addrs, ...). Get answers one function
// for every minion matching a target.
package mine

import "context"

// Mine is the fact store collaborator
type Mine interface {
	// Get returns the value of function for every minion matching target,
	// keyed by minion identity
	Get(ctx context.Context, target, function string) (map[string]any, error)
}
