package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Mine functions informer reads
const (
	FunctionGrainsItem = "grains.item"
	FunctionIPAddrs    = "network.ip_addrs"
)

// TargetAll matches every minion known to the mine
const TargetAll = "*"

// Grain keys with a typed meaning
const (
	GrainRoles        = "roles"
	GrainEC2LocalIPv4 = "ec2_local-ipv4"
)

const (
	masterID   = "master"
	masterName = "saltmaster"
)

var (
	// ErrMalformedGrains is returned when a grains.item value is not a mapping
	// or one of its typed grains has the wrong shape
	ErrMalformedGrains = errors.New("malformed grains")
	// ErrMalformedAddrs is returned when a network.ip_addrs value is not a
	// sequence of text addresses
	ErrMalformedAddrs = errors.New("malformed address list")
)

// RealName maps a minion identity to its display name
func RealName(id string) string {
	if id == masterID {
		return masterName
	}
	return id
}

// Grains is one minion's grains.item record. Typed grains are read on
// access, so a bad value in one grain does not hide the others.
type Grains map[string]any

// DecodeGrains checks that a raw mine value is a grains mapping
func DecodeGrains(raw any) (Grains, error) {
	items, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("%w: expected mapping, got %T", ErrMalformedGrains, raw)
	}
	return Grains(items), nil
}

// Roles returns the text entries of the roles grain. A missing grain, a
// non-sequence value and non-text entries contribute nothing.
func (g Grains) Roles() []string {
	roles := []string{}
	switch r := g[GrainRoles].(type) {
	case string:
		// A scalar grain is one role, not a substring to search
		roles = append(roles, r)
	case []string:
		roles = append(roles, r...)
	case []any:
		for _, e := range r {
			if s, ok := e.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return roles
}

// HasRole reports whether role is among the minion's roles
func (g Grains) HasRole(role string) bool {
	return slices.Contains(g.Roles(), role)
}

// EC2LocalIPv4 returns the instance-local address grain and whether it is
// set. A value that is not text is an error.
func (g Grains) EC2LocalIPv4() (string, bool, error) {
	v, ok := g[GrainEC2LocalIPv4]
	if !ok {
		return "", false, nil
	}
	addr, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("%w: %s is %T, want string", ErrMalformedGrains, GrainEC2LocalIPv4, v)
	}
	return addr, true, nil
}

// Item returns the raw value of a grain
func (g Grains) Item(key string) (any, bool) {
	v, ok := g[key]
	return v, ok
}

// DecodeAddrs converts a raw network.ip_addrs value into addresses
func DecodeAddrs(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		addrs := make([]string, 0, len(v))
		for i, a := range v {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrMalformedAddrs, i, a)
			}
			addrs = append(addrs, s)
		}
		return addrs, nil
	case nil:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%w: expected sequence, got %T", ErrMalformedAddrs, raw)
	}
}

// toStringMap accepts both JSON-style and YAML-style decoded mappings
func toStringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
