// Package domain defines the core domain types for informer.
//
// This package contains the entities that describe what minions publish to
// the mine: their identity and their grains.
//
// # Minion Identity
//
// A minion is named by the identity the mine assigns it. RealName maps that
// identity to the display name operators use. The only alias is "master",
// which is displayed as "saltmaster".
//
// # Grains
//
// Grains is the raw grains.item record of one minion. The grains informer
// relies on (roles, ec2_local-ipv4) have typed accessors that read only
// their own key, so one odd grain never breaks a query that ignores it.
// Everything else stays reachable through Item.
//
// # Design Principles
//
// - No database or external dependencies
// - Absent and malformed data are distinct outcomes
// - Pure domain logic without infrastructure concerns
package domain
