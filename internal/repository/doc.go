// Package repository defines the data access interfaces for informer.
//
// This package provides the persistence abstraction for mine data: the
// values each minion published for each mine function. The actual
// implementation is in the sqlite subpackage.
//
// # MineCache Interface
//
// MineCache is a mine.Mine that can also be written to, so the SSH
// collector can refresh it and the query service can read from it.
//
// # SQLite Implementation
//
// The sqlite implementation stores one JSON document per
// (minion, function) pair using the pure-Go modernc.org/sqlite driver.
// Target patterns are matched in Go with mine.Match so the cache answers
// the same globs as the in-memory mine.
package repository
