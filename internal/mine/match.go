package mine

import (
	"path"
	"strings"
)

// Match reports whether a minion identity matches a target.
// "*" matches everything, targets with glob metacharacters are shell globs,
// and anything else must equal the identity.
func Match(target, id string) bool {
	if target == "*" {
		return true
	}
	if !strings.ContainsAny(target, "*?[") {
		return target == id
	}
	ok, err := path.Match(target, id)
	if err != nil {
		// A broken pattern matches nothing
		return false
	}
	return ok
}
