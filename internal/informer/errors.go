package informer

import (
	"errors"
	"fmt"
)

var (
	// ErrMinionNotFound means the mine returned no record for the minion
	ErrMinionNotFound = errors.New("minion not found")
	// ErrGrainNotFound means the minion's record has no such grain
	ErrGrainNotFound = errors.New("grain not found")
	// ErrNoAddress means network.ip_addrs returned an empty list
	ErrNoAddress = errors.New("no address")

	// ErrUnknownFunction is returned by Call for names it does not expose
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArgCount is returned by Call when the positional arguments don't fit
	ErrArgCount = errors.New("wrong number of arguments")
)

// LookupError describes a key or index missing from an otherwise well-formed
// mine response
type LookupError struct {
	// Kind is one of ErrMinionNotFound, ErrGrainNotFound, ErrNoAddress
	Kind     error
	Minion   string
	Function string
	Key      string
}

func (e *LookupError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s: %s %q on minion %q", e.Function, e.Kind, e.Key, e.Minion)
	default:
		return fmt.Sprintf("%s: %s: %q", e.Function, e.Kind, e.Minion)
	}
}

// Is lets errors.Is match the kind sentinel
func (e *LookupError) Is(target error) bool {
	return target == e.Kind
}

// IsLookup reports whether err is a missing minion, grain, or address
func IsLookup(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
