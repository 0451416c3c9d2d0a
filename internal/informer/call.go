package informer

import (
	"context"
	"fmt"
	"strings"
)

// Names under which the host runtime invokes the service
const (
	FuncGetRoles         = "get_roles"
	FuncGetNodeGrainItem = "get_node_grain_item"
	FuncAll              = "all"
)

const modulePrefix = "informer."

// Functions lists the exposed function names
func Functions() []string {
	return []string{FuncAll, FuncGetNodeGrainItem, FuncGetRoles}
}

// Call invokes a function by name with positional arguments. The name may
// carry the "informer." module prefix.
func (s *Service) Call(ctx context.Context, function string, args ...string) (any, error) {
	name := strings.TrimPrefix(function, modulePrefix)

	switch name {
	case FuncGetRoles:
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		return s.GetRoles(ctx, args[0])
	case FuncGetNodeGrainItem:
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		return s.GetNodeGrainItem(ctx, args[0], args[1])
	case FuncAll:
		if err := arity(name, args, 0); err != nil {
			return nil, err
		}
		return s.All(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, function)
	}
}

func arity(name string, args []string, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s: %w: got %d, want %d", name, ErrArgCount, len(args), want)
	}
	return nil
}
