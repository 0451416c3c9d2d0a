package informer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"informer/internal/domain"
	"informer/internal/mine"
)

func TestCall(t *testing.T) {
	m := mine.NewMemory()
	m.Set("web1", domain.FunctionGrainsItem, map[string]any{"roles": []any{"web"}, "osarch": "amd64"})
	m.Set("web1", domain.FunctionIPAddrs, []any{"10.0.0.9"})
	svc := newTestService(t, m)
	ctx := context.Background()

	tests := []struct {
		name     string
		function string
		args     []string
		want     any
		wantErr  error
	}{
		{"roles", "get_roles", []string{"web"}, []string{"web1"}, nil},
		{"roles with prefix", "informer.get_roles", []string{"web"}, []string{"web1"}, nil},
		{"grain item", "get_node_grain_item", []string{"web1", "osarch"}, "amd64", nil},
		{"all", "all", nil, map[string]string{"web1": "10.0.0.9"}, nil},
		{"unknown", "delete_everything", nil, nil, ErrUnknownFunction},
		{"roles without args", "get_roles", nil, nil, ErrArgCount},
		{"grain item one arg", "get_node_grain_item", []string{"web1"}, nil, ErrArgCount},
		{"all with args", "all", []string{"x"}, nil, ErrArgCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Call(ctx, tt.function, tt.args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFunctions(t *testing.T) {
	assert.ElementsMatch(t, []string{"get_roles", "get_node_grain_item", "all"}, Functions())
}
