package informer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"informer/internal/domain"
	"informer/internal/mine"
)

// failingMine returns err for every query
type failingMine struct {
	err error
}

func (f failingMine) Get(ctx context.Context, target, function string) (map[string]any, error) {
	return nil, f.err
}

// call is one query the service issued
type call struct {
	Target   string
	Function string
}

// recordingMine logs every Get so tests can check which queries ran
type recordingMine struct {
	*mine.Memory

	mu    sync.Mutex
	calls []call
}

func newRecordingMine() *recordingMine {
	return &recordingMine{Memory: mine.NewMemory()}
}

func (r *recordingMine) Get(ctx context.Context, target, function string) (map[string]any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{Target: target, Function: function})
	r.mu.Unlock()
	return r.Memory.Get(ctx, target, function)
}

func (r *recordingMine) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func newTestService(t *testing.T, m mine.Mine) *Service {
	t.Helper()
	return New(m, zaptest.NewLogger(t))
}

func grainsMine(records map[string]map[string]any) *recordingMine {
	m := newRecordingMine()
	for id, g := range records {
		m.Set(id, domain.FunctionGrainsItem, g)
	}
	return m
}

func TestGetRoles(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"web1":   {"roles": []any{"web", "cache"}},
		"web2":   {"roles": []any{"db"}},
		"master": {"roles": []any{"web"}},
	})
	svc := newTestService(t, m)

	got, err := svc.GetRoles(context.Background(), "web")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"web1", "saltmaster"}, got)
	assert.NotContains(t, got, "web2")
	assert.NotContains(t, got, "master")

	assert.Equal(t, []call{{Target: "*", Function: "grains.item"}}, m.Calls())
}

func TestGetRolesMissingRolesGrain(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"bare": {"osarch": "amd64"},
		"db1":  {"roles": []any{"db"}},
	})
	svc := newTestService(t, m)

	got, err := svc.GetRoles(context.Background(), "db")
	require.NoError(t, err)
	assert.Equal(t, []string{"db1"}, got)

	got, err = svc.GetRoles(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetRolesSkipsUnreadableMinion(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"web2": {"roles": []any{"web"}},
	})
	m.Set("web1", domain.FunctionGrainsItem, "not a mapping")
	svc := newTestService(t, m)

	got, err := svc.GetRoles(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"web2"}, got)
}

// A non-text role on one minion must not affect any query
func oddRolesMine() *recordingMine {
	return grainsMine(map[string]map[string]any{
		"web1": {"roles": []any{"web"}, "ec2_local-ipv4": "10.0.0.1"},
		"odd":  {"roles": []any{"web", 2019}, "osarch": "amd64", "ec2_local-ipv4": "10.0.0.2"},
	})
}

func TestGetRolesIgnoresNonTextRoles(t *testing.T) {
	svc := newTestService(t, oddRolesMine())

	got, err := svc.GetRoles(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"odd", "web1"}, got)

	got, err = svc.GetRoles(context.Background(), "2019")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetNodeGrainItemIgnoresOtherGrains(t *testing.T) {
	svc := newTestService(t, oddRolesMine())

	got, err := svc.GetNodeGrainItem(context.Background(), "odd", "osarch")
	require.NoError(t, err)
	assert.Equal(t, "amd64", got)

	got, err = svc.GetNodeGrainItem(context.Background(), "odd", "roles")
	require.NoError(t, err)
	assert.Equal(t, []any{"web", 2019}, got)
}

func TestAllIgnoresRolesGrain(t *testing.T) {
	svc := newTestService(t, oddRolesMine())

	got, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"web1": "10.0.0.1", "odd": "10.0.0.2"}, got)
}

func TestAllMalformedEC2Address(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"node1": {"ec2_local-ipv4": 10},
	})
	svc := newTestService(t, m)

	_, err := svc.All(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedGrains)
}

func TestGetNodeGrainItemNotMapping(t *testing.T) {
	m := newRecordingMine()
	m.Set("web1", domain.FunctionGrainsItem, []any{"web"})
	svc := newTestService(t, m)

	_, err := svc.GetNodeGrainItem(context.Background(), "web1", "osarch")
	assert.ErrorIs(t, err, domain.ErrMalformedGrains)
}

func TestGetNodeGrainItem(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"saltmaster": {"osarch": "amd64"},
		"master":     {"osarch": "arm64"},
		"web1":       {"osarch": "x86_64", "roles": []any{"web"}},
	})
	svc := newTestService(t, m)
	ctx := context.Background()

	got, err := svc.GetNodeGrainItem(ctx, "master", "osarch")
	require.NoError(t, err)
	assert.Equal(t, "amd64", got, "master should be queried as saltmaster")
	assert.Equal(t, call{Target: "saltmaster", Function: "grains.item"}, m.Calls()[0])

	got, err = svc.GetNodeGrainItem(ctx, "web1", "roles")
	require.NoError(t, err)
	assert.Equal(t, []any{"web"}, got)
}

func TestGetNodeGrainItemAliasNotReversed(t *testing.T) {
	// Only master is remapped; saltmaster is queried verbatim
	m := grainsMine(map[string]map[string]any{
		"master": {"osarch": "amd64"},
	})
	svc := newTestService(t, m)

	_, err := svc.GetNodeGrainItem(context.Background(), "saltmaster", "osarch")
	require.ErrorIs(t, err, ErrMinionNotFound)
	assert.Equal(t, "saltmaster", m.Calls()[0].Target)
}

func TestGetNodeGrainItemMissing(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"web1": {"osarch": "amd64"},
	})
	svc := newTestService(t, m)
	ctx := context.Background()

	_, err := svc.GetNodeGrainItem(ctx, "web9", "osarch")
	require.ErrorIs(t, err, ErrMinionNotFound)
	assert.True(t, IsLookup(err))

	_, err = svc.GetNodeGrainItem(ctx, "web1", "kernel")
	require.ErrorIs(t, err, ErrGrainNotFound)
	assert.NotErrorIs(t, err, ErrMinionNotFound)

	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "web1", le.Minion)
	assert.Equal(t, "kernel", le.Key)
}

func TestAllPrefersEC2Address(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"node1": {"ec2_local-ipv4": "10.0.0.5"},
	})
	svc := newTestService(t, m)

	got, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"node1": "10.0.0.5"}, got)
	assert.Len(t, m.Calls(), 1, "no fallback query expected")
}

func TestAllFallsBackToIPAddrs(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"node1": {},
	})
	m.Set("node1", domain.FunctionIPAddrs, []any{"192.168.1.10", "10.1.1.1"})
	svc := newTestService(t, m)

	got, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"node1": "192.168.1.10"}, got)
	assert.Equal(t, []call{
		{Target: "*", Function: "grains.item"},
		{Target: "node1", Function: "network.ip_addrs"},
	}, m.Calls())
}

func TestAllRemapsMasterAndQueriesRawID(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"master": {},
		"web1":   {"ec2_local-ipv4": "10.0.0.7"},
	})
	m.Set("master", domain.FunctionIPAddrs, []any{"10.0.0.1"})
	svc := newTestService(t, m)

	got, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"saltmaster": "10.0.0.1", "web1": "10.0.0.7"}, got)
	assert.Contains(t, m.Calls(), call{Target: "master", Function: "network.ip_addrs"})
}

func TestAllEmptyAddressList(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"node1": {},
	})
	m.Set("node1", domain.FunctionIPAddrs, []any{})
	svc := newTestService(t, m)

	got, err := svc.All(context.Background())
	require.ErrorIs(t, err, ErrNoAddress)
	assert.Nil(t, got)
}

func TestAllMissingFallbackRecord(t *testing.T) {
	m := grainsMine(map[string]map[string]any{
		"node1": {},
	})
	svc := newTestService(t, m)

	_, err := svc.All(context.Background())
	assert.ErrorIs(t, err, ErrMinionNotFound)
}

func TestMineErrorsPropagate(t *testing.T) {
	boom := errors.New("mine unreachable")
	svc := newTestService(t, failingMine{err: boom})
	ctx := context.Background()

	_, err := svc.GetRoles(ctx, "web")
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetNodeGrainItem(ctx, "web1", "osarch")
	assert.ErrorIs(t, err, boom)

	_, err = svc.All(ctx)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsLookup(err))
}

func TestNewNilLogger(t *testing.T) {
	svc := New(mine.NewMemory(), nil)
	got, err := svc.GetRoles(context.Background(), "web")
	require.NoError(t, err)
	assert.Empty(t, got)
}
