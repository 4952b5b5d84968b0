package optimistic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/shopapi"
)

type user struct {
	ID     int
	Banned bool
}

type table struct {
	mu   sync.Mutex
	rows map[int]user
}

func newTable(rows ...user) *table {
	t := &table{rows: map[int]user{}}
	for _, r := range rows {
		t.rows[r.ID] = r
	}
	return t
}

func (t *table) get(id int) (user, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.rows[id]
	return u, ok
}

func (t *table) set(u user) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[u.ID] = u
}

func (t *table) snapshot() map[int]user {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]user, len(t.rows))
	for k, v := range t.rows {
		out[k] = v
	}
	return out
}

func banMutation(tbl *table, id int, commit func(context.Context, user) error, n notify.Notifier) Mutation[user] {
	return Mutation[user]{
		Read: func() user {
			u, _ := tbl.get(id)
			return u
		},
		Write: tbl.set,
		Next: func(u user) user {
			u.Banned = !u.Banned
			return u
		},
		Commit:   commit,
		Notifier: n,
	}
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	tbl := newTable(user{ID: 1})
	before := tbl.snapshot()
	toasts := notify.NewToasts()
	offline := &shopapi.Error{Kind: shopapi.KindNetwork}

	var sawFlipped bool
	staged := Stage(banMutation(tbl, 1, func(context.Context, user) error {
		u, _ := tbl.get(1)
		sawFlipped = u.Banned
		return offline
	}, toasts))

	u, _ := tbl.get(1)
	assert.True(t, u.Banned, "local state flips before the request")

	err := staged.Commit(context.Background())
	require.ErrorIs(t, err, offline)
	assert.True(t, sawFlipped)
	assert.Equal(t, before, tbl.snapshot(), "state after failure equals state before")
	assert.Equal(t, 1, toasts.Count(notify.LevelError))

	require.ErrorIs(t, staged.Commit(context.Background()), offline)
	assert.Equal(t, 1, toasts.Count(notify.LevelError), "error reported exactly once")
}

func TestApply_ReloadsAfterSuccess(t *testing.T) {
	tbl := newTable(user{ID: 1})
	var reloaded atomic.Int32
	m := banMutation(tbl, 1, func(context.Context, user) error { return nil }, nil)
	m.Reload = func(context.Context) error {
		reloaded.Add(1)
		return nil
	}

	require.NoError(t, Apply(context.Background(), m))
	u, _ := tbl.get(1)
	assert.True(t, u.Banned)
	assert.Equal(t, int32(1), reloaded.Load())
}

func TestApply_NoReloadOnFailure(t *testing.T) {
	tbl := newTable(user{ID: 1})
	m := banMutation(tbl, 1, func(context.Context, user) error { return errors.New("nope") }, nil)
	m.Reload = func(context.Context) error {
		t.Fatal("reload must not run after a failed commit")
		return nil
	}
	m.Describe = "ban user"

	err := Apply(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ban user")
}

func bulkBan(tbl *table, ids []int, fail map[int]bool, calls *atomic.Int32, n notify.Notifier) Bulk[int, user] {
	return Bulk[int, user]{
		IDs:     ids,
		Capture: tbl.get,
		Apply: func(_ int, u user) {
			u.Banned = true
			tbl.set(u)
		},
		Restore: func(_ int, u user) { tbl.set(u) },
		Commit: func(_ context.Context, id int) error {
			calls.Add(1)
			if fail[id] {
				return &shopapi.Error{Kind: shopapi.KindServer, Status: 500}
			}
			return nil
		},
		Notifier: n,
	}
}

func TestBulk_IssuesOneRequestPerDistinctID(t *testing.T) {
	tbl := newTable(user{ID: 1}, user{ID: 2}, user{ID: 3})
	var calls atomic.Int32

	err := bulkBan(tbl, []int{1, 2, 3, 2}, nil, &calls, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	for id, u := range tbl.snapshot() {
		assert.True(t, u.Banned, "user %d", id)
	}
}

func TestBulk_PartialFailureRestoresFailedAndReportsOnce(t *testing.T) {
	tbl := newTable(user{ID: 1}, user{ID: 2}, user{ID: 3}, user{ID: 4})
	var calls atomic.Int32
	toasts := notify.NewToasts()

	// server state after the partial failure, as a reload would see it
	server := newTable(user{ID: 1, Banned: true}, user{ID: 2}, user{ID: 3, Banned: true}, user{ID: 4})
	b := bulkBan(tbl, []int{1, 2, 3, 4}, map[int]bool{2: true, 4: true}, &calls, toasts)
	var reloads atomic.Int32
	b.Reload = func(context.Context) error {
		reloads.Add(1)
		return nil
	}

	err := b.Run(context.Background())
	require.Error(t, err)

	var bulkErr *BulkError[int]
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, []int{2, 4}, bulkErr.Failed)
	assert.Equal(t, 4, bulkErr.Total)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, int32(1), reloads.Load())
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
	assert.Equal(t, server.snapshot(), tbl.snapshot(), "local state matches what a reload returns")
}

func TestBulk_DuplicateIDsCountOnceInFailure(t *testing.T) {
	tbl := newTable(user{ID: 1}, user{ID: 2})
	var calls atomic.Int32

	err := bulkBan(tbl, []int{2, 1, 2, 2}, map[int]bool{2: true}, &calls, nil).Run(context.Background())

	var bulkErr *BulkError[int]
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []int{2}, bulkErr.Failed)
	assert.Equal(t, 2, bulkErr.Total, "total counts distinct ids")
}

func TestBulk_EmptySelectionIsNoop(t *testing.T) {
	var calls atomic.Int32
	require.NoError(t, bulkBan(newTable(), nil, nil, &calls, nil).Run(context.Background()))
	assert.Zero(t, calls.Load())
}

func TestSelection_StateMachine(t *testing.T) {
	var s Selection[int]
	assert.Equal(t, Idle, s.Mode())

	s.Begin(5)
	assert.Equal(t, Selecting, s.Mode())
	s.Toggle(7)
	s.Toggle(9)
	assert.Equal(t, []int{5, 7, 9}, s.IDs())

	s.Toggle(7)
	assert.Equal(t, []int{5, 9}, s.IDs())
	assert.True(t, s.Has(9))

	s.Toggle(5)
	s.Toggle(9)
	assert.Equal(t, Idle, s.Mode(), "deselecting the last id returns to idle")

	s.Begin(1)
	s.Begin(1)
	s.Toggle(2)
	assert.Equal(t, []int{1, 2}, s.Submit())
	assert.Equal(t, Idle, s.Mode())
	assert.Zero(t, s.Len())
}
