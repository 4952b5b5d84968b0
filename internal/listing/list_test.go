package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/shopapi"
)

type item struct {
	ID   int
	Name string
}

func itemKey(i item) int { return i.ID }

// pagedFetcher serves pages of size 2 from a fixed catalogue.
func pagedFetcher(all []item, calls *atomic.Int32) Fetcher[item] {
	return func(_ context.Context, q Query) (shopapi.Page[item], error) {
		calls.Add(1)
		var matched []item
		for _, it := range all {
			if q.Keyword == "" || strings.Contains(it.Name, q.Keyword) {
				matched = append(matched, it)
			}
		}
		const size = 2
		total := max((len(matched)+size-1)/size, 1)
		start := min((q.Page-1)*size, len(matched))
		end := min(start+size, len(matched))
		return shopapi.Page[item]{Items: matched[start:end], Page: q.Page, TotalPages: total}, nil
	}
}

var catalogue = []item{{1, "ao"}, {2, "quan"}, {3, "ao khoac"}, {4, "giay"}, {5, "mu"}}

func TestLoad_ReplacesAndIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	l := New(pagedFetcher(catalogue, &calls), itemKey, Options{})

	require.NoError(t, l.Load(context.Background(), Query{Page: 1}))
	first := l.Items()
	require.NoError(t, l.Load(context.Background(), Query{Page: 1}))

	assert.Equal(t, first, l.Items(), "repeating a load must not accumulate")
	assert.Len(t, l.Items(), 2)
	st := l.State()
	assert.False(t, st.Loading)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 3, st.TotalPages)
}

func TestLoad_FailureKeepsItemsAndNotifiesOnce(t *testing.T) {
	toasts := notify.NewToasts()
	fail := false
	l := New(func(context.Context, Query) (shopapi.Page[item], error) {
		if fail {
			return shopapi.Page[item]{}, &shopapi.Error{Kind: shopapi.KindNetwork}
		}
		return shopapi.Page[item]{Items: []item{{1, "ao"}}, Page: 1, TotalPages: 1}, nil
	}, itemKey, Options{Notifier: toasts})

	require.NoError(t, l.Load(context.Background(), Query{}))
	fail = true
	err := l.Load(context.Background(), Query{Keyword: "x"})

	require.Error(t, err)
	assert.Equal(t, []item{{1, "ao"}}, l.Items())
	assert.False(t, l.State().Loading)
	assert.Equal(t, "x", l.State().Query.Keyword, "the requested query is current even when its fetch fails")
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
}

func TestFailedLoad_KeepsRequestedQueryForSearchAndRefresh(t *testing.T) {
	var mu sync.Mutex
	var seen []Query
	fail := true
	l := New(func(_ context.Context, q Query) (shopapi.Page[item], error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, q)
		if fail {
			return shopapi.Page[item]{}, &shopapi.Error{Kind: shopapi.KindNetwork}
		}
		return shopapi.Page[item]{Items: []item{{1, "ao"}}, Page: 1, TotalPages: 1}, nil
	}, itemKey, Options{SearchDebounce: 5 * time.Millisecond})
	ctx := context.Background()

	want := Query{PageSize: 20, SortBy: "price_asc", Filters: map[string]string{"maLoai": "3"}}
	require.Error(t, l.Load(ctx, want))

	mu.Lock()
	fail = false
	mu.Unlock()
	done := make(chan error, 1)
	l.Search(ctx, "ao", func(err error) { done <- err })
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("search never ran")
	}
	require.NoError(t, l.Refresh(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	for _, q := range seen[1:] {
		assert.Equal(t, 20, q.PageSize)
		assert.Equal(t, "price_asc", q.SortBy)
		assert.Equal(t, map[string]string{"maLoai": "3"}, q.Filters)
		assert.Equal(t, 1, q.Page)
	}
	assert.Equal(t, "ao", seen[1].Keyword)
	assert.Equal(t, "ao", seen[2].Keyword, "refresh keeps the searched keyword")
}

func TestLoadMore_AppendsUntilLastPage(t *testing.T) {
	var calls atomic.Int32
	l := New(pagedFetcher(catalogue, &calls), itemKey, Options{})
	ctx := context.Background()

	require.NoError(t, l.Load(ctx, Query{Page: 1}))
	more, err := l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	more, err = l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)

	more, err = l.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, more, "no page after the last")
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, l.Items(), 5)
	assert.False(t, l.State().HasMore())
}

func TestLoadMore_DeduplicatesLastWriteWins(t *testing.T) {
	pages := map[int][]item{
		1: {{1, "old"}, {2, "b"}},
		2: {{1, "new"}, {3, "c"}},
	}
	l := New(func(_ context.Context, q Query) (shopapi.Page[item], error) {
		return shopapi.Page[item]{Items: pages[q.Page], Page: q.Page, TotalPages: 2}, nil
	}, itemKey, Options{})

	require.NoError(t, l.Load(context.Background(), Query{}))
	_, err := l.LoadMore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []item{{1, "new"}, {2, "b"}, {3, "c"}}, l.Items())
}

func TestLoad_SupersededResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	l := New(func(_ context.Context, q Query) (shopapi.Page[item], error) {
		if q.Keyword == "slow" {
			<-release
			return shopapi.Page[item]{Items: []item{{9, "slow"}}, Page: 1, TotalPages: 1}, nil
		}
		return shopapi.Page[item]{Items: []item{{1, "fast"}}, Page: 1, TotalPages: 1}, nil
	}, itemKey, Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Load(context.Background(), Query{Keyword: "slow"})
	}()
	require.Eventually(t, func() bool { return l.State().Loading }, time.Second, time.Millisecond)

	require.NoError(t, l.Load(context.Background(), Query{Keyword: "fast"}))
	close(release)
	wg.Wait()

	assert.Equal(t, []item{{1, "fast"}}, l.Items())
	assert.Equal(t, "fast", l.State().Query.Keyword)
}

func TestSearch_DebouncesKeystrokes(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var keywords []string
	l := New(func(_ context.Context, q Query) (shopapi.Page[item], error) {
		calls.Add(1)
		mu.Lock()
		keywords = append(keywords, q.Keyword)
		mu.Unlock()
		return shopapi.Page[item]{Page: 1, TotalPages: 1}, nil
	}, itemKey, Options{SearchDebounce: 30 * time.Millisecond})

	done := make(chan error, 3)
	for _, kw := range []string{"a", "ao", "ao k"} {
		l.Search(context.Background(), kw, func(err error) { done <- err })
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("search never ran")
	}
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ao k"}, keywords)
}

func TestSortedAndFilteredOnlyTouchLoadedPage(t *testing.T) {
	var calls atomic.Int32
	l := New(pagedFetcher(catalogue, &calls), itemKey, Options{})
	require.NoError(t, l.Load(context.Background(), Query{Page: 1}))

	sorted := l.Sorted(func(a, b item) int { return b.ID - a.ID })
	assert.Equal(t, []item{{2, "quan"}, {1, "ao"}}, sorted)
	assert.Equal(t, []item{{1, "ao"}, {2, "quan"}}, l.Items(), "Sorted must not reorder the list")

	filtered := l.Filtered(func(i item) bool { return strings.HasPrefix(i.Name, "q") })
	assert.Equal(t, []item{{2, "quan"}}, filtered)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdateRemoveInsert(t *testing.T) {
	var calls atomic.Int32
	l := New(pagedFetcher(catalogue, &calls), itemKey, Options{})
	require.NoError(t, l.Load(context.Background(), Query{Page: 1}))

	assert.True(t, l.Update(2, func(i item) item {
		i.Name = "renamed"
		return i
	}))
	assert.False(t, l.Update(99, func(i item) item { return i }))
	got, ok := l.Get(2)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)

	assert.True(t, l.Remove(1))
	assert.Equal(t, -1, l.Index(1))
	l.Insert(0, item{1, "ao"})
	assert.Equal(t, 0, l.Index(1))
}

func TestFetchMerged_PartialAcceptance(t *testing.T) {
	types := func(context.Context) ([]item, error) { return []item{{1, "type"}, {2, "shared-type"}}, nil }
	brands := func(context.Context) ([]item, error) { return []item{{2, "shared-brand"}, {3, "brand"}}, nil }
	broken := func(context.Context) ([]item, error) { return nil, errors.New("boom") }

	merged, err := FetchMerged(context.Background(), itemKey, types, broken, brands)
	require.Error(t, err)
	assert.Equal(t, []item{{1, "type"}, {2, "shared-brand"}, {3, "brand"}}, merged)

	seen := map[int]bool{}
	for _, it := range merged {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}

	_, err = FetchMerged(context.Background(), itemKey, broken, broken)
	require.Error(t, err)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())
	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load())
}
