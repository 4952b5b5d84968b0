package listing

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/shopapi"
)

// Query is the server-side filter a list was loaded with.
type Query struct {
	Keyword  string
	Page     int
	PageSize int
	SortBy   string
	Filters  map[string]string
}

// WithPage returns a copy of q for page.
func (q Query) WithPage(page int) Query {
	out := q
	out.Filters = maps.Clone(q.Filters)
	out.Page = page
	return out
}

// Fetcher loads one page for q.
type Fetcher[T any] func(ctx context.Context, q Query) (shopapi.Page[T], error)

// State is the list's loading and pagination status.
type State struct {
	Loading     bool
	Refreshing  bool
	LoadingMore bool
	Page        int
	TotalPages  int
	Query       Query
	Loaded      bool // at least one load succeeded
	Err         error
}

// HasMore reports whether LoadMore would fetch another page.
func (s State) HasMore() bool {
	return s.Page < s.TotalPages
}

// Busy reports whether any fetch is in flight.
func (s State) Busy() bool {
	return s.Loading || s.Refreshing || s.LoadingMore
}

// Options configure a List.
type Options struct {
	Notifier       notify.Notifier
	Logger         logrus.FieldLogger
	SearchDebounce time.Duration
}

// List is a paginated collection keyed by K. All methods are safe for
// concurrent use; fetches run without holding the lock.
type List[T any, K comparable] struct {
	mu       sync.Mutex
	fetch    Fetcher[T]
	key      func(T) K
	notifier notify.Notifier
	log      logrus.FieldLogger
	debounce *Debouncer

	items []T
	state State
	gen   uint64
}

// DefaultSearchDebounce is the keystroke quiet period before a search.
const DefaultSearchDebounce = 500 * time.Millisecond

// New builds an empty list.
func New[T any, K comparable](fetch Fetcher[T], key func(T) K, opts Options) *List[T, K] {
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	logger := opts.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		logger = silent
	}
	return &List[T, K]{
		fetch:    fetch,
		key:      key,
		notifier: notify.Or(opts.Notifier),
		log:      logger,
		debounce: NewDebouncer(delay),
		state:    State{Page: 1, TotalPages: 1},
	}
}

// Load fetches q and replaces the collection. q becomes the current query
// right away; on failure the previous items and page are kept and the error
// is reported once. A load that has been superseded
// by a newer one discards its result.
func (l *List[T, K]) Load(ctx context.Context, q Query) error {
	return l.load(ctx, q, false)
}

// Refresh reloads the first page of the current query.
func (l *List[T, K]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	q := l.state.Query.WithPage(1)
	l.mu.Unlock()
	return l.load(ctx, q, true)
}

func (l *List[T, K]) load(ctx context.Context, q Query, refreshing bool) error {
	if q.Page <= 0 {
		q.Page = 1
	}
	l.mu.Lock()
	l.gen++
	gen := l.gen
	// The requested query sticks even if the fetch fails, so a later
	// Refresh or Search keeps its filters, sort and page size.
	l.state.Query = q
	if refreshing {
		l.state.Refreshing = true
	} else {
		l.state.Loading = true
	}
	l.state.LoadingMore = false
	l.mu.Unlock()

	page, err := l.fetch(ctx, q)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.log.WithField("keyword", q.Keyword).Debug("discarding superseded list result")
		return nil
	}
	l.state.Loading = false
	l.state.Refreshing = false
	if err != nil {
		l.state.Err = err
		l.mu.Unlock()
		l.log.WithError(err).WithField("keyword", q.Keyword).Warn("list load failed")
		l.notifier.Error(notify.Friendly(err))
		return err
	}
	l.items = l.dedupe(page.Items)
	l.state.Err = nil
	l.state.Loaded = true
	l.state.Page = max(page.Page, 1)
	l.state.TotalPages = max(page.TotalPages, l.state.Page)
	l.mu.Unlock()
	return nil
}

// LoadMore appends the next page. It reports false without fetching when
// there is no further page or a fetch is already running.
func (l *List[T, K]) LoadMore(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.state.Busy() || !l.state.HasMore() {
		l.mu.Unlock()
		return false, nil
	}
	l.state.LoadingMore = true
	gen := l.gen
	q := l.state.Query.WithPage(l.state.Page + 1)
	l.mu.Unlock()

	page, err := l.fetch(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false, nil
	}
	l.state.LoadingMore = false
	if err != nil {
		l.state.Err = err
		l.log.WithError(err).WithField("page", q.Page).Warn("load more failed")
		l.notifier.Error(notify.Friendly(err))
		return false, err
	}
	l.items = mergeInto(l.items, page.Items, l.key)
	l.state.Err = nil
	l.state.Page = max(page.Page, q.Page)
	l.state.TotalPages = max(page.TotalPages, l.state.Page)
	return true, nil
}

// Search schedules a first-page load for keyword once typing pauses. A
// newer call cancels the pending one. done, when set, receives the load
// result.
func (l *List[T, K]) Search(ctx context.Context, keyword string, done func(error)) {
	l.mu.Lock()
	q := l.state.Query.WithPage(1)
	l.mu.Unlock()
	q.Keyword = strings.TrimSpace(keyword)

	l.debounce.Trigger(func() {
		err := l.Load(ctx, q)
		if done != nil {
			done(err)
		}
	})
}

// CancelSearch drops a pending debounced search.
func (l *List[T, K]) CancelSearch() bool {
	return l.debounce.Cancel()
}

// Items returns a copy of the collection in display order.
func (l *List[T, K]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Len returns the number of loaded items.
func (l *List[T, K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Get returns the item with key k.
func (l *List[T, K]) Get(k K) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if l.key(item) == k {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Sorted returns the loaded items ordered by cmp. Only the loaded page is
// sorted; nothing is refetched.
func (l *List[T, K]) Sorted(cmp func(a, b T) int) []T {
	out := l.Items()
	slices.SortStableFunc(out, cmp)
	return out
}

// Filtered returns the loaded items matching keep.
func (l *List[T, K]) Filtered(keep func(T) bool) []T {
	items := l.Items()
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Update replaces the item with key k by fn(item). It reports whether the
// item was present.
func (l *List[T, K]) Update(k K, fn func(T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if l.key(item) == k {
			l.items[i] = fn(item)
			return true
		}
	}
	return false
}

// Remove drops the item with key k.
func (l *List[T, K]) Remove(k K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if l.key(item) == k {
			l.items = slices.Delete(l.items, i, i+1)
			return true
		}
	}
	return false
}

// Insert places item at index i, clamped to the collection bounds.
func (l *List[T, K]) Insert(i int, item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i = min(max(i, 0), len(l.items))
	l.items = slices.Insert(l.items, i, item)
}

// Index returns the position of key k, or -1.
func (l *List[T, K]) Index(k K) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if l.key(item) == k {
			return i
		}
	}
	return -1
}

// State returns the current status.
func (l *List[T, K]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state
	st.Query.Filters = maps.Clone(l.state.Query.Filters)
	return st
}

func (l *List[T, K]) dedupe(items []T) []T {
	return mergeInto(nil, items, l.key)
}
