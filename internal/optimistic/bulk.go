package optimistic

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shopdesk/internal/notify"
)

// Bulk applies one change to every id in a selection. Duplicate IDs collapse
// to their first occurrence, so N distinct ids issue exactly N requests. All
// requests run concurrently and are awaited together.
type Bulk[K comparable, V any] struct {
	IDs []K
	// Capture reads the current value for id.
	Capture func(id K) (V, bool)
	// Apply performs the local change for id.
	Apply func(id K, current V)
	// Restore puts the captured value back for id.
	Restore func(id K, previous V)
	// Commit performs the network write for id.
	Commit func(ctx context.Context, id K) error
	// Reload, when set, runs once after all requests settle, whether or not
	// some failed.
	Reload func(ctx context.Context) error
	// Limit caps concurrent requests; zero means no cap.
	Limit    int
	Notifier notify.Notifier
	Describe string
}

// BulkError lists the ids whose request failed.
type BulkError[K comparable] struct {
	Failed []K
	Total  int
	Err    error
}

func (e *BulkError[K]) Error() string {
	return fmt.Sprintf("%d of %d requests failed: %v", len(e.Failed), e.Total, e.Err)
}

func (e *BulkError[K]) Unwrap() error { return e.Err }

// Run applies the change locally, issues one request per distinct id,
// restores the ids that failed and reports one aggregate error. BulkError's
// Total counts distinct ids.
func (b Bulk[K, V]) Run(ctx context.Context) error {
	ids := dedupe(b.IDs)
	if len(ids) == 0 {
		return nil
	}

	captured := make(map[K]V, len(ids))
	for _, id := range ids {
		if b.Capture != nil {
			if v, ok := b.Capture(id); ok {
				captured[id] = v
				if b.Apply != nil {
					b.Apply(id, v)
				}
			}
		}
	}

	var (
		mu     sync.Mutex
		failed []K
		errs   error
	)
	var g errgroup.Group
	if b.Limit > 0 {
		g.SetLimit(b.Limit)
	}
	for _, id := range ids {
		g.Go(func() error {
			if err := b.Commit(ctx, id); err != nil {
				mu.Lock()
				failed = append(failed, id)
				errs = multierr.Append(errs, fmt.Errorf("%v: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed = orderLike(ids, failed)
	for _, id := range failed {
		if prev, ok := captured[id]; ok && b.Restore != nil {
			b.Restore(id, prev)
		}
	}

	var reloadErr error
	if b.Reload != nil {
		reloadErr = b.Reload(ctx)
	}

	if len(failed) > 0 {
		bulkErr := &BulkError[K]{Failed: failed, Total: len(ids), Err: errs}
		msg := fmt.Sprintf("%d/%d thao tác thất bại: %s", len(failed), len(ids), notify.Friendly(firstError(errs)))
		if b.Describe != "" {
			msg = b.Describe + ": " + msg
		}
		notify.Or(b.Notifier).Error(msg)
		return bulkErr
	}
	if reloadErr != nil {
		return fmt.Errorf("reload after bulk commit: %w", reloadErr)
	}
	return nil
}

func firstError(err error) error {
	if errs := multierr.Errors(err); len(errs) > 0 {
		return unwrapOnce(errs[0])
	}
	return err
}

func unwrapOnce(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok && u.Unwrap() != nil {
		return u.Unwrap()
	}
	return err
}

func dedupe[K comparable](ids []K) []K {
	seen := make(map[K]struct{}, len(ids))
	out := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderLike returns subset ordered as it appears in order.
func orderLike[K comparable](order, subset []K) []K {
	in := make(map[K]struct{}, len(subset))
	for _, id := range subset {
		in[id] = struct{}{}
	}
	out := make([]K, 0, len(subset))
	for _, id := range order {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
