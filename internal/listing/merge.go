package listing

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// mergeInto appends src to dst keyed by key. A duplicate replaces the
// earlier entry in place, so the last write wins without reordering.
func mergeInto[T any, K comparable](dst, src []T, key func(T) K) []T {
	index := make(map[K]int, len(dst)+len(src))
	for i, item := range dst {
		index[key(item)] = i
	}
	for _, item := range src {
		k := key(item)
		if i, ok := index[k]; ok {
			dst[i] = item
			continue
		}
		index[k] = len(dst)
		dst = append(dst, item)
	}
	return dst
}

// Merge combines lists in order into one list without duplicate keys. Later
// lists win on conflicts.
func Merge[T any, K comparable](key func(T) K, lists ...[]T) []T {
	var out []T
	for _, list := range lists {
		out = mergeInto(out, list, key)
	}
	return out
}

// FetchAll runs every fetcher concurrently and waits for all of them. A
// failing fetcher contributes a nil slice; the others are kept. The
// returned error combines every failure.
func FetchAll[T any](ctx context.Context, fetchers ...func(context.Context) ([]T, error)) ([][]T, error) {
	results := make([][]T, len(fetchers))
	errs := make([]error, len(fetchers))

	var g errgroup.Group
	for i, fetch := range fetchers {
		g.Go(func() error {
			items, err := fetch(ctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()
	return results, multierr.Combine(errs...)
}

// FetchMerged is FetchAll followed by Merge. It only fails when every
// fetcher failed.
func FetchMerged[T any, K comparable](ctx context.Context, key func(T) K, fetchers ...func(context.Context) ([]T, error)) ([]T, error) {
	results, err := FetchAll(ctx, fetchers...)
	merged := Merge(key, results...)
	if err != nil && len(multierr.Errors(err)) == len(fetchers) {
		return nil, err
	}
	return merged, err
}
