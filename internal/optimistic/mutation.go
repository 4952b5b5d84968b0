// Package optimistic applies local state changes before the matching
// network write completes and restores the captured state when it fails.
package optimistic

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/shopdesk/internal/notify"
)

// Mutation describes one single-entity change.
type Mutation[V any] struct {
	// Read captures the current value.
	Read func() V
	// Write stores a value locally.
	Write func(V)
	// Next derives the optimistic value from the captured one.
	Next func(V) V
	// Commit performs the network write for next.
	Commit func(ctx context.Context, next V) error
	// Reload, when set, runs after a successful commit to pick up server
	// side effects the local change cannot represent.
	Reload func(ctx context.Context) error
	// Notifier receives the failure message.
	Notifier notify.Notifier
	// Describe names the change in error messages.
	Describe string
}

// Staged is a mutation that has been applied locally and awaits Commit.
type Staged[V any] struct {
	m        Mutation[V]
	previous V
	next     V
	once     sync.Once
	err      error
}

// Stage captures the current value and applies the optimistic one at once.
func Stage[V any](m Mutation[V]) *Staged[V] {
	prev := m.Read()
	next := m.Next(prev)
	m.Write(next)
	return &Staged[V]{m: m, previous: prev, next: next}
}

// Previous is the value captured before the change.
func (s *Staged[V]) Previous() V { return s.previous }

// Next is the optimistic value.
func (s *Staged[V]) Next() V { return s.next }

// Commit issues the write. On failure the captured value is restored and the
// error is reported once. Subsequent calls return the first result.
func (s *Staged[V]) Commit(ctx context.Context) error {
	s.once.Do(func() {
		s.err = s.commit(ctx)
	})
	return s.err
}

func (s *Staged[V]) commit(ctx context.Context) error {
	if err := s.m.Commit(ctx, s.next); err != nil {
		s.m.Write(s.previous)
		notify.Or(s.m.Notifier).Error(notify.Friendly(err))
		if s.m.Describe != "" {
			return fmt.Errorf("%s: %w", s.m.Describe, err)
		}
		return err
	}
	if s.m.Reload != nil {
		if err := s.m.Reload(ctx); err != nil {
			// The write landed; a failed reload leaves the optimistic value.
			return fmt.Errorf("reload after commit: %w", err)
		}
	}
	return nil
}

// Apply stages m and commits it.
func Apply[V any](ctx context.Context, m Mutation[V]) error {
	return Stage(m).Commit(ctx)
}
