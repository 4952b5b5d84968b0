package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/shopdesk/internal/shopapi"
)

// Feed is the aggregated home screen data.
type Feed struct {
	Newest     []shopapi.Product
	HotSale    []shopapi.Product
	Categories []shopapi.Category
	Logo       *shopapi.Setting
	Banners    []shopapi.Setting
	Sliders    []shopapi.Setting
}

// Empty reports whether the feed holds nothing to show.
func (f Feed) Empty() bool {
	return len(f.Newest) == 0 && len(f.HotSale) == 0 && len(f.Categories) == 0 &&
		f.Logo == nil && len(f.Banners) == 0 && len(f.Sliders) == 0
}

func (f Feed) clone() Feed {
	out := Feed{
		Newest:     slices.Clone(f.Newest),
		HotSale:    slices.Clone(f.HotSale),
		Categories: slices.Clone(f.Categories),
		Banners:    slices.Clone(f.Banners),
		Sliders:    slices.Clone(f.Sliders),
	}
	if f.Logo != nil {
		logo := *f.Logo
		out.Logo = &logo
	}
	return out
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Feed                Feed
	HasFeed             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refreshes that loaded nothing
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records a refresh. A nil feed means nothing loaded: the previous
// data is kept and the failure counted. A feed with a non-nil err is a
// partial refresh; it is stored and the error kept for display.
func (s *Store) Update(feed *Feed, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	s.snapshot.LastError = err

	if feed == nil {
		if err == nil {
			err = fmt.Errorf("empty refresh")
			s.snapshot.LastError = err
		}
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Feed = feed.clone()
	s.snapshot.HasFeed = true
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Feed = s.snapshot.Feed.clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
