// Package wishlist keeps the liked-product index on disk and the matching
// product records in memory. The index only stores ids and like times;
// product data is always refetched.
package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shopdesk/internal/localstore"
	"github.com/five82/shopdesk/internal/shopapi"
)

// Entry is one liked product.
type Entry struct {
	ProductID string    `json:"id"`
	LikedAt   time.Time `json:"likedAt"`
}

// FetchFunc loads a product by id.
type FetchFunc func(ctx context.Context, id string) (shopapi.Product, error)

const reconcileParallelism = 8

// Store is the wishlist. Entries are kept newest first and never contain
// the same product twice.
type Store struct {
	mu      sync.Mutex
	kv      *localstore.Store
	log     logrus.FieldLogger
	now     func() time.Time
	entries []Entry
	items   []shopapi.Product
}

// Open loads the persisted index, folding in the legacy blob when present.
// An unreadable index starts empty rather than failing.
func Open(kv *localstore.Store, log logrus.FieldLogger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("wishlist: store required")
	}
	if log == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		log = silent
	}
	s := &Store{kv: kv, log: log, now: time.Now}

	var entries []Entry
	if _, err := kv.Get(localstore.KeyWishlist, &entries); err != nil {
		log.WithError(err).Warn("wishlist index unreadable, starting empty")
		entries = nil
	}
	s.entries = normalize(entries)

	migrated, err := s.migrateLegacy()
	if err != nil {
		log.WithError(err).Warn("legacy wishlist migration failed")
	}
	if migrated > 0 {
		log.WithField("count", migrated).Info("migrated legacy wishlist entries")
	}
	return s, nil
}

// migrateLegacy folds ids from the old persisted blob into the index and
// removes the blob.
func (s *Store) migrateLegacy() (int, error) {
	raw, ok, err := s.kv.GetRaw(localstore.KeyLegacyWishlist)
	if err != nil || !ok {
		return 0, err
	}
	legacy := parseLegacy(raw, s.now())
	added := 0
	for _, e := range legacy {
		if s.indexOf(e.ProductID) >= 0 {
			continue
		}
		s.entries = append(s.entries, e)
		added++
	}
	s.entries = normalize(s.entries)
	if added > 0 {
		if err := s.kv.Put(localstore.KeyWishlist, s.entries); err != nil {
			return 0, err
		}
	}
	return added, s.kv.Delete(localstore.KeyLegacyWishlist)
}

// parseLegacy reads {"state":{"items":[{"id":...,"likedAt":...}]}} or a
// plain list of ids.
func parseLegacy(raw []byte, fallback time.Time) []Entry {
	var blob struct {
		State struct {
			Items []json.RawMessage `json:"items"`
			IDs   []json.RawMessage `json:"ids"`
		} `json:"state"`
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &blob); err == nil {
		rawItems = append(blob.State.Items, blob.State.IDs...)
	}
	if len(rawItems) == 0 {
		_ = json.Unmarshal(raw, &rawItems)
	}

	var out []Entry
	for i, item := range rawItems {
		var obj struct {
			ID      json.RawMessage `json:"id"`
			LikedAt time.Time       `json:"likedAt"`
		}
		id := ""
		liked := fallback.Add(-time.Duration(i) * time.Millisecond)
		if err := json.Unmarshal(item, &obj); err == nil && len(obj.ID) > 0 {
			id = jsonScalar(obj.ID)
			if !obj.LikedAt.IsZero() {
				liked = obj.LikedAt
			}
		} else {
			id = jsonScalar(item)
		}
		if id != "" {
			out = append(out, Entry{ProductID: id, LikedAt: liked})
		}
	}
	return out
}

func jsonScalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// normalize drops blanks and duplicates (keeping the newest) and sorts
// newest first.
func normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := map[string]int{}
	for _, e := range entries {
		e.ProductID = strings.TrimSpace(e.ProductID)
		if e.ProductID == "" {
			continue
		}
		if i, ok := seen[e.ProductID]; ok {
			if e.LikedAt.After(out[i].LikedAt) {
				out[i] = e
			}
			continue
		}
		seen[e.ProductID] = len(out)
		out = append(out, e)
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.LikedAt.Compare(a.LikedAt)
	})
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	if err := s.kv.Put(localstore.KeyWishlist, s.entries); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

// Add likes id. It reports false when id was already liked.
func (s *Store) Add(id string) (bool, error) {
	return s.add(shopapi.Product{ID: id}, false)
}

// AddProduct likes p and shows it immediately without waiting for a
// reconcile.
func (s *Store) AddProduct(p shopapi.Product) (bool, error) {
	return s.add(p, true)
}

func (s *Store) add(p shopapi.Product, withItem bool) (bool, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return false, fmt.Errorf("product id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) >= 0 {
		return false, nil
	}
	prevEntries, prevItems := s.entries, s.items
	s.entries = slices.Insert(slices.Clone(s.entries), 0, Entry{ProductID: id, LikedAt: s.now()})
	if withItem {
		s.items = slices.Insert(slices.Clone(s.items), 0, p)
	}
	if err := s.persist(); err != nil {
		s.entries, s.items = prevEntries, prevItems
		return false, err
	}
	return true, nil
}

// Remove unlikes id. It reports false when id was not liked.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	prevEntries, prevItems := s.entries, s.items
	s.entries = slices.Delete(slices.Clone(s.entries), i, i+1)
	s.items = slices.DeleteFunc(slices.Clone(s.items), func(p shopapi.Product) bool { return p.ID == id })
	if err := s.persist(); err != nil {
		s.entries, s.items = prevEntries, prevItems
		return false, err
	}
	return true, nil
}

// Toggle likes or unlikes p and reports the new state.
func (s *Store) Toggle(p shopapi.Product) (bool, error) {
	if s.Has(p.ID) {
		_, err := s.Remove(p.ID)
		return false, err
	}
	_, err := s.AddProduct(p)
	return err == nil, err
}

// Has reports whether id is liked.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Len returns the number of liked ids.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns the index, newest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Items returns the products from the last reconcile plus any added since.
func (s *Store) Items() []shopapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Reconcile refetches every liked product in parallel. Products whose fetch
// fails are left out; they are treated as no longer existing. The result is
// ordered by like time, newest first, and replaces Items. Only a cancelled
// context fails the whole run.
func (s *Store) Reconcile(ctx context.Context, fetch FetchFunc) ([]shopapi.Product, error) {
	entries := s.Entries()
	fetched := make([]*shopapi.Product, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileParallelism)
	for i, e := range entries {
		g.Go(func() error {
			p, err := fetch(gctx, e.ProductID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.WithError(err).WithField("product_id", e.ProductID).Debug("dropping unavailable wishlist product")
				return nil
			}
			if p.ID == "" {
				p.ID = e.ProductID
			}
			fetched[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// entries are already newest first, so keeping their order sorts the
	// products by like time.
	out := make([]shopapi.Product, 0, len(entries))
	for _, p := range fetched {
		if p != nil {
			out = append(out, *p)
		}
	}

	s.mu.Lock()
	current := map[string]bool{}
	for _, e := range s.entries {
		current[e.ProductID] = true
	}
	// Drop products unliked while the fetches ran.
	s.items = slices.DeleteFunc(slices.Clone(out), func(p shopapi.Product) bool { return !current[p.ID] })
	items := slices.Clone(s.items)
	s.mu.Unlock()
	return items, nil
}
