package state

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crobledo/vitrina/internal/catalog"
)

// Aggregate carries collection-wide statistics. It is always recomputed
// from the base collection at snapshot time, never cached independently.
type Aggregate struct {
	Count      int
	TotalStock int
	TotalValue float64
}

// Snapshot represents the latest catalog data available to the UI.
type Snapshot struct {
	Products            []catalog.Product
	Filtered            []catalog.Product
	Stats               Aggregate
	SearchTerm          string
	Loaded              bool
	Loading             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple
// refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the in-memory product collection mirrored from the server.
// Views never mutate the collection directly; they request mutations here.
type Store struct {
	mu         sync.RWMutex
	products   []catalog.Product
	searchTerm string
	loaded     bool

	lastUpdated time.Time
	lastError   error
	failures    int

	issuedGen  uint64
	pendingGen uint64
}

// BeginLoad marks a refresh as in flight and returns its generation token.
// Concurrent loads each get a fresh token; only the newest one is allowed
// to replace the snapshot, so superseded in-flight responses are discarded.
func (s *Store) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedGen++
	s.pendingGen = s.issuedGen
	return s.issuedGen
}

// ApplyLoad installs the result of the load identified by gen. A stale
// generation is ignored entirely. On error the prior collection is kept and
// the failure is recorded for visibility.
func (s *Store) ApplyLoad(gen uint64, products []catalog.Product, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issuedGen {
		return
	}
	s.pendingGen = 0

	if err != nil {
		s.lastError = err
		s.lastUpdated = time.Now()
		s.failures++
		return
	}

	s.products = cloneProducts(products)
	s.loaded = true
	s.lastError = nil
	s.lastUpdated = time.Now()
	s.failures = 0
}

// ApplyCreated appends a newly persisted product. A second application with
// the same id is ignored, which guards against double-submit races.
func (s *Store) ApplyCreated(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return
	}
	s.products = append(s.products, p)
	s.lastUpdated = time.Now()
}

// ApplyUpdated replaces the entry matching p.ID. It reports false when the
// entry is absent, leaving the collection unchanged; the caller decides how
// to surface the stale state.
func (s *Store) ApplyUpdated(p catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(p.ID)
	if idx < 0 {
		return false
	}
	s.products[idx] = p
	s.lastUpdated = time.Now()
	return true
}

// ApplyDeleted removes the entry with the given id. Deleting an absent id
// is a no-op.
func (s *Store) ApplyDeleted(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	s.lastUpdated = time.Now()
}

// SetImageURL swaps the stored image URL for the product with the given id.
func (s *Store) SetImageURL(id int, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.products[idx].ImageURL = url
	s.lastUpdated = time.Now()
	return true
}

// SetSearchTerm updates the filter input. The filtered view is derived at
// snapshot time, so the recompute is synchronous by construction.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

// Get returns a copy of the product with the given id.
func (s *Store) Get(id int) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return catalog.Product{}, false
	}
	return s.products[idx], true
}

// Snapshot returns a copy of the current state with the filtered view and
// aggregates derived from the base collection as it stands right now.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Products:            cloneProducts(s.products),
		Filtered:            Filter(s.products, s.searchTerm),
		Stats:               Aggregates(s.products),
		SearchTerm:          s.searchTerm,
		Loaded:              s.loaded,
		Loading:             s.pendingGen != 0,
		LastUpdated:         s.lastUpdated,
		ConsecutiveFailures: s.failures,
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

// Filter returns the subsequence of products whose name contains term
// case-insensitively or whose id, rendered as text, contains it. An empty
// term matches everything.
func Filter(products []catalog.Product, term string) []catalog.Product {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return cloneProducts(products)
	}
	needle := strings.ToLower(trimmed)
	var out []catalog.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strconv.Itoa(p.ID), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Aggregates computes collection statistics from scratch.
func Aggregates(products []catalog.Product) Aggregate {
	agg := Aggregate{Count: len(products)}
	for _, p := range products {
		agg.TotalStock += p.Stock
		agg.TotalValue += p.Price * float64(p.Stock)
	}
	return agg
}

// indexOf assumes the caller holds the lock.
func (s *Store) indexOf(id int) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(items []catalog.Product) []catalog.Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catalog.Product, len(items))
	copy(dup, items)
	return dup
}
