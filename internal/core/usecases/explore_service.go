package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
	"github.com/samirrijal/propmap/internal/pkg/metrics"
)

// DefaultSessionTTL is how long an idle explore session is kept.
const DefaultSessionTTL = 30 * time.Minute

// ListingSource supplies the listing collection explore sessions work on.
type ListingSource interface {
	List(ctx context.Context) ([]domain.Listing, error)
}

// ExploreService keeps server-side explore sessions. Each session owns its
// own explorer.Session and is guarded by its own lock.
type ExploreService struct {
	source ListingSource
	mode   explorer.Containment
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*exploreEntry
}

type exploreEntry struct {
	mu       sync.Mutex
	session  *explorer.Session
	lastSeen time.Time
	watchers map[int]chan domain.Snapshot
	nextID   int
}

// NewExploreService creates a new ExploreService. A non-positive ttl uses
// DefaultSessionTTL.
func NewExploreService(source ListingSource, mode explorer.Containment, ttl time.Duration) *ExploreService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &ExploreService{
		source:   source,
		mode:     mode,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*exploreEntry),
	}
}

// Open starts a session over the current collection with default criteria.
// The session is registered before the collection is loaded, so a Refresh
// that races with Open waits for the load and then applies its own.
func (s *ExploreService) Open(ctx context.Context) (string, domain.Snapshot, error) {
	id := uuid.NewString()
	e := &exploreEntry{
		session:  explorer.NewSession(s.mode),
		lastSeen: s.now(),
		watchers: make(map[int]chan domain.Snapshot),
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	listings, err := s.source.List(ctx)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return "", domain.Snapshot{}, fmt.Errorf("load listings: %w", err)
	}
	snap := e.session.ReplaceListings(listings)

	metrics.ActiveSessions.Set(float64(s.Count()))
	metrics.VisibleListings.Observe(float64(len(snap.Visible)))
	slog.DebugContext(ctx, "explore session opened", "session_id", id, "listings", len(listings))
	return id, snap, nil
}

// Get returns the current snapshot of a session.
func (s *ExploreService) Get(id string) (domain.Snapshot, error) {
	e, err := s.entry(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	return e.session.Snapshot(), nil
}

// Apply runs one command against a session. It reports false when the
// command was a no-op, which only happens when selecting a listing that is
// not visible.
func (s *ExploreService) Apply(ctx context.Context, id string, cmd domain.Command) (domain.Snapshot, bool, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Snapshot{}, false, err
	}

	e, err := s.entry(id)
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()

	snap, applied := apply(e.session, cmd)
	if !applied {
		return snap, false, nil
	}

	metrics.CommandsApplied.WithLabelValues(string(cmd.Action)).Inc()
	metrics.VisibleListings.Observe(float64(len(snap.Visible)))
	if e.session.SelectionCleared() {
		metrics.SelectionsAutoCleared.Inc()
		slog.DebugContext(ctx, "selection left visible set", "session_id", id)
	}
	e.notify(snap)
	return snap, true, nil
}

// Close discards a session and ends its watchers.
func (s *ExploreService) Close(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	metrics.ActiveSessions.Set(float64(n))
	e.closeWatchers()
	return nil
}

// Watch subscribes to snapshots published after each applied change. Slow
// receivers only see the latest snapshot. The returned func unsubscribes.
func (s *ExploreService) Watch(id string) (<-chan domain.Snapshot, func(), error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.watchers == nil {
		return nil, nil, domain.ErrNotFound
	}
	wid := e.nextID
	e.nextID++
	ch := make(chan domain.Snapshot, 1)
	e.watchers[wid] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.watchers[wid]; ok {
				delete(e.watchers, wid)
				close(c)
			}
		})
	}
	return ch, cancel, nil
}

// VisibleQuery is the input of a stateless visible-set computation.
type VisibleQuery struct {
	Query    string
	Criteria domain.FilterCriteria // PriceRange is ignored when Price is nil
	Price    *domain.PriceRange    // nil spans the collection
	Boundary *domain.Boundary
	Sort     domain.SortOption
}

// Visible computes a visible set without keeping any session state.
func (s *ExploreService) Visible(ctx context.Context, q VisibleQuery) ([]domain.Listing, error) {
	listings, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	c := q.Criteria
	if q.Price != nil {
		c.PriceRange = *q.Price
	} else {
		c.PriceRange = explorer.DefaultCriteria(listings).PriceRange
	}
	boundary := q.Boundary
	if boundary != nil && len(boundary.Vertices) == 0 {
		boundary = nil
	}

	sorted := explorer.SortListings(listings, q.Sort)
	return explorer.Reducer{Containment: s.mode}.ComputeVisible(sorted, q.Query, c, boundary), nil
}

// Refresh reloads the collection once and swaps it into every session.
func (s *ExploreService) Refresh(ctx context.Context) error {
	listings, err := s.source.List(ctx)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}

	s.mu.RLock()
	entries := make([]*exploreEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		snap := e.session.ReplaceListings(listings)
		if e.session.SelectionCleared() {
			metrics.SelectionsAutoCleared.Inc()
		}
		e.notify(snap)
		e.mu.Unlock()
	}

	slog.DebugContext(ctx, "explore sessions refreshed", "sessions", len(entries), "listings", len(listings))
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *ExploreService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	var expired []*exploreEntry
	s.mu.Lock()
	for id, e := range s.sessions {
		// A locked entry is in use and so not idle.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, e := range expired {
		e.closeWatchers()
	}
	metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *ExploreService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired explore sessions", "count", n)
			}
		}
	}
}

// Count returns the number of live sessions.
func (s *ExploreService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ExploreService) entry(id string) (*exploreEntry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func apply(sess *explorer.Session, cmd domain.Command) (domain.Snapshot, bool) {
	switch cmd.Action {
	case domain.ActionSearch:
		return sess.SetQuery(cmd.Query), true
	case domain.ActionFilter:
		return sess.SetCriteria(*cmd.Criteria), true
	case domain.ActionRefine:
		return sess.RefineCriteria(*cmd.Criteria), true
	case domain.ActionReset:
		return sess.ResetCriteria(), true
	case domain.ActionDraw:
		return sess.SetBoundary(domain.Boundary{Vertices: cmd.Vertices}), true
	case domain.ActionErase:
		return sess.ClearBoundary(), true
	case domain.ActionSelect:
		return sess.Select(cmd.ID)
	case domain.ActionDeselect:
		return sess.Deselect(), true
	case domain.ActionSort:
		opt, _ := domain.ParseSortOption(cmd.Sort)
		return sess.SetSort(opt), true
	}
	return sess.Snapshot(), false
}

func validateCommand(cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionSearch, domain.ActionReset, domain.ActionErase, domain.ActionDeselect:
		return nil
	case domain.ActionFilter, domain.ActionRefine:
		if cmd.Criteria == nil {
			return &domain.ValidationError{Details: []string{string(cmd.Action) + " requires criteria"}}
		}
		return nil
	case domain.ActionDraw:
		for i, v := range cmd.Vertices {
			if !v.Valid() {
				return &domain.ValidationError{Details: []string{fmt.Sprintf("vertex %d out of range", i)}}
			}
		}
		return nil
	case domain.ActionSelect:
		if cmd.ID == "" {
			return &domain.ValidationError{Details: []string{"select requires id"}}
		}
		return nil
	case domain.ActionSort:
		if _, ok := domain.ParseSortOption(cmd.Sort); !ok {
			return &domain.ValidationError{Details: []string{"unknown sort " + cmd.Sort}}
		}
		return nil
	}
	return &domain.ValidationError{Details: []string{"unknown action " + string(cmd.Action)}}
}

// notify must be called with e.mu held.
func (e *exploreEntry) notify(snap domain.Snapshot) {
	for _, ch := range e.watchers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (e *exploreEntry) closeWatchers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.watchers {
		delete(e.watchers, id)
		close(ch)
	}
	e.watchers = nil
}
