// Package bookmark keeps the signed-in user's bookmark list in memory and
// synchronizes it with remote storage. Views read the cache synchronously,
// mutate it through Toggle, and learn about changes made elsewhere through
// named subscriptions.
package bookmark

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

// AllComponents passed to Unsubscribe removes every registration.
const AllComponents = "all"

type subscription struct {
	component string
	fn        func()
}

type notifyRequest struct {
	calling string
	exclude bool
}

// Manager owns the authoritative bookmark cache.
//
// Initialize and Toggle are serialized end to end, remote call included.
// Bookmarks and IsBookmarked only take the cache lock and never wait on I/O.
// Toggle applies its change to the cache before the remote write and restores
// the previous list if that write fails. Toggle is refused until one
// Initialize has succeeded, since the whole cache is written back.
type Manager struct {
	store  domain.BookmarkStore
	users  domain.UserProvider
	logger *slog.Logger

	opMu sync.Mutex // serializes Initialize and Toggle

	mu        sync.RWMutex // protects bookmarks and loaded
	bookmarks []domain.BookmarkRecord
	loaded    bool

	subMu sync.Mutex
	subs  []subscription

	notifyMu  sync.Mutex // protects notifying and pending
	notifying bool
	pending   []notifyRequest
}

// NewManager creates a manager with an empty cache.
func NewManager(store domain.BookmarkStore, users domain.UserProvider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		users:     users,
		logger:    logger,
		bookmarks: []domain.BookmarkRecord{},
	}
}

// Initialize loads the current user's bookmarks, replaces the cache wholesale
// and then notifies every subscriber. Failures wrap domain.ErrRemoteFetch and
// leave the cache untouched.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.load(ctx); err != nil {
		return err
	}
	m.notify("", false)
	return nil
}

func (m *Manager) load(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	userID, err := m.currentUserID(ctx)
	if err != nil {
		m.logger.Error("failed to resolve user for bookmarks", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}

	records, err := m.store.ReadBookmarks(ctx, userID)
	if err != nil {
		m.logger.Error("failed to fetch bookmarks", "error", err, "userID", userID)
		return fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}

	records = dedupe(records)

	m.mu.Lock()
	m.bookmarks = domain.CloneBookmarks(records)
	m.loaded = true
	m.mu.Unlock()

	metrics.BookmarkCacheSize.Set(float64(len(records)))
	m.logger.Info("bookmarks loaded", "count", len(records), "userID", userID)
	return nil
}

// Loaded reports whether Initialize has succeeded at least once.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Bookmarks returns a deep copy of the cache in insertion order.
func (m *Manager) Bookmarks() []domain.BookmarkRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.CloneBookmarks(m.bookmarks)
}

// IsBookmarked reports whether the cache holds a record with this identity.
func (m *Manager) IsBookmarked(id int, t domain.MediaType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookmarks {
		if b.ID == id && b.Type == t {
			return true
		}
	}
	return false
}

// Toggle removes the record with rec's identity if cached, appends rec otherwise,
// and writes the full list to the store. It reports whether the title is
// bookmarked afterwards. It does not notify subscribers.
//
// On a failed write the cache is restored, the returned flag reflects the
// restored state, and the error wraps domain.ErrRemoteSync. Before the first
// successful Initialize the error also wraps domain.ErrNotLoaded and the
// store is not touched.
func (m *Manager) Toggle(ctx context.Context, rec domain.BookmarkRecord) (bool, error) {
	if !rec.Type.Valid() {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidMediaType, rec.Type)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	userID, err := m.currentUserID(ctx)
	if err != nil {
		m.logger.Error("failed to resolve user for bookmark toggle", "error", err)
		return m.IsBookmarked(rec.ID, rec.Type), fmt.Errorf("%w: %w", domain.ErrRemoteSync, err)
	}

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		m.logger.Warn("bookmark toggle before initial load", "key", rec.Key().String())
		return false, fmt.Errorf("%w: %w", domain.ErrRemoteSync, domain.ErrNotLoaded)
	}
	previous := m.bookmarks
	next, present := toggled(previous, rec)
	m.bookmarks = next
	snapshot := domain.CloneBookmarks(next)
	m.mu.Unlock()

	if err := m.store.ReplaceBookmarks(ctx, userID, snapshot); err != nil {
		m.mu.Lock()
		m.bookmarks = previous
		m.mu.Unlock()

		metrics.RecordBookmarkToggle("rolled_back")
		m.logger.Error("failed to sync bookmarks, change rolled back",
			"error", err, "key", rec.Key().String(), "userID", userID)
		return !present, fmt.Errorf("%w: %w", domain.ErrRemoteSync, err)
	}

	if present {
		metrics.RecordBookmarkToggle("added")
	} else {
		metrics.RecordBookmarkToggle("removed")
	}
	metrics.BookmarkCacheSize.Set(float64(len(snapshot)))
	m.logger.Debug("bookmark toggled", "key", rec.Key().String(), "bookmarked", present, "count", len(snapshot))
	return present, nil
}

// Subscribe registers fn under component. Names need not be unique.
func (m *Manager) Subscribe(component string, fn func()) {
	if fn == nil {
		return
	}
	m.subMu.Lock()
	m.subs = append(m.subs, subscription{component: component, fn: fn})
	m.subMu.Unlock()
}

// Unsubscribe removes every registration named component.
// AllComponents (or an empty name) clears the registry.
func (m *Manager) Unsubscribe(component string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	if component == "" || component == AllComponents {
		m.subs = nil
		return
	}

	kept := make([]subscription, 0, len(m.subs))
	for _, s := range m.subs {
		if s.component != component {
			kept = append(kept, s)
		}
	}
	m.subs = kept
}

// NotifySubscribers invokes, in registration order, every callback not
// registered under calling. A panicking callback is logged and skipped.
// Passes never interleave: a request made while a pass is running, from a
// callback or another goroutine, is queued and run after it.
func (m *Manager) NotifySubscribers(calling string) {
	m.notify(calling, true)
}

// SubscriberCount returns the number of live registrations.
func (m *Manager) SubscriberCount() int {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	return len(m.subs)
}

func (m *Manager) notify(calling string, exclude bool) {
	m.notifyMu.Lock()
	m.pending = append(m.pending, notifyRequest{calling: calling, exclude: exclude})
	if m.notifying {
		m.notifyMu.Unlock()
		return
	}
	m.notifying = true
	for len(m.pending) > 0 {
		req := m.pending[0]
		m.pending = m.pending[1:]
		m.notifyMu.Unlock()
		m.pass(req.calling, req.exclude)
		m.notifyMu.Lock()
	}
	m.notifying = false
	m.notifyMu.Unlock()
}

func (m *Manager) pass(calling string, exclude bool) {
	m.subMu.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, s := range subs {
		if exclude && s.component == calling {
			continue
		}
		m.invoke(s)
	}
}

func (m *Manager) invoke(s subscription) {
	defer func() {
		if r := recover(); r != nil {
			metrics.BookmarkSubscriberPanics.Inc()
			m.logger.Error("bookmark subscriber panicked", "component", s.component, "panic", r)
		}
	}()
	metrics.BookmarkNotifications.Inc()
	s.fn()
}

func (m *Manager) currentUserID(ctx context.Context) (string, error) {
	user, err := m.users.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil || user.ID == "" {
		return "", domain.ErrNoSession
	}
	return user.ID, nil
}

// toggled returns a new list with rec's identity flipped, and whether it is present now.
// The input slice is never modified.
func toggled(list []domain.BookmarkRecord, rec domain.BookmarkRecord) ([]domain.BookmarkRecord, bool) {
	out := make([]domain.BookmarkRecord, 0, len(list)+1)
	removed := false
	for _, b := range list {
		if b.Same(rec) {
			removed = true
			continue
		}
		out = append(out, b)
	}
	if removed {
		return out, false
	}
	return append(out, rec.Clone()), true
}

// dedupe keeps the first record of each identity so stored lists written by
// older clients cannot break the no-duplicates invariant.
func dedupe(records []domain.BookmarkRecord) []domain.BookmarkRecord {
	seen := make(map[domain.BookmarkKey]struct{}, len(records))
	out := make([]domain.BookmarkRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}
