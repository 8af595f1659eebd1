package domain

// BookmarkObserver receives a signal whenever another component changed the bookmark list.
// Implementations must not block: they run inside the manager's notification pass.
type BookmarkObserver interface {
	OnBookmarksChanged()
}

// ObserverFunc adapts a plain function to BookmarkObserver.
type ObserverFunc func()

func (f ObserverFunc) OnBookmarksChanged() { f() }

// NoOpObserver discards notifications (for CLI/batch use).
type NoOpObserver struct{}

func (NoOpObserver) OnBookmarksChanged() {}
