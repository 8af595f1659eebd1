package tui

// ChannelObserver adapts domain.BookmarkObserver to a channel for Bubble Tea.
// The manager calls it inside its notification pass, so it never blocks.
type ChannelObserver struct {
	component string
	ch        chan<- BookmarksChangedMsg
}

// NewChannelObserver creates a new channel-based observer for component.
func NewChannelObserver(component string, ch chan<- BookmarksChangedMsg) *ChannelObserver {
	return &ChannelObserver{component: component, ch: ch}
}

// OnBookmarksChanged sends to the channel (non-blocking if full).
func (o *ChannelObserver) OnBookmarksChanged() {
	select {
	case o.ch <- BookmarksChangedMsg{Component: o.component}:
	default: // Non-blocking if channel full
	}
}
