package bookmark

import (
	"context"

	"github.com/mmcdole/moviedb/internal/domain"
)

// Control is the bookmark toggle shared by every view. It is bound to one
// component name so that a view is never notified about its own clicks.
type Control struct {
	manager   *Manager
	component string
}

// NewControl binds a control to component. The name must not be AllComponents.
func NewControl(m *Manager, component string) *Control {
	return &Control{manager: m, component: component}
}

// Component returns the name the control subscribes and notifies under.
func (c *Control) Component() string {
	return c.component
}

// Attach subscribes the view's refresh hook.
func (c *Control) Attach(obs domain.BookmarkObserver) {
	c.manager.Subscribe(c.component, obs.OnBookmarksChanged)
}

// Detach removes every registration made under the control's component.
func (c *Control) Detach() {
	c.manager.Unsubscribe(c.component)
}

// Ready reports whether clicks can be accepted, which is once the list is loaded.
func (c *Control) Ready() bool {
	return c.manager.Loaded()
}

// IsBookmarked reports the cached state of a row.
func (c *Control) IsBookmarked(item domain.ListItem) bool {
	key := item.GetKey()
	return c.manager.IsBookmarked(key.ID, key.Type)
}

// Click toggles item and, once the write succeeded, notifies every other component.
func (c *Control) Click(ctx context.Context, item domain.ListItem) (bool, error) {
	present, err := c.manager.Toggle(ctx, item.AsBookmark())
	if err != nil {
		return present, err
	}
	c.manager.NotifySubscribers(c.component)
	return present, nil
}
