package chatvault

import "context"

// PageEventType identifies a notification raised by a live page.
type PageEventType string

// Page event types.
const (
	// EventContentChanged reports that the page DOM was mutated.
	EventContentChanged PageEventType = "changed"

	// EventSaveClicked reports that the user pressed an injected save control.
	EventSaveClicked PageEventType = "save"
)

// PageEvent is a notification raised by a live page.
type PageEvent struct {
	Type PageEventType

	// MessageID identifies the message whose save control was pressed.
	MessageID string
}

// Page is a live conversation page the extraction agent runs against.
type Page interface {
	// URL returns the current page URL.
	URL() string

	// HTML returns a snapshot of the rendered DOM. Message elements that
	// intersect the user's current text selection carry the
	// SelectedAttr attribute in the snapshot.
	HTML(ctx context.Context) (string, error)

	// InjectControl adds a save control to the message element with the
	// given position among elements matching containerSelector. The page
	// must not add a second control to an element that already has one.
	InjectControl(ctx context.Context, containerSelector string, index int, messageID string) error

	// Events returns page notifications until ctx is done.
	Events(ctx context.Context) (<-chan PageEvent, error)
}

// Attributes written into page snapshots by Page implementations.
const (
	// SelectedAttr marks message elements intersecting the text selection.
	SelectedAttr = "data-chatvault-selected"

	// InjectedAttr marks message elements that already carry an injected
	// control. The element itself is content and is never stripped.
	InjectedAttr = "data-chatvault-injected"

	// ControlClass is the class of injected save controls.
	ControlClass = "chatvault-save"
)
