package highlight

import "fmt"

// Event is one step of a highlighting pass.
// Implementations are [EventSource], [EventCategoryStart] and [EventCategoryEnd].
type Event interface {
	highlightEvent()
}

// EventSource covers the source bytes [Start, End) with the innermost
// active category.
type EventSource struct {
	Start int
	End   int
}

func (EventSource) highlightEvent() {}

func (e EventSource) String() string {
	return fmt.Sprintf("source[%d:%d]", e.Start, e.End)
}

// EventCategoryStart opens a category. Categories nest; the innermost wins.
type EventCategoryStart struct {
	// Index is the palette category index.
	Index int
}

func (EventCategoryStart) highlightEvent() {}

func (e EventCategoryStart) String() string {
	return fmt.Sprintf("start(%d)", e.Index)
}

// EventCategoryEnd closes the most recently opened category.
type EventCategoryEnd struct{}

func (EventCategoryEnd) highlightEvent() {}

func (EventCategoryEnd) String() string {
	return "end"
}
