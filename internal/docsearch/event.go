package docsearch

import (
	"context"
	"fmt"
)

// EventTypeStatus is the only event type the tool emits.
const EventTypeStatus = "status"

// Event is a progress notification delivered to the host while a search runs.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData describes the current stage of a search.
type EventData struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// Emitter receives status events. A nil Emitter disables notifications.
// Errors returned by an Emitter are logged and otherwise ignored.
type Emitter func(ctx context.Context, event Event) error

// StatusEvent builds a status event.
func StatusEvent(description string, done bool) Event {
	return Event{
		Type: EventTypeStatus,
		Data: EventData{Description: description, Done: done},
	}
}

// emit delivers event to fn. A failing or panicking emitter never aborts the search.
func (t *Tool) emit(ctx context.Context, fn Emitter, event Event) {
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.WarnContext(ctx, "Status emitter panicked", "description", event.Data.Description, "panic", fmt.Sprint(r))
		}
	}()

	if err := fn(ctx, event); err != nil {
		t.logger.WarnContext(ctx, "Failed to emit status event", "description", event.Data.Description, "error", err)
	}
}
