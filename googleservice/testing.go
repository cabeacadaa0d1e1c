package googleservice

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
)

// GCalendarAPIStub records created events instead of calling google.
// CreateEvent fails once FailAfter events exist, when FailAfter > 0.
type GCalendarAPIStub struct {
	Events              map[string]*calendar.Event
	FailAfter           int
	ClearAllEventsError error

	nextID int
}

func NewGCalendarAPIStub() *GCalendarAPIStub {
	return &GCalendarAPIStub{Events: map[string]*calendar.Event{}}
}

func (gcalAPI *GCalendarAPIStub) CreateEvent(ctx context.Context, event *calendar.Event) (string, error) {
	if gcalAPI.FailAfter > 0 && len(gcalAPI.Events) >= gcalAPI.FailAfter {
		return "", fmt.Errorf("calendar quota exceeded")
	}

	gcalAPI.nextID++
	eventID := fmt.Sprintf("event-%d", gcalAPI.nextID)
	gcalAPI.Events[eventID] = event
	return eventID, nil
}

func (gcalAPI *GCalendarAPIStub) ClearAllEvents(ctx context.Context, eventIDs []string) error {
	if gcalAPI.ClearAllEventsError != nil {
		return gcalAPI.ClearAllEventsError
	}

	for _, eventID := range eventIDs {
		delete(gcalAPI.Events, eventID)
	}
	return nil
}
