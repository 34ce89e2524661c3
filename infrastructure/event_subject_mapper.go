package infrastructure

import (
	"fmt"

	"gamenight/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeOddsUpdated:
		return "odds.updated"
	case events.EventTypeWagerPlaced:
		return "wagers.placed"
	case events.EventTypeWagerResolved:
		return "wagers.resolved"
	case events.EventTypeWagersCancelled:
		return "wagers.cancelled"
	case events.EventTypeOutcomeSettled:
		return "outcomes.settled"
	case events.EventTypeRatingChanged:
		return "ratings.changed"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "odds.updated":
		return events.EventTypeOddsUpdated
	case "wagers.placed":
		return events.EventTypeWagerPlaced
	case "wagers.resolved":
		return events.EventTypeWagerResolved
	case "wagers.cancelled":
		return events.EventTypeWagersCancelled
	case "outcomes.settled":
		return events.EventTypeOutcomeSettled
	case "ratings.changed":
		return events.EventTypeRatingChanged
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"odds.updated",
		"wagers.placed",
		"wagers.resolved",
		"wagers.cancelled",
		"outcomes.settled",
		"ratings.changed",
	}
}
