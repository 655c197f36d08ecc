package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Activity event types emitted by the dashboard after a successful mutation.
const (
	EventSessionLogin      = "session.login"
	EventSessionRegister   = "session.register"
	EventSessionLogout     = "session.logout"
	EventModuleUnlocked    = "module.unlocked"
	EventMissionCompleted  = "mission.completed"
	EventHabitCreated      = "habit.created"
	EventHabitUpdated      = "habit.updated"
	EventSurveySubmitted   = "survey.submitted"
	EventProgressRefreshed = "progress.refreshed"
)

// Event is the envelope for every activity message.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Username      string            `json:"username,omitempty"`
	SubjectID     string            `json:"subject_id,omitempty"`
	SubjectType   string            `json:"subject_type,omitempty"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent builds an event with a fresh ID and the current UTC time. A nil
// data payload is omitted from the wire form.
func NewEvent(eventType, subjectType, subjectID, source string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Version:     1,
		Timestamp:   time.Now().UTC(),
		Source:      source,
		Data:        raw,
		Metadata:    make(map[string]string),
	}, nil
}

// ForUser sets the username the activity belongs to.
func (e *Event) ForUser(username string) *Event {
	e.Username = username
	return e
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata adds a key-value pair to the event metadata.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Key is the partition key. Events of one user stay ordered.
func (e *Event) Key() string {
	if e.Username != "" {
		return e.Username
	}
	return e.SubjectID
}

// message is the Kafka form of e: JSON value, partition key and routing
// headers a consumer can filter on without decoding the body.
func (e *Event) message() (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", e.EventType, err)
	}
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	return kafka.Message{Key: []byte(e.Key()), Value: data, Headers: headers}, nil
}

// UnmarshalEvent decodes a message value written by Publish.
func UnmarshalEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &e, nil
}

// UnmarshalData deserializes the event data payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
