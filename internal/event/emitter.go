// Package event publishes dashboard activity (sign-ins, unlocks, completed
// missions, habit changes) to Kafka after a mutation succeeds.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/satjeet/ClinePythonDividis/pkg/kafka"
	"github.com/satjeet/ClinePythonDividis/pkg/logger"
)

// SourceDashboard identifies events emitted by this client.
const SourceDashboard = "dividis-dashboard"

// Subject types.
const (
	SubjectUser    = "user"
	SubjectModule  = "module"
	SubjectMission = "mission"
	SubjectHabit   = "habit"
	SubjectSurvey  = "survey"
)

const publishTimeout = 2 * time.Second

// SessionData is the payload of session events.
type SessionData struct {
	Username string `json:"username"`
}

// ModuleUnlockedData is the payload of module.unlocked.
type ModuleUnlockedData struct {
	ModuleID         int    `json:"module_id"`
	ModuleName       string `json:"module_name,omitempty"`
	State            string `json:"state"`
	ExperiencePoints int    `json:"experience_points"`
}

// MissionCompletedData is the payload of mission.completed.
type MissionCompletedData struct {
	MissionID string `json:"mission_id"`
	ModuleID  int    `json:"module_id,omitempty"`
	Title     string `json:"title,omitempty"`
	XPReward  int    `json:"xp_reward"`
}

// HabitData is the payload of habit.created and habit.updated.
type HabitData struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"nombre"`
	Difficulty string `json:"dificultad,omitempty"`
}

// SurveySubmittedData is the payload of survey.submitted.
type SurveySubmittedData struct {
	Answers int `json:"answers"`
}

// Emitter publishes activity events. Publishing never fails the caller's
// operation: errors are logged and dropped. A nil *Emitter is a no-op.
type Emitter struct {
	publisher kafka.Publisher
	logger    *slog.Logger
}

// NewEmitter wraps publisher. A nil publisher yields a no-op emitter.
func NewEmitter(publisher kafka.Publisher, log *slog.Logger) *Emitter {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{publisher: publisher, logger: log}
}

// Emit publishes one event for username. It detaches from ctx cancellation
// so a finished HTTP request does not drop the event, but bounds the wait.
func (e *Emitter) Emit(ctx context.Context, eventType, username, subjectType, subjectID string, data any) {
	if e == nil {
		return
	}
	evt, err := kafka.NewEvent(eventType, subjectType, subjectID, SourceDashboard, data)
	if err != nil {
		e.logger.WarnContext(ctx, "build activity event failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	evt.ForUser(username)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(pctx, evt); err != nil {
		e.logger.WarnContext(ctx, "publish activity event failed",
			slog.String("event_type", eventType),
			slog.String("event_id", evt.EventID),
			slog.String("error", err.Error()),
		)
		return
	}
	e.logger.DebugContext(ctx, "activity event published",
		slog.String("event_type", eventType),
		slog.String("event_id", evt.EventID),
	)
}

// Close closes the underlying publisher.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	if err := e.publisher.Close(); err != nil {
		return fmt.Errorf("close activity publisher: %w", err)
	}
	return nil
}
