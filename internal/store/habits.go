package store

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/pkg/kafka"
)

// HabitsService is the habit tracking API. api.HabitsAPI implements it.
type HabitsService interface {
	List(ctx context.Context) ([]domain.Habit, error)
	Create(ctx context.Context, in domain.NewHabit) (*domain.Habit, error)
	Update(ctx context.Context, id int, in domain.HabitUpdate) (*domain.Habit, error)
}

// Habits holds the user's habits. Writes reload the whole list instead of
// patching it.
type Habits struct {
	*opState

	api     HabitsService
	session ProfileSource
	events  *event.Emitter

	mu     sync.RWMutex
	habits []domain.Habit
}

func NewHabits(svc HabitsService, session ProfileSource, events *event.Emitter, log *slog.Logger) *Habits {
	return &Habits{
		opState: newOpState("habits", log),
		api:     svc,
		session: session,
		events:  events,
	}
}

func (h *Habits) FetchHabits(ctx context.Context) error {
	h.begin()
	defer h.end()

	list, err := h.api.List(ctx)
	if err != nil {
		return h.fail(ctx, "fetch_habits", err, msgHabits)
	}
	h.mu.Lock()
	h.habits = list
	h.mu.Unlock()
	return nil
}

func (h *Habits) CreateHabit(ctx context.Context, in domain.NewHabit) error {
	h.begin()
	defer h.end()

	created, err := h.api.Create(ctx, in)
	if err != nil {
		return h.fail(ctx, "create_habit", err, msgCreateHabit)
	}
	h.events.Emit(ctx, kafka.EventHabitCreated, h.session.Username(), event.SubjectHabit, strconv.Itoa(created.ID),
		event.HabitData{ID: created.ID, Name: created.Name, Difficulty: created.Difficulty})
	return h.FetchHabits(ctx)
}

func (h *Habits) UpdateHabit(ctx context.Context, id int, in domain.HabitUpdate) error {
	h.begin()
	defer h.end()

	updated, err := h.api.Update(ctx, id, in)
	if err != nil {
		return h.fail(ctx, "update_habit", err, msgUpdateHabit)
	}
	h.events.Emit(ctx, kafka.EventHabitUpdated, h.session.Username(), event.SubjectHabit, strconv.Itoa(id),
		event.HabitData{ID: id, Name: updated.Name, Difficulty: updated.Difficulty})
	return h.FetchHabits(ctx)
}

func (h *Habits) Habits() []domain.Habit {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Habit(nil), h.habits...)
}
