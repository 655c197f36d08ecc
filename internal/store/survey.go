package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/pkg/kafka"
)

// SurveyService is the wellness survey API. api.SurveyAPI implements it.
type SurveyService interface {
	Questions(ctx context.Context) ([]domain.SurveyQuestion, error)
	Answers(ctx context.Context) ([]domain.SurveyAnswer, error)
	SaveAnswers(ctx context.Context, answers []domain.SurveyAnswer) error
	Session(ctx context.Context) (*domain.SurveySession, error)
	UpdateSession(ctx context.Context, in domain.SurveySessionUpdate) (*domain.SurveySession, error)
}

// Survey holds the wellness survey: questions, the answers given so far
// keyed by question, and the step the user is on.
type Survey struct {
	*opState

	api     SurveyService
	session ProfileSource
	events  *event.Emitter

	mu        sync.RWMutex
	questions []domain.SurveyQuestion
	answers   map[int]domain.SurveyAnswer
	step      int
	completed bool
}

func NewSurvey(svc SurveyService, session ProfileSource, events *event.Emitter, log *slog.Logger) *Survey {
	return &Survey{
		opState: newOpState("survey", log),
		api:     svc,
		session: session,
		events:  events,
		answers: make(map[int]domain.SurveyAnswer),
		step:    1,
	}
}

func (s *Survey) LoadQuestions(ctx context.Context) error {
	s.begin()
	defer s.end()

	qs, err := s.api.Questions(ctx)
	if err != nil {
		return s.fail(ctx, "load_questions", err, msgQuestions)
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	s.mu.Lock()
	s.questions = qs
	s.mu.Unlock()
	return nil
}

// LoadAnswers replaces local answers with the saved ones.
func (s *Survey) LoadAnswers(ctx context.Context) error {
	s.begin()
	defer s.end()

	list, err := s.api.Answers(ctx)
	if err != nil {
		return s.fail(ctx, "load_answers", err, msgAnswers)
	}
	answers := make(map[int]domain.SurveyAnswer, len(list))
	for _, a := range list {
		answers[a.QuestionID] = a
	}
	s.mu.Lock()
	s.answers = answers
	s.mu.Unlock()
	return nil
}

// SaveAnswers posts answers as one batch. A nil slice saves the local
// answers.
func (s *Survey) SaveAnswers(ctx context.Context, answers []domain.SurveyAnswer) error {
	s.begin()
	defer s.end()

	if answers == nil {
		answers = s.Answers()
	}
	if err := s.api.SaveAnswers(ctx, answers); err != nil {
		return s.fail(ctx, "save_answers", err, msgSaveAnswers)
	}
	s.mu.Lock()
	for _, a := range answers {
		s.answers[a.QuestionID] = a
	}
	s.mu.Unlock()

	username := s.session.Username()
	s.events.Emit(ctx, kafka.EventSurveySubmitted, username, event.SubjectSurvey, username,
		event.SurveySubmittedData{Answers: len(answers)})
	return nil
}

// LoadSession restores step and completion from the backend.
func (s *Survey) LoadSession(ctx context.Context) error {
	s.begin()
	defer s.end()

	sess, err := s.api.Session(ctx)
	if err != nil {
		return s.fail(ctx, "load_session", err, msgSurveySession)
	}
	s.applySession(sess)
	return nil
}

// UpdateSession saves step and completion.
func (s *Survey) UpdateSession(ctx context.Context, in domain.SurveySessionUpdate) error {
	s.begin()
	defer s.end()

	sess, err := s.api.UpdateSession(ctx, in)
	if err != nil {
		return s.fail(ctx, "update_session", err, msgSurveySession)
	}
	s.applySession(sess)
	return nil
}

func (s *Survey) applySession(sess *domain.SurveySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.CurrentStep >= 1 {
		s.step = sess.CurrentStep
	}
	s.completed = sess.IsCompleted
}

// SetAnswer records an answer locally.
func (s *Survey) SetAnswer(a domain.SurveyAnswer) {
	s.mu.Lock()
	s.answers[a.QuestionID] = a
	s.mu.Unlock()
}

// SetCurrentStep moves to step. Steps start at 1.
func (s *Survey) SetCurrentStep(step int) {
	if step < 1 {
		step = 1
	}
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
}

func (s *Survey) SetCompleted(done bool) {
	s.mu.Lock()
	s.completed = done
	s.mu.Unlock()
}

// Reset clears answers and returns to the first step.
func (s *Survey) Reset() {
	s.mu.Lock()
	s.answers = make(map[int]domain.SurveyAnswer)
	s.step = 1
	s.completed = false
	s.mu.Unlock()
}

func (s *Survey) Questions() []domain.SurveyQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SurveyQuestion(nil), s.questions...)
}

// Answers returns local answers ordered by question id.
func (s *Survey) Answers() []domain.SurveyAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SurveyAnswer, 0, len(s.answers))
	for _, a := range s.answers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

func (s *Survey) CurrentStep() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

func (s *Survey) Completed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// SurveyView is the read model of the survey.
type SurveyView struct {
	Questions   []domain.SurveyQuestion `json:"questions"`
	Answers     []domain.SurveyAnswer   `json:"answers"`
	CurrentStep int                     `json:"current_step"`
	IsCompleted bool                    `json:"is_completed"`
	Loading     bool                    `json:"loading"`
	Error       string                  `json:"error,omitempty"`
}

func (s *Survey) View() SurveyView {
	return SurveyView{
		Questions:   s.Questions(),
		Answers:     s.Answers(),
		CurrentStep: s.CurrentStep(),
		IsCompleted: s.Completed(),
		Loading:     s.Loading(),
		Error:       s.Err(),
	}
}
