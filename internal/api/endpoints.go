package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

// AuthAPI covers token issue, registration and the current profile.
type AuthAPI struct{ c *Client }

// Login exchanges credentials for a token pair.
func (a AuthAPI) Login(ctx context.Context, in domain.Credentials) (*domain.TokenPair, error) {
	var out domain.TokenPair
	if err := a.c.do(ctx, http.MethodPost, "/token/", "/token/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not sign in.
func (a AuthAPI) Register(ctx context.Context, in domain.RegisterInput) error {
	return a.c.do(ctx, http.MethodPost, "/auth/register/", "/auth/register/", in, nil)
}

// Me returns the signed-in user's profile.
func (a AuthAPI) Me(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := a.c.do(ctx, http.MethodGet, "/auth/me/", "/auth/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe applies a partial profile update and returns the new profile.
func (a AuthAPI) UpdateMe(ctx context.Context, in domain.ProfileUpdate) (*domain.Profile, error) {
	var out domain.Profile
	if err := a.c.do(ctx, http.MethodPatch, "/auth/me/", "/auth/me/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModulesAPI covers modules and their per-user progress.
type ModulesAPI struct{ c *Client }

func (m ModulesAPI) List(ctx context.Context) ([]domain.Module, error) {
	return list[domain.Module](ctx, m.c, "/modules/")
}

// Unlock spends XP to open a module.
func (m ModulesAPI) Unlock(ctx context.Context, id int) (*domain.ModuleProgress, error) {
	var out domain.ModuleProgress
	path := "/modules/" + strconv.Itoa(id) + "/unlock/"
	if err := m.c.do(ctx, http.MethodPost, "/modules/{id}/unlock/", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Detail returns progress, mission progress and streak of one module.
func (m ModulesAPI) Detail(ctx context.Context, id int) (*domain.ModuleDetail, error) {
	var out domain.ModuleDetail
	path := "/progress/module/" + strconv.Itoa(id) + "/"
	if err := m.c.do(ctx, http.MethodGet, "/progress/module/{id}/", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MissionsAPI covers missions of unlocked modules.
type MissionsAPI struct{ c *Client }

func (m MissionsAPI) List(ctx context.Context) ([]domain.Mission, error) {
	return list[domain.Mission](ctx, m.c, "/missions/")
}

// Complete marks a mission done and credits its XP.
func (m MissionsAPI) Complete(ctx context.Context, id string) (*domain.MissionProgress, error) {
	var out domain.MissionProgress
	path := "/missions/" + url.PathEscape(id) + "/complete/"
	if err := m.c.do(ctx, http.MethodPost, "/missions/{id}/complete/", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProgressAPI covers the progression summary.
type ProgressAPI struct{ c *Client }

func (p ProgressAPI) Overview(ctx context.Context) (*domain.ProgressOverview, error) {
	var out domain.ProgressOverview
	if err := p.c.do(ctx, http.MethodGet, "/progress/overview/", "/progress/overview/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HabitsAPI covers habit tracking.
type HabitsAPI struct{ c *Client }

func (h HabitsAPI) List(ctx context.Context) ([]domain.Habit, error) {
	return list[domain.Habit](ctx, h.c, "/habits/")
}

func (h HabitsAPI) Create(ctx context.Context, in domain.NewHabit) (*domain.Habit, error) {
	var out domain.Habit
	if err := h.c.do(ctx, http.MethodPost, "/habits/", "/habits/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h HabitsAPI) Update(ctx context.Context, id int, in domain.HabitUpdate) (*domain.Habit, error) {
	var out domain.Habit
	path := "/habits/" + strconv.Itoa(id) + "/"
	if err := h.c.do(ctx, http.MethodPatch, "/habits/{id}/", path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SurveyAPI covers the wellness survey.
type SurveyAPI struct{ c *Client }

func (s SurveyAPI) Questions(ctx context.Context) ([]domain.SurveyQuestion, error) {
	return list[domain.SurveyQuestion](ctx, s.c, "/wellness-survey/questions/")
}

func (s SurveyAPI) Answers(ctx context.Context) ([]domain.SurveyAnswer, error) {
	return list[domain.SurveyAnswer](ctx, s.c, "/wellness-survey/answers/")
}

// SaveAnswers posts answers as one batch.
func (s SurveyAPI) SaveAnswers(ctx context.Context, answers []domain.SurveyAnswer) error {
	return s.c.do(ctx, http.MethodPost, "/wellness-survey/answers/", "/wellness-survey/answers/", answers, nil)
}

func (s SurveyAPI) Session(ctx context.Context) (*domain.SurveySession, error) {
	var out domain.SurveySession
	if err := s.c.do(ctx, http.MethodGet, "/wellness-survey/session/", "/wellness-survey/session/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s SurveyAPI) UpdateSession(ctx context.Context, in domain.SurveySessionUpdate) (*domain.SurveySession, error) {
	var out domain.SurveySession
	if err := s.c.do(ctx, http.MethodPut, "/wellness-survey/session/", "/wellness-survey/session/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Results returns the per-area averages that feed the radar.
func (s SurveyAPI) Results(ctx context.Context) (*domain.SurveyResults, error) {
	var out domain.SurveyResults
	if err := s.c.do(ctx, http.MethodGet, "/wellness-survey/results/", "/wellness-survey/results/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
