package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// SaveAnswersRequest is the body of POST /api/survey/answers. Without
// answers the locally drafted ones are saved.
type SaveAnswersRequest struct {
	Answers []domain.SurveyAnswer `json:"answers"`
}

// DraftAnswerRequest is the body of PUT /api/survey/answers/{questionID}.
type DraftAnswerRequest struct {
	Area  string `json:"area"`
	Value int    `json:"value"`
}

// ListQuestions handles GET /api/survey/questions
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Survey.LoadQuestions(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Survey.Err())
		return
	}
	httputil.WriteData(w, ws.Survey.Questions(), "")
}

// ListAnswers handles GET /api/survey/answers
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Survey.LoadAnswers(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Survey.Err())
		return
	}
	httputil.WriteData(w, ws.Survey.Answers(), "")
}

// SaveAnswers handles POST /api/survey/answers
func (h *Handler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req SaveAnswersRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	if err := ws.Survey.SaveAnswers(r.Context(), req.Answers); err != nil {
		h.actionFailed(w, r, ws, err, ws.Survey.Err())
		return
	}
	h.done(w, ws, ws.Survey.View(), toastAnswersSaved)
}

// DraftAnswer handles PUT /api/survey/answers/{questionID}. The answer is
// kept in the workspace until saved.
func (h *Handler) DraftAnswer(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	qid, ok := httputil.ParseID(w, "question id", chi.URLParam(r, "questionID"))
	if !ok {
		return
	}

	var req DraftAnswerRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	ws.Survey.SetAnswer(domain.SurveyAnswer{QuestionID: qid, Area: req.Area, Value: req.Value})
	httputil.WriteData(w, ws.Survey.View(), "")
}

// GetSurveySession handles GET /api/survey/session
func (h *Handler) GetSurveySession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Survey.LoadSession(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Survey.Err())
		return
	}
	httputil.WriteData(w, ws.Survey.View(), "")
}

// UpdateSurveySession handles PUT /api/survey/session
func (h *Handler) UpdateSurveySession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req domain.SurveySessionUpdate
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Survey.UpdateSession(r.Context(), req); err != nil {
		h.actionFailed(w, r, ws, err, ws.Survey.Err())
		return
	}
	httputil.WriteData(w, ws.Survey.View(), "")
}
