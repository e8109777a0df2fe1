package http

import (
	"fmt"
	"net/http"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
)

// QuizHandler exposes the quiz-taking endpoints. Timestamps go over the wire
// as epoch milliseconds; serverTime lets clients reconcile clock skew
// against the absolute expiry.
type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

type startRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
}

type playerPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type startResponse struct {
	SessionID  string                     `json:"sessionId"`
	Player     playerPayload              `json:"player"`
	Questions  []domain.SanitizedQuestion `json:"questions"`
	StartedAt  int64                      `json:"startedAt"`
	ExpiresAt  int64                      `json:"expiresAt"`
	DurationMs int64                      `json:"durationMs"`
	ServerTime int64                      `json:"serverTime"`
}

func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation), "")
		return
	}

	result, err := h.service.Start(r.Context(), app.StartInput{
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
	})
	if err != nil {
		writeError(w, err, "Failed to start quiz session.")
		return
	}

	writeJSON(w, http.StatusOK, startResponse{
		SessionID: result.SessionID,
		Player: playerPayload{
			ID:   result.Player.ID,
			Name: result.Player.Name,
		},
		Questions:  result.Questions,
		StartedAt:  result.StartedAt.UnixMilli(),
		ExpiresAt:  result.ExpiresAt.UnixMilli(),
		DurationMs: result.DurationMs,
		ServerTime: result.ServerTime.UnixMilli(),
	})
}

type sessionResponse struct {
	SessionID  string                     `json:"sessionId"`
	Questions  []domain.SanitizedQuestion `json:"questions"`
	StartedAt  int64                      `json:"startedAt"`
	ExpiresAt  int64                      `json:"expiresAt"`
	DurationMs int64                      `json:"durationMs"`
	ServerTime int64                      `json:"serverTime"`
}

func (h *QuizHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeError(w, err, "Failed to load session.")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:  view.SessionID,
		Questions:  view.Questions,
		StartedAt:  view.StartedAt.UnixMilli(),
		ExpiresAt:  view.ExpiresAt.UnixMilli(),
		DurationMs: view.DurationMs,
		ServerTime: view.ServerTime.UnixMilli(),
	})
}

type submitRequest struct {
	SessionID string               `json:"sessionId"`
	Answers   []domain.AnswerInput `json:"answers"`
}

type submitResponse struct {
	SessionID      string                    `json:"sessionId"`
	SubmissionID   string                    `json:"submissionId"`
	Score          int                       `json:"score"`
	TotalQuestions int                       `json:"totalQuestions"`
	TimeTakenMs    int64                     `json:"timeTakenMs"`
	Leaderboard    []domain.LeaderboardEntry `json:"leaderboard"`
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation), "")
		return
	}

	result, err := h.service.Submit(r.Context(), req.SessionID, req.Answers)
	if err != nil {
		writeError(w, err, "Failed to submit quiz.")
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		SessionID:      result.SessionID,
		SubmissionID:   result.SubmissionID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		TimeTakenMs:    result.TimeTakenMs,
		Leaderboard:    result.Leaderboard.Entries,
	})
}
