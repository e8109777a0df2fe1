package http

import (
	"fmt"
	"net/http"

	"finquiz-service/internal/app"
	"finquiz-service/internal/auth"
	"finquiz-service/internal/domain"
)

const adminTokenHeader = "X-Admin-Token"

// AdminHandler covers question-bank maintenance and settings updates. Every
// endpoint requires the admin credential.
type AdminHandler struct {
	service    *app.AdminService
	authorizer *auth.AdminAuthorizer
}

func NewAdminHandler(service *app.AdminService, authorizer *auth.AdminAuthorizer) *AdminHandler {
	return &AdminHandler{service: service, authorizer: authorizer}
}

// requireAdmin gates a handler on the shared-token check.
func (h *AdminHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorizer.Authorize(r.Header.Get(adminTokenHeader)) {
			writeError(w, domain.ErrUnauthorized, "")
			return
		}
		next(w, r)
	}
}

type createQuestionRequest struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
}

type createQuestionResponse struct {
	Success  bool                     `json:"success"`
	Question domain.SanitizedQuestion `json:"question"`
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation), "")
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), app.CreateQuestionInput{
		Prompt:       req.Prompt,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
	})
	if err != nil {
		writeError(w, err, "Failed to create question.")
		return
	}
	writeJSON(w, http.StatusOK, createQuestionResponse{
		Success:  true,
		Question: question.Sanitized(),
	})
}

type settingsPayload struct {
	QuestionCount int   `json:"questionCount"`
	DurationMs    int64 `json:"durationMs"`
}

type listQuestionsResponse struct {
	Questions []domain.Question `json:"questions"`
	Config    settingsPayload   `json:"config"`
}

func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, settings, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch questions.")
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, listQuestionsResponse{
		Questions: questions,
		Config: settingsPayload{
			QuestionCount: settings.QuestionCount,
			DurationMs:    settings.DurationMs,
		},
	})
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "Failed to delete question.")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type updateSettingsResponse struct {
	Success bool            `json:"success"`
	Config  settingsPayload `json:"config"`
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := parseJSONBody(r, &patch); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation), "")
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, err, "Failed to update settings.")
		return
	}
	writeJSON(w, http.StatusOK, updateSettingsResponse{
		Success: true,
		Config: settingsPayload{
			QuestionCount: settings.QuestionCount,
			DurationMs:    settings.DurationMs,
		},
	})
}
