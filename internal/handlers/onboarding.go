package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/services"
)

// OnboardingHandler exposes the registration wizard. Drafts are addressed by
// the id returned from Start; no auth token exists yet at this stage.
type OnboardingHandler struct {
	wizard *services.OnboardingService
}

func NewOnboardingHandler(wizard *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{wizard: wizard}
}

func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	draft, err := h.wizard.Start()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, draft)
}

func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	draft, violations, err := h.wizard.Next(r.PathValue("id"), in.Value)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}
	if !violations.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	draft, err := h.wizard.Back(r.PathValue("id"))
	if err != nil {
		writeOnboardingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

// AttachPhoto uploads the optional profile photo for the draft and returns
// its URL, which the client then submits as the photo step value.
func (h *OnboardingHandler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_required", nil)
		return
	}
	defer file.Close()
	url, err := h.wizard.AttachPhoto(r.PathValue("id"), header.Filename, file)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// Commit finalizes the wizard: account plus profile in one transaction, then
// a bearer token so the client lands directly in the app.
func (h *OnboardingHandler) Commit(w http.ResponseWriter, r *http.Request) {
	profile, err := h.wizard.Commit(r.PathValue("id"))
	if err != nil {
		writeOnboardingError(w, err)
		return
	}
	token, err := auth.IssueToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tokenResponse{Token: token, Profile: profile})
}

func writeOnboardingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		httpx.JSONError(w, http.StatusNotFound, "draft_not_found", nil)
	case errors.Is(err, services.ErrDraftNotReady):
		httpx.JSONError(w, http.StatusConflict, "draft_not_ready", nil)
	case errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusConflict, "email_already_in_use", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
