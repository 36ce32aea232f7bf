package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/workly/internal/ai"
	"github.com/diewo77/workly/internal/httpx"
)

// CoachHandler proxies single-shot career questions to the text generator.
type CoachHandler struct {
	gen ai.TextGenerator
}

func NewCoachHandler(gen ai.TextGenerator) *CoachHandler {
	return &CoachHandler{gen: gen}
}

func (h *CoachHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "message_required", nil)
		return
	}
	answer, err := h.gen.Generate(r.Context(), in.Message)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			httpx.JSONError(w, http.StatusServiceUnavailable, "coach_unavailable", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "coach_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"answer": answer})
}
