package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/services"
)

// FeedHandler is the candidate surface: the swipe feed and the candidate's
// own applications.
type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// List returns the jobs the candidate has not applied to yet.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	jobs, err := h.feed.Visible(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, jobs)
}

// Decide applies a swipe gesture to the job in the path.
func (h *FeedHandler) Decide(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	jobID := r.PathValue("id")
	var in struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res, err := h.feed.Decide(uid, jobID, services.Decision(in.Decision))
	if err != nil {
		writeFeedError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Mine lists the candidate's applications with snapshots backfilled.
func (h *FeedHandler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	apps, err := h.feed.Mine(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, apps)
}

// Cancel withdraws one of the candidate's own applications.
func (h *FeedHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := h.feed.Cancel(uid, r.PathValue("id")); err != nil {
		writeFeedError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func writeFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		httpx.JSONError(w, http.StatusNotFound, "job_not_found", nil)
	case errors.Is(err, services.ErrApplicationNotFound):
		httpx.JSONError(w, http.StatusNotFound, "application_not_found", nil)
	case errors.Is(err, services.ErrProfileNotFound):
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
	case errors.Is(err, services.ErrResumeRequired):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "resume_required", nil)
	case errors.Is(err, services.ErrNotApplicationOwner):
		httpx.JSONError(w, http.StatusForbidden, "not_application_owner", nil)
	case errors.Is(err, services.ErrUnknownDecision):
		httpx.JSONError(w, http.StatusBadRequest, "unknown_decision", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
