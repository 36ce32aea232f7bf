package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/services"
)

// ReviewHandler drives the employer's per-application workflow.
type ReviewHandler struct {
	review *services.ReviewService
}

func NewReviewHandler(review *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{review: review}
}

// Applicants lists applications for one owned posting.
func (h *ReviewHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	apps, err := h.review.Applicants(uid, r.PathValue("id"))
	if err != nil {
		writeReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, apps)
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	app, err := h.review.Reject(uid, r.PathValue("id"))
	if err != nil {
		writeReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

// ScheduleInterview moves an application to waiting with a concrete slot.
func (h *ReviewHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var in struct {
		Date string `json:"date"` // 2006-01-02
		Time string `json:"time"` // 15:04
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	app, err := h.review.ScheduleInterview(uid, r.PathValue("id"), in.Date, in.Time)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *ReviewHandler) Accept(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	app, err := h.review.Accept(uid, r.PathValue("id"))
	if err != nil {
		writeReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}
