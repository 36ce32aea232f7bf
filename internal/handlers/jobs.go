package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/services"
	"github.com/diewo77/workly/internal/storage"
)

// JobsHandler is the employer's posting CRUD. Publish and edit accept
// multipart forms because the client sends the illustration image inline.
type JobsHandler struct {
	review *services.ReviewService
	blobs  storage.BlobStore
}

func NewJobsHandler(review *services.ReviewService, blobs storage.BlobStore) *JobsHandler {
	return &JobsHandler{review: review, blobs: blobs}
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	jobs, err := h.review.MyJobs(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, jobs)
}

func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, r.PathValue("id"))
}

func (h *JobsHandler) save(w http.ResponseWriter, r *http.Request, jobID string) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	in := services.JobInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Pay:          r.FormValue("pay"),
		Duration:     r.FormValue("duration"),
		Requirements: r.FormValue("requirements"),
		Latitude:     parseCoord(r.FormValue("latitude")),
		Longitude:    parseCoord(r.FormValue("longitude")),
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		url, err := h.blobs.Upload("jobs", header.Filename, file)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
			return
		}
		in.ImageURL = url
	}
	job, violations, err := h.review.SaveJob(uid, jobID, in)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	if !violations.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	status := http.StatusOK
	if jobID == "" {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, job)
}

func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := h.review.DeleteJob(uid, r.PathValue("id")); err != nil {
		writeReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		httpx.JSONError(w, http.StatusNotFound, "job_not_found", nil)
	case errors.Is(err, services.ErrApplicationNotFound):
		httpx.JSONError(w, http.StatusNotFound, "application_not_found", nil)
	case errors.Is(err, services.ErrNotJobOwner):
		httpx.JSONError(w, http.StatusForbidden, "not_job_owner", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", nil)
	case errors.Is(err, services.ErrMissingSchedule):
		httpx.JSONError(w, http.StatusBadRequest, "date_and_time_required", nil)
	case errors.Is(err, services.ErrInvalidSchedule):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date_or_time", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
