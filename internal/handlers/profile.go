package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/models"
	"github.com/diewo77/workly/internal/storage"
)

// maxUploadBytes caps multipart uploads (resumes, avatars, job images).
const maxUploadBytes = 10 << 20

type ProfileHandler struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

func NewProfileHandler(db *gorm.DB, blobs storage.BlobStore) *ProfileHandler {
	return &ProfileHandler{db: db, blobs: blobs}
}

func (h *ProfileHandler) load(w http.ResponseWriter, r *http.Request) (*models.UserProfile, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var profile models.UserProfile
	if err := h.db.First(&profile, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return nil, false
	}
	return &profile, true
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type profileUpdate struct {
	Name        *string `json:"name"`
	Education   *string `json:"education"`
	Bio         *string `json:"bio"`
	Skills      *string `json:"skills"`
	CompanyName *string `json:"company_name"`
	CompanyBio  *string `json:"company_bio"`
}

// Update patches the editable profile fields. Pointers distinguish "clear
// this field" from "leave it alone".
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var in profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		profile.Name = strings.TrimSpace(*in.Name)
	}
	if in.Education != nil {
		profile.Education = *in.Education
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Skills != nil {
		profile.Skills = *in.Skills
	}
	if in.CompanyName != nil {
		profile.CompanyName = *in.CompanyName
	}
	if in.CompanyBio != nil {
		profile.CompanyBio = *in.CompanyBio
	}
	if err := h.db.Save(profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// UploadResume stores the document and records its URL on the profile. A
// resume URL is what gates the candidate's ability to apply.
func (h *ProfileHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	h.uploadTo(w, r, "file", "resumes", func(p *models.UserProfile, url string) {
		p.ResumeURL = url
	})
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadTo(w, r, "file", "avatars", func(p *models.UserProfile, url string) {
		p.AvatarURL = url
	})
}

func (h *ProfileHandler) uploadTo(w http.ResponseWriter, r *http.Request, field, prefix string, set func(*models.UserProfile, string)) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_required", nil)
		return
	}
	defer file.Close()
	url, err := h.blobs.Upload(prefix, header.Filename, file)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}
	set(profile, url)
	if err := h.db.Save(profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// RegisterPushToken stores the device push token so application outcomes can
// notify the candidate. An empty token unregisters the device.
func (h *ProfileHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var in struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.db.Model(profile).Update("push_token", in.Token).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
