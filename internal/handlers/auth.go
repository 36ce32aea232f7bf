package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/models"
	"github.com/diewo77/workly/internal/validation"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	Token   string              `json:"token"`
	Profile *models.UserProfile `json:"profile"`
}

// Signup creates an account plus its profile document in one call. The
// longer onboarding wizard is the preferred path; this endpoint serves
// clients that collect everything on a single screen.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	if v.Empty() {
		validation.Email("email", in.Email, v)
	}
	validation.Required("password", in.Password, v)
	if _, ok := v["password"]; !ok {
		validation.MinLen("password", in.Password, 6, v)
	}
	validation.Required("name", in.Name, v)
	validation.Required("role", in.Role, v)
	if _, ok := v["role"]; !ok {
		validation.OneOf("role", in.Role, []string{models.RoleSearching, models.RoleHiring}, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	var count int64
	if err := h.db.Model(&models.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_already_in_use", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	uid := uuid.NewString()
	profile := models.UserProfile{
		ID:       uid,
		UID:      uid,
		Email:    email,
		Password: string(hash),
		Name:     in.Name,
		Role:     in.Role,
	}
	if err := h.db.Create(&profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	h.respondWithToken(w, http.StatusCreated, &profile)
}

// Login checks credentials and hands out a bearer token. Errors are
// deliberately specific (unknown account vs wrong password) so the client
// can show a useful message instead of a generic failure.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var profile models.UserProfile
	if err := h.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "user_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(in.Password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "wrong_password", nil)
		return
	}
	h.respondWithToken(w, http.StatusOK, &profile)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, profile *models.UserProfile) {
	token, err := auth.IssueToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, status, tokenResponse{Token: token, Profile: profile})
}
