package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/models"
	"github.com/diewo77/workly/internal/storage"
	"github.com/diewo77/workly/internal/validation"
)

// Wizard steps, strictly ordered. The photo step is the only optional one.
const (
	StepEmail = iota
	StepPassword
	StepFirstName
	StepEducation
	StepPhoto
	StepRole
	stepCount
)

var (
	ErrDraftNotFound = errors.New("draft_not_found")
	ErrDraftNotReady = errors.New("draft_not_ready")
	ErrEmailTaken    = errors.New("email_already_in_use")
)

// OnboardingService drives the sequential registration wizard. Fields
// accumulate in a server-side draft and commit atomically at the end.
type OnboardingService struct {
	DB             *gorm.DB
	Blobs          storage.BlobStore
	PlaceholderURL string // avatar substituted when no photo was uploaded
}

func NewOnboardingService(db *gorm.DB, blobs storage.BlobStore, placeholderURL string) *OnboardingService {
	return &OnboardingService{DB: db, Blobs: blobs, PlaceholderURL: placeholderURL}
}

func (s *OnboardingService) Start() (*models.OnboardingDraft, error) {
	draft := models.OnboardingDraft{ID: uuid.NewString(), Step: StepEmail}
	if err := s.DB.Create(&draft).Error; err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &draft, nil
}

func (s *OnboardingService) load(draftID string) (*models.OnboardingDraft, error) {
	var draft models.OnboardingDraft
	if err := s.DB.First(&draft, "id = ?", draftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// Next validates the current step's value and, only if it passes, stores it
// and advances. A failing validator leaves both value and step untouched.
func (s *OnboardingService) Next(draftID, value string) (*models.OnboardingDraft, validation.Violations, error) {
	draft, err := s.load(draftID)
	if err != nil {
		return nil, nil, err
	}
	if draft.Step >= stepCount {
		return draft, nil, nil // already at commit; nothing to advance
	}
	v := validation.Violations{}
	switch draft.Step {
	case StepEmail:
		validation.Required("email", value, v)
		if v.Empty() {
			validation.Email("email", value, v)
		}
		if v.Empty() {
			draft.Email = strings.TrimSpace(value)
		}
	case StepPassword:
		validation.Required("password", value, v)
		if v.Empty() {
			validation.MinLen("password", value, 6, v)
		}
		if v.Empty() {
			draft.Password = value
		}
	case StepFirstName:
		validation.Required("first_name", value, v)
		if v.Empty() {
			draft.FirstName = strings.TrimSpace(value)
		}
	case StepEducation:
		validation.Required("education", value, v)
		if v.Empty() {
			draft.Education = strings.TrimSpace(value)
		}
	case StepPhoto:
		// Optional step: an empty value skips, a non-empty one must be the
		// URL returned by AttachPhoto (or any absolute URL).
		if value != "" {
			validation.URL("photo", value, v)
			if v.Empty() {
				draft.PhotoURL = value
			}
		}
	case StepRole:
		validation.Required("role", value, v)
		if v.Empty() {
			validation.OneOf("role", value, []string{models.RoleSearching, models.RoleHiring}, v)
		}
		if v.Empty() {
			draft.Role = value
		}
	}
	if !v.Empty() {
		return draft, v, nil
	}
	draft.Step++
	if err := s.DB.Save(draft).Error; err != nil {
		return nil, nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil, nil
}

// Back steps backwards and clears nothing; the draft keeps every value.
func (s *OnboardingService) Back(draftID string) (*models.OnboardingDraft, error) {
	draft, err := s.load(draftID)
	if err != nil {
		return nil, err
	}
	if draft.Step > StepEmail {
		draft.Step--
		if err := s.DB.Save(draft).Error; err != nil {
			return nil, fmt.Errorf("save draft: %w", err)
		}
	}
	return draft, nil
}

// AttachPhoto uploads the photo now so its URL is available before the
// profile commit. The returned URL is fed to Next at the photo step.
func (s *OnboardingService) AttachPhoto(draftID, filename string, r io.Reader) (string, error) {
	draft, err := s.load(draftID)
	if err != nil {
		return "", err
	}
	url, err := s.Blobs.Upload("avatars", filename, r)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	draft.PhotoURL = url
	if err := s.DB.Save(draft).Error; err != nil {
		return "", fmt.Errorf("save draft: %w", err)
	}
	return url, nil
}

// Commit creates the auth identity and then the profile document with all
// accumulated fields. Any failure surfaces an error and leaves the draft at
// its current step so the user can retry.
func (s *OnboardingService) Commit(draftID string) (*models.UserProfile, error) {
	draft, err := s.load(draftID)
	if err != nil {
		return nil, err
	}
	if draft.Step < stepCount {
		return nil, ErrDraftNotReady
	}
	var count int64
	if err := s.DB.Model(&models.UserProfile{}).Where("email = ?", draft.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	avatar := draft.PhotoURL
	if avatar == "" {
		avatar = s.PlaceholderURL
	}
	uid := uuid.NewString()
	profile := models.UserProfile{
		ID:        uid,
		UID:       uid,
		Email:     draft.Email,
		Password:  string(hash),
		Name:      draft.FirstName,
		Role:      draft.Role,
		Education: draft.Education,
		AvatarURL: avatar,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		return tx.Delete(draft).Error
	})
	if err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return &profile, nil
}
