package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/models"
)

// SessionState is the routing decision derived from an authenticated subject.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionPendingRole     SessionState = "pending-role"
	SessionCandidate       SessionState = "candidate"
	SessionEmployer        SessionState = "employer"
)

// Resolution is idempotent: resolving the same (uid, profile row) twice yields
// the same state, so clients can re-run it on every profile update without
// redirect loops.
type Resolution struct {
	State   SessionState        `json:"state"`
	Profile *models.UserProfile `json:"profile,omitempty"`
	// Hint tells the client what to do about a non-routable state. A profile
	// that never appears after authentication stays pending-role; the hint
	// points at the complete-your-profile screen instead of waiting forever.
	Hint string `json:"hint,omitempty"`
}

type SessionService struct{ DB *gorm.DB }

func NewSessionService(db *gorm.DB) *SessionService { return &SessionService{DB: db} }

// Resolve maps an authenticated subject id (or none) to a session state.
func (s *SessionService) Resolve(uid string) (Resolution, error) {
	if uid == "" {
		return Resolution{State: SessionUnauthenticated}, nil
	}
	var profile models.UserProfile
	err := s.DB.First(&profile, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{State: SessionPendingRole, Hint: "complete_profile"}, nil
	}
	if err != nil {
		return Resolution{}, err
	}
	switch profile.Role {
	case models.RoleSearching:
		return Resolution{State: SessionCandidate, Profile: &profile}, nil
	case models.RoleHiring:
		return Resolution{State: SessionEmployer, Profile: &profile}, nil
	}
	return Resolution{State: SessionPendingRole, Profile: &profile, Hint: "complete_profile"}, nil
}
