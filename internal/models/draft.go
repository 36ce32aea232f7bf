package models

import "time"

// OnboardingDraft accumulates wizard fields across steps. The draft survives
// back navigation and failed commits; it is deleted only after a successful
// commit produced the account and profile.
type OnboardingDraft struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Step      int       `json:"step"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"-"` // plaintext until commit hashes it; draft is server-side only
	FirstName string    `json:"first_name,omitempty"`
	Education string    `json:"education,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
