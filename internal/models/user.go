package models

import "time"

// UserProfile is the profile document behind an authenticated account.
// ID matches the auth subject; UID is a legacy duplicate of it that some
// employer-side records still reference instead of the primary key.
type UserProfile struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	UID         string    `gorm:"index;size:64" json:"uid,omitempty"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Name        string    `gorm:"size:255;index" json:"name"`
	Role        string    `gorm:"size:16;index" json:"role"` // searching | hiring
	Education   string    `json:"education,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Skills      string    `json:"skills,omitempty"` // comma separated
	AvatarURL   string    `json:"avatar_url,omitempty"`
	ResumeURL   string    `json:"resume_url,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	CompanyBio  string    `json:"company_bio,omitempty"`
	PushToken   string    `json:"push_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	RoleSearching = "searching"
	RoleHiring    = "hiring"
)
