package models

import "time"

// Status is the canonical application state. Legacy records used
// denied/interview in places; those map onto rejected/waiting at the edges.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWaiting  Status = "waiting" // interview scheduled
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the four canonical states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWaiting, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanTransition enforces the strictly-linear graph:
// pending -> {waiting, rejected}; waiting -> {accepted, rejected}.
// accepted and rejected are terminal.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusWaiting || to == StatusRejected
	case StatusWaiting:
		return to == StatusAccepted || to == StatusRejected
	}
	return false
}

// Application joins one candidate to one job. The composite primary key
// guarantees at most one application per (job, candidate); re-applying
// overwrites instead of duplicating.
type Application struct {
	ID     string `gorm:"primaryKey;size:129" json:"id"` // "{jobID}_{candidateID}"
	JobID  string `gorm:"not null;index;size:64" json:"job_id"`
	UserID string `gorm:"not null;index;size:64" json:"user_id"`
	Status Status `gorm:"not null;size:16" json:"status"`

	// Snapshot fields captured at apply time so the employer view
	// does not need a join against users/jobs.
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhotoURL       string `json:"photo_url,omitempty"`
	Description    string `json:"description,omitempty"`
	ResumeURL      string `json:"resume_url,omitempty"`
	PushToken      string `json:"push_token,omitempty"`

	InterviewAt int64 `json:"interview_at,omitempty"` // epoch seconds, 0 = none
	// Orphaned marks records whose job posting was deleted; they are kept
	// rather than cascade-deleted so the candidate still sees the outcome.
	Orphaned  bool      `json:"orphaned,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplicationID builds the composite key shared with legacy data.
func ApplicationID(jobID, userID string) string { return jobID + "_" + userID }
