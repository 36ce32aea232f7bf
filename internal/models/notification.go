package models

import "time"

// Notification is an outbox row for a best-effort push. Rows are written in
// the same transaction as the primary status change and dispatched afterwards;
// a failed dispatch never rolls back the primary write.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PushToken string     `gorm:"not null" json:"push_token"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    string     `gorm:"not null;default:'queued';index" json:"status"` // queued, sent, failed
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

const (
	NotificationQueued = "queued"
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)
