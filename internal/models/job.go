package models

import "time"

// Job is an employer-authored posting consumed by the candidate feed.
type Job struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	OwnerID      string    `gorm:"not null;index;size:64" json:"owner_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Pay          string    `json:"pay"`
	Duration     string    `json:"duration"`
	Requirements []string  `gorm:"serializer:json" json:"requirements"`
	ImageURL     string    `json:"image_url,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
