package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/workly/internal/models"
)

var (
	ErrJobNotFound     = errors.New("job_not_found")
	ErrProfileNotFound = errors.New("profile_not_found")
	// ErrResumeRequired rejects an apply before any write when the candidate
	// profile carries no resume URL.
	ErrResumeRequired      = errors.New("resume_required")
	ErrApplicationNotFound = errors.New("application_not_found")
	ErrNotApplicationOwner = errors.New("not_application_owner")
	ErrUnknownDecision     = errors.New("unknown_decision")
)

// Decision is a discrete gesture on a feed card.
type Decision string

const (
	DecisionDiscard    Decision = "discard"
	DecisionApply      Decision = "apply"
	DecisionInspectMap Decision = "map"
)

// DecisionResult carries the outcome plus a cosmetic flash hint. The flash is
// fire-and-forget on the client; it is independent of the write outcome and
// the engine never waits on it.
type DecisionResult struct {
	Flash       string              `json:"flash,omitempty"` // green | red
	Application *models.Application `json:"application,omitempty"`
	Latitude    *float64            `json:"latitude,omitempty"`
	Longitude   *float64            `json:"longitude,omitempty"`
}

// FeedService is the candidate-side job listing store and swipe engine.
type FeedService struct{ DB *gorm.DB }

func NewFeedService(db *gorm.DB) *FeedService { return &FeedService{DB: db} }

// Visible returns all jobs minus the ones the candidate already applied to.
// The recompute is pure and synchronous against the current rows, so a job
// deleted mid-gesture simply disappears from the next read.
func (s *FeedService) Visible(candidateID string) ([]models.Job, error) {
	applied, err := s.appliedJobIDs(candidateID)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	q := s.DB.Order("created_at")
	if len(applied) > 0 {
		q = q.Where("id NOT IN ?", applied)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *FeedService) appliedJobIDs(candidateID string) ([]string, error) {
	var ids []string
	if err := s.DB.Model(&models.Application{}).Where("user_id = ?", candidateID).Pluck("job_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list applied job ids: %w", err)
	}
	return ids, nil
}

// Decide translates a gesture into its effect. Only apply persists anything.
func (s *FeedService) Decide(candidateID, jobID string, d Decision) (*DecisionResult, error) {
	switch d {
	case DecisionDiscard:
		// Purely a local filter transition on the client.
		return &DecisionResult{Flash: "red"}, nil
	case DecisionInspectMap:
		var job models.Job
		if err := s.DB.First(&job, "id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJobNotFound
			}
			return nil, err
		}
		return &DecisionResult{Latitude: job.Latitude, Longitude: job.Longitude}, nil
	case DecisionApply:
		app, err := s.Apply(candidateID, jobID)
		if err != nil {
			return nil, err
		}
		return &DecisionResult{Flash: "green", Application: app}, nil
	}
	return nil, ErrUnknownDecision
}

// Apply writes the application record for a right-swipe. The composite key
// dedupes rapid repeated gestures at the storage layer: the upsert overwrites
// instead of inserting a second row, so no client-side locking is needed.
func (s *FeedService) Apply(candidateID, jobID string) (*models.Application, error) {
	var job models.Job
	if err := s.DB.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	// Point-in-time profile read for the snapshot.
	var profile models.UserProfile
	if err := s.DB.First(&profile, "id = ?", candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if profile.ResumeURL == "" {
		return nil, ErrResumeRequired
	}
	app := models.Application{
		ID:             models.ApplicationID(jobID, candidateID),
		JobID:          jobID,
		UserID:         candidateID,
		Status:         models.StatusPending,
		JobTitle:       job.Title,
		JobDescription: job.Description,
		Name:           profile.Name,
		Email:          profile.Email,
		PhotoURL:       profile.AvatarURL,
		Description:    profile.Bio,
		ResumeURL:      profile.ResumeURL,
		PushToken:      profile.PushToken,
	}
	if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&app).Error; err != nil {
		return nil, fmt.Errorf("write application: %w", err)
	}
	return &app, nil
}

// Mine lists the candidate's applications enriched from the job row. Records
// written before snapshots were mandatory may miss title/description; those
// are backfilled onto the record so the next read avoids the join.
func (s *FeedService) Mine(candidateID string) ([]models.Application, error) {
	var apps []models.Application
	if err := s.DB.Where("user_id = ?", candidateID).Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	for i := range apps {
		if apps[i].JobTitle != "" && apps[i].JobDescription != "" {
			continue
		}
		var job models.Job
		if err := s.DB.First(&job, "id = ?", apps[i].JobID).Error; err != nil {
			continue // job deleted; record stays as-is
		}
		if apps[i].JobTitle == "" {
			apps[i].JobTitle = job.Title
		}
		if apps[i].JobDescription == "" {
			apps[i].JobDescription = job.Description
		}
		if err := s.DB.Model(&apps[i]).Updates(map[string]any{
			"job_title":       apps[i].JobTitle,
			"job_description": apps[i].JobDescription,
		}).Error; err != nil {
			return nil, fmt.Errorf("backfill application %s: %w", apps[i].ID, err)
		}
	}
	return apps, nil
}

// Cancel deletes the candidate's own application.
func (s *FeedService) Cancel(candidateID, appID string) error {
	var app models.Application
	if err := s.DB.First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}
	if app.UserID != candidateID {
		return ErrNotApplicationOwner
	}
	return s.DB.Delete(&app).Error
}
