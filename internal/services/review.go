package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/models"
	"github.com/diewo77/workly/internal/notify"
	"github.com/diewo77/workly/internal/validation"
)

var (
	ErrNotJobOwner       = errors.New("not_job_owner")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrMissingSchedule   = errors.New("date_and_time_required")
	ErrInvalidSchedule   = errors.New("invalid_date_or_time")
)

// JobInput is the publish/edit payload. Requirements arrive as one
// comma-separated string and are split and trimmed here.
type JobInput struct {
	Title        string
	Description  string
	Pay          string
	Duration     string
	Requirements string
	ImageURL     string
	Latitude     *float64
	Longitude    *float64
}

func (in JobInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("description", in.Description, v)
	validation.Required("pay", in.Pay, v)
	validation.Required("duration", in.Duration, v)
	validation.Required("requirements", in.Requirements, v)
	return v
}

// ReviewService is the employer side: job CRUD and the per-application
// status workflow.
type ReviewService struct {
	DB     *gorm.DB
	Outbox *notify.Outbox
}

func NewReviewService(db *gorm.DB, outbox *notify.Outbox) *ReviewService {
	return &ReviewService{DB: db, Outbox: outbox}
}

// MyJobs lists postings owned by the employer.
func (s *ReviewService) MyJobs(ownerID string) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.DB.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list my jobs: %w", err)
	}
	return jobs, nil
}

// SaveJob creates a new posting or fully overwrites an existing one.
func (s *ReviewService) SaveJob(ownerID, jobID string, in JobInput) (*models.Job, validation.Violations, error) {
	if v := in.validate(); !v.Empty() {
		return nil, v, nil
	}
	reqs := validation.SplitList(in.Requirements)
	if jobID == "" {
		job := models.Job{
			ID:           uuid.NewString(),
			OwnerID:      ownerID,
			Title:        in.Title,
			Description:  in.Description,
			Pay:          in.Pay,
			Duration:     in.Duration,
			Requirements: reqs,
			ImageURL:     in.ImageURL,
			Latitude:     in.Latitude,
			Longitude:    in.Longitude,
		}
		if err := s.DB.Create(&job).Error; err != nil {
			return nil, nil, fmt.Errorf("create job: %w", err)
		}
		return &job, nil, nil
	}
	job, err := s.ownedJob(ownerID, jobID)
	if err != nil {
		return nil, nil, err
	}
	job.Title = in.Title
	job.Description = in.Description
	job.Pay = in.Pay
	job.Duration = in.Duration
	job.Requirements = reqs
	if in.ImageURL != "" {
		job.ImageURL = in.ImageURL
	}
	if in.Latitude != nil {
		job.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		job.Longitude = in.Longitude
	}
	if err := s.DB.Save(job).Error; err != nil {
		return nil, nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil, nil
}

// DeleteJob removes a posting. Dependent applications are deliberately not
// deleted; they are marked orphaned so the candidate keeps the history and
// nothing dangles silently.
func (s *ReviewService) DeleteJob(ownerID, jobID string) error {
	job, err := s.ownedJob(ownerID, jobID)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(job).Error; err != nil {
			return err
		}
		return tx.Model(&models.Application{}).Where("job_id = ?", jobID).Update("orphaned", true).Error
	})
}

// Applicants lists applications for one owned posting, enriching records
// whose snapshot is incomplete.
func (s *ReviewService) Applicants(ownerID, jobID string) ([]models.Application, error) {
	if _, err := s.ownedJob(ownerID, jobID); err != nil {
		return nil, err
	}
	var apps []models.Application
	if err := s.DB.Where("job_id = ?", jobID).Order("created_at").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	for i := range apps {
		s.enrich(&apps[i])
	}
	return apps, nil
}

// enrich fills missing snapshot fields from the candidate profile. Employer
// data is known to be inconsistent: some records reference profiles only
// through the legacy uid column, so a failed primary-key lookup falls back to
// a second lookup before giving up.
func (s *ReviewService) enrich(app *models.Application) {
	if app.PhotoURL != "" && app.ResumeURL != "" && app.Name != "" {
		return
	}
	var profile models.UserProfile
	err := s.DB.First(&profile, "id = ?", app.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.First(&profile, "uid = ?", app.UserID).Error
	}
	if err != nil {
		return // enrichment is best effort
	}
	if app.Name == "" {
		app.Name = profile.Name
	}
	if app.Email == "" {
		app.Email = profile.Email
	}
	if app.PhotoURL == "" {
		app.PhotoURL = profile.AvatarURL
	}
	if app.Description == "" {
		app.Description = profile.Bio
	}
	if app.ResumeURL == "" {
		app.ResumeURL = profile.ResumeURL
	}
	if app.PushToken == "" {
		app.PushToken = profile.PushToken
	}
}

// ownedApplication loads an application and checks the caller owns its job.
func (s *ReviewService) ownedApplication(ownerID, appID string) (*models.Application, error) {
	var app models.Application
	if err := s.DB.First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if _, err := s.ownedJob(ownerID, app.JobID); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *ReviewService) ownedJob(ownerID, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.DB.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, ErrNotJobOwner
	}
	return &job, nil
}

// Reject sets the terminal rejected status, then queues a best-effort push.
// The push is a secondary effect: its failure is logged and never blocks or
// rolls back the status write.
func (s *ReviewService) Reject(ownerID, appID string) (*models.Application, error) {
	app, err := s.ownedApplication(ownerID, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransition(models.StatusRejected) {
		return nil, ErrInvalidTransition
	}
	if err := s.DB.Model(app).Update("status", models.StatusRejected).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	app.Status = models.StatusRejected
	if app.PushToken != "" && s.Outbox != nil {
		if err := s.Outbox.Enqueue(s.DB, app.PushToken, "Application update",
			fmt.Sprintf("Your application for %q was not selected.", app.JobTitle)); err != nil {
			log.Printf("reject %s: enqueue push: %v", app.ID, err)
		} else {
			s.Outbox.DispatchPending()
		}
	}
	return app, nil
}

// ScheduleInterview validates both fields, combines them into one epoch
// timestamp and moves the record to waiting.
func (s *ReviewService) ScheduleInterview(ownerID, appID, date, clock string) (*models.Application, error) {
	if date == "" || clock == "" {
		return nil, ErrMissingSchedule
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return nil, ErrInvalidSchedule
	}
	app, err := s.ownedApplication(ownerID, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransition(models.StatusWaiting) {
		return nil, ErrInvalidTransition
	}
	updates := map[string]any{"status": models.StatusWaiting, "interview_at": at.Unix()}
	if err := s.DB.Model(app).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("schedule interview: %w", err)
	}
	app.Status = models.StatusWaiting
	app.InterviewAt = at.Unix()
	return app, nil
}

// Accept moves an interviewed application to the terminal accepted state.
func (s *ReviewService) Accept(ownerID, appID string) (*models.Application, error) {
	app, err := s.ownedApplication(ownerID, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransition(models.StatusAccepted) {
		return nil, ErrInvalidTransition
	}
	if err := s.DB.Model(app).Update("status", models.StatusAccepted).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	app.Status = models.StatusAccepted
	return app, nil
}
