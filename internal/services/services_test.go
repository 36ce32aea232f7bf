package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.UserProfile{}, &models.Job{}, &models.Application{},
		&models.Notification{}, &models.OnboardingDraft{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCandidate(t *testing.T, db *gorm.DB, id, resumeURL string) models.UserProfile {
	t.Helper()
	p := models.UserProfile{
		ID: id, UID: id, Email: id + "@test.co", Password: "x",
		Name: "Ana", Role: models.RoleSearching, Bio: "courier with own bike",
		ResumeURL: resumeURL,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return p
}

func seedEmployer(t *testing.T, db *gorm.DB, id string) models.UserProfile {
	t.Helper()
	p := models.UserProfile{
		ID: id, UID: id, Email: id + "@test.co", Password: "x",
		Name: "Bo", Role: models.RoleHiring, CompanyName: "Speedy SA",
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed employer: %v", err)
	}
	return p
}

func seedJob(t *testing.T, db *gorm.DB, id, ownerID, title string) models.Job {
	t.Helper()
	j := models.Job{
		ID: id, OwnerID: ownerID, Title: title, Description: "deliver packages",
		Pay: "$500/week", Duration: "3 months", Requirements: []string{"bike", "license"},
	}
	if err := db.Create(&j).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return j
}
