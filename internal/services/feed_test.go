package services

import (
	"errors"
	"testing"

	"github.com/diewo77/workly/internal/models"
)

func TestVisibleExcludesAppliedJobs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")
	seedJob(t, db, "J2", emp.ID, "Barista")
	seedJob(t, db, "J3", emp.ID, "Cashier")

	if _, err := svc.Apply(cand.ID, "J2"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	visible, err := svc.Visible(cand.ID)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible jobs, got %d", len(visible))
	}
	for _, j := range visible {
		if j.ID == "J2" {
			t.Fatalf("applied job J2 still visible")
		}
	}

	// Deleting a job mid-session removes it from the next read.
	if err := db.Delete(&models.Job{ID: "J3"}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	visible, err = svc.Visible(cand.ID)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "J1" {
		t.Fatalf("expected only J1, got %+v", visible)
	}
}

func TestApplyTwiceYieldsOneRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	first, err := svc.Apply(cand.ID, "J1")
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, err := svc.Apply(cand.ID, "J1")
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("composite key mismatch: %s vs %s", first.ID, second.ID)
	}
	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 application, got %d", count)
	}
}

func TestApplySnapshotsProfileAndJob(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	app, err := svc.Apply(cand.ID, "J1")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.ID != "J1_ana-uid" {
		t.Fatalf("unexpected composite id: %s", app.ID)
	}
	if app.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", app.Status)
	}
	if app.JobTitle != "Courier" || app.Name != "Ana" || app.ResumeURL != "https://cdn.test/cv.pdf" {
		t.Fatalf("snapshot not copied: %+v", app)
	}

	// Later profile edits must not mutate the snapshot.
	if err := db.Model(&models.UserProfile{}).Where("id = ?", cand.ID).Update("name", "Renamed").Error; err != nil {
		t.Fatalf("rename: %v", err)
	}
	var stored models.Application
	if err := db.First(&stored, "id = ?", app.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Name != "Ana" {
		t.Fatalf("snapshot mutated to %q", stored.Name)
	}
}

func TestApplyWithoutResumeFailsBeforeWrite(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	if _, err := svc.Apply(cand.ID, "J1"); !errors.Is(err, ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no write, got %d records", count)
	}
}

func TestDecideDiscardWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	res, err := svc.Decide(cand.ID, "J1", DecisionDiscard)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if res.Flash != "red" {
		t.Fatalf("expected red flash, got %q", res.Flash)
	}
	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 0 {
		t.Fatalf("discard must not persist anything, got %d", count)
	}
}

func TestDecideMapReturnsCoordinates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	lat, lng := 4.711, -74.0721
	job := seedJob(t, db, "J1", emp.ID, "Courier")
	job.Latitude, job.Longitude = &lat, &lng
	if err := db.Save(&job).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := svc.Decide(cand.ID, "J1", DecisionInspectMap)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if res.Latitude == nil || *res.Latitude != lat {
		t.Fatalf("coordinates not returned: %+v", res)
	}
}

func TestMineBackfillsMissingSnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	// Legacy record without snapshot fields.
	legacy := models.Application{
		ID: models.ApplicationID("J1", cand.ID), JobID: "J1", UserID: cand.ID,
		Status: models.StatusPending,
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("seed legacy: %v", err)
	}

	mine, err := svc.Mine(cand.ID)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 1 || mine[0].JobTitle != "Courier" {
		t.Fatalf("snapshot not backfilled: %+v", mine)
	}
	var stored models.Application
	if err := db.First(&stored, "id = ?", legacy.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.JobTitle != "Courier" {
		t.Fatalf("backfill not persisted: %+v", stored)
	}
}

func TestCancelOnlyOwnApplication(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeedService(db)
	cand := seedCandidate(t, db, "ana-uid", "https://cdn.test/cv.pdf")
	other := seedCandidate(t, db, "eve-uid", "https://cdn.test/cv2.pdf")
	emp := seedEmployer(t, db, "bo-uid")
	seedJob(t, db, "J1", emp.ID, "Courier")

	app, err := svc.Apply(cand.ID, "J1")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := svc.Cancel(other.ID, app.ID); !errors.Is(err, ErrNotApplicationOwner) {
		t.Fatalf("expected ErrNotApplicationOwner, got %v", err)
	}
	if err := svc.Cancel(cand.ID, app.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 0 {
		t.Fatalf("application not deleted")
	}
}
