package notify

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/models"
)

// Outbox queues best-effort pushes as rows next to the primary write and
// dispatches them afterwards. A failed dispatch is logged and marked, never
// surfaced to the user and never rolled into the primary operation.
type Outbox struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewOutbox(db *gorm.DB, n Notifier) *Outbox { return &Outbox{DB: db, Notifier: n} }

// Enqueue records a pending push. Call inside the primary transaction when
// one exists; the row is the durable intent to notify.
func (o *Outbox) Enqueue(tx *gorm.DB, token, title, body string) error {
	if token == "" {
		return nil
	}
	n := models.Notification{PushToken: token, Title: title, Body: body, Status: models.NotificationQueued}
	return tx.Create(&n).Error
}

// DispatchPending sends every queued row once and records the outcome.
// Returns the number of rows attempted.
func (o *Outbox) DispatchPending() int {
	var queued []models.Notification
	if err := o.DB.Where("status = ?", models.NotificationQueued).Order("id").Find(&queued).Error; err != nil {
		log.Printf("outbox: load queued: %v", err)
		return 0
	}
	for i := range queued {
		n := &queued[i]
		n.Attempts++
		if err := o.Notifier.Send(n.PushToken, n.Title, n.Body); err != nil {
			log.Printf("outbox: push %d failed: %v", n.ID, err)
			n.Status = models.NotificationFailed
			n.LastError = err.Error()
		} else {
			now := time.Now()
			n.Status = models.NotificationSent
			n.SentAt = &now
			n.LastError = ""
		}
		if err := o.DB.Save(n).Error; err != nil {
			log.Printf("outbox: save %d: %v", n.ID, err)
		}
	}
	return len(queued)
}

// Run dispatches on an interval until stop is closed.
func (o *Outbox) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.DispatchPending()
		case <-stop:
			return
		}
	}
}
