package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/ai"
	"github.com/diewo77/workly/internal/auth"
	"github.com/diewo77/workly/internal/config"
	"github.com/diewo77/workly/internal/handlers"
	"github.com/diewo77/workly/internal/httpx"
	"github.com/diewo77/workly/internal/models"
	"github.com/diewo77/workly/internal/notify"
	"github.com/diewo77/workly/internal/services"
	"github.com/diewo77/workly/internal/storage"
)

// Server bundles the root handler with the outbox so main can run the
// background dispatcher next to the HTTP listener.
type Server struct {
	Handler http.Handler
	Outbox  *notify.Outbox
}

// New wires every handler onto one mux with all middlewares applied.
func New(db *gorm.DB, cfg config.Config) *Server {
	// RequireAuth consults this so tokens of deleted accounts stop working.
	auth.SetUserVerifier(func(_ context.Context, uid string) bool {
		var count int64
		if err := db.Model(&models.UserProfile{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	blobs := storage.NewDiskStore(cfg.StorageDir, cfg.StorageBaseURL)
	outbox := notify.NewOutbox(db, notify.NewExpoClient(cfg.ExpoPushURL))

	sessions := services.NewSessionService(db)
	feed := services.NewFeedService(db)
	review := services.NewReviewService(db, outbox)
	wizard := services.NewOnboardingService(db, blobs, cfg.AvatarPlaceholderURL)

	ah := handlers.NewAuthHandler(db)
	sh := handlers.NewSessionHandler(sessions)
	ph := handlers.NewProfileHandler(db, blobs)
	fh := handlers.NewFeedHandler(feed)
	jh := handlers.NewJobsHandler(review, blobs)
	rh := handlers.NewReviewHandler(review)
	oh := handlers.NewOnboardingHandler(wizard)
	ch := handlers.NewCoachHandler(ai.NewGeminiClient(cfg.GeminiURL, cfg.GeminiKey))

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public: account creation and login
	mux.HandleFunc("POST /auth/signup", ah.Signup)
	mux.HandleFunc("POST /auth/login", ah.Login)

	// Public: registration wizard (no token exists yet)
	mux.HandleFunc("POST /onboarding", oh.Start)
	mux.HandleFunc("POST /onboarding/{id}/next", oh.Next)
	mux.HandleFunc("POST /onboarding/{id}/back", oh.Back)
	mux.HandleFunc("POST /onboarding/{id}/photo", oh.AttachPhoto)
	mux.HandleFunc("POST /onboarding/{id}/commit", oh.Commit)

	// Session resolution works with or without a token.
	mux.HandleFunc("GET /session", sh.Resolve)

	// Profile
	mux.Handle("GET /profile", protect(ph.Me))
	mux.Handle("PUT /profile", protect(ph.Update))
	mux.Handle("POST /profile/resume", protect(ph.UploadResume))
	mux.Handle("POST /profile/avatar", protect(ph.UploadAvatar))
	mux.Handle("POST /profile/push-token", protect(ph.RegisterPushToken))

	// Candidate: feed and own applications
	mux.Handle("GET /feed", protect(fh.List))
	mux.Handle("POST /feed/{id}/decision", protect(fh.Decide))
	mux.Handle("GET /applications", protect(fh.Mine))
	mux.Handle("DELETE /applications/{id}", protect(fh.Cancel))

	// Employer: postings and the review workflow
	mux.Handle("GET /jobs", protect(jh.List))
	mux.Handle("POST /jobs", protect(jh.Create))
	mux.Handle("PUT /jobs/{id}", protect(jh.Update))
	mux.Handle("DELETE /jobs/{id}", protect(jh.Delete))
	mux.Handle("GET /jobs/{id}/applications", protect(rh.Applicants))
	mux.Handle("POST /applications/{id}/reject", protect(rh.Reject))
	mux.Handle("POST /applications/{id}/interview", protect(rh.ScheduleInterview))
	mux.Handle("POST /applications/{id}/accept", protect(rh.Accept))

	// Career coach
	mux.Handle("POST /coach", protect(ch.Ask))

	// Uploaded blobs (resumes, avatars, job images)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.StorageDir))))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return &Server{
		Handler: c.Handler(auth.Middleware(withRecover(withLogging(mux)))),
		Outbox:  outbox,
	}
}

func protect(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
