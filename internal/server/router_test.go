package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/workly/internal/config"
	"github.com/diewo77/workly/internal/db"
)

type testEnv struct {
	ts        *httptest.Server
	pushCalls *atomic.Int64
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var pushCalls atomic.Int64
	pushSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pushCalls.Add(1)
		fmt.Fprint(w, `{"data":{"status":"ok"}}`)
	}))
	t.Cleanup(pushSrv.Close)

	cfg := config.Config{
		StorageDir:           t.TempDir(),
		StorageBaseURL:       "http://localhost/uploads",
		ExpoPushURL:          pushSrv.URL,
		AvatarPlaceholderURL: "https://cdn.test/placeholder.png",
	}
	srv := New(conn, cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, pushCalls: &pushCalls}
}

// request performs a JSON round trip and decodes the body into out (if non-nil).
func (e *testEnv) request(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, payload)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) signup(t *testing.T, email, name, role string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	status := e.request(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": "hunter22", "name": name, "role": role,
	}, &out)
	if status != http.StatusCreated || out.Token == "" {
		t.Fatalf("signup %s: status %d token %q", email, status, out.Token)
	}
	return out.Token
}

func (e *testEnv) uploadFile(t *testing.T, path, token, field, filename string, extra map[string]string) int {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.Copy(fw, strings.NewReader("file-bytes")); err != nil {
			t.Fatalf("copy: %v", err)
		}
	}
	mw.Close()
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func TestHealthEndpoints(t *testing.T) {
	env := setupServer(t)
	for _, path := range []string{"/health", "/healthz"} {
		if status := env.request(t, http.MethodGet, path, "", nil, nil); status != http.StatusOK {
			t.Fatalf("%s: status %d", path, status)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupServer(t)
	if status := env.request(t, http.MethodGet, "/feed", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 on /feed, got %d", status)
	}
	var res struct {
		State string `json:"state"`
	}
	if status := env.request(t, http.MethodGet, "/session", "", nil, &res); status != http.StatusOK {
		t.Fatalf("session without token: status %d", status)
	}
	if res.State != "unauthenticated" {
		t.Fatalf("expected unauthenticated, got %q", res.State)
	}
}

// TestApplicationLifecycle walks the funnel over HTTP: a candidate applies,
// the employer schedules an interview and then rejects, and the terminal
// status triggers a push attempt.
func TestApplicationLifecycle(t *testing.T) {
	env := setupServer(t)
	employer := env.signup(t, "bo@test.co", "Bo", "hiring")
	candidate := env.signup(t, "ana@test.co", "Ana", "searching")

	// Routing state follows the role.
	var session struct {
		State string `json:"state"`
	}
	env.request(t, http.MethodGet, "/session", candidate, nil, &session)
	if session.State != "candidate" {
		t.Fatalf("candidate session resolved to %q", session.State)
	}
	env.request(t, http.MethodGet, "/session", employer, nil, &session)
	if session.State != "employer" {
		t.Fatalf("employer session resolved to %q", session.State)
	}

	// Candidate prerequisites: device token and resume.
	if status := env.request(t, http.MethodPost, "/profile/push-token", candidate,
		map[string]string{"token": "ExponentPushToken[ana]"}, nil); status != http.StatusOK {
		t.Fatalf("push-token: status %d", status)
	}
	if status := env.uploadFile(t, "/profile/resume", candidate, "file", "cv.pdf", nil); status != http.StatusOK {
		t.Fatalf("resume upload: status %d", status)
	}

	// Employer publishes a posting.
	if status := env.uploadFile(t, "/jobs", employer, "", "", map[string]string{
		"title": "Courier", "description": "deliver packages", "pay": "$500/week",
		"duration": "3 months", "requirements": "bike, license",
	}); status != http.StatusCreated {
		t.Fatalf("publish job: status %d", status)
	}

	// Candidate sees it in the feed and swipes right.
	var feed []struct {
		ID string `json:"id"`
	}
	env.request(t, http.MethodGet, "/feed", candidate, nil, &feed)
	if len(feed) != 1 {
		t.Fatalf("expected 1 feed card, got %d", len(feed))
	}
	jobID := feed[0].ID
	var decision struct {
		Flash       string `json:"flash"`
		Application struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"application"`
	}
	if status := env.request(t, http.MethodPost, "/feed/"+jobID+"/decision", candidate,
		map[string]string{"decision": "apply"}, &decision); status != http.StatusOK {
		t.Fatalf("decision: status %d", status)
	}
	if decision.Flash != "green" || decision.Application.Status != "pending" {
		t.Fatalf("apply result: %+v", decision)
	}

	// The applied job leaves the feed.
	env.request(t, http.MethodGet, "/feed", candidate, nil, &feed)
	if len(feed) != 0 {
		t.Fatalf("applied job still in feed")
	}

	// Employer reviews the applicant.
	var applicants []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	env.request(t, http.MethodGet, "/jobs/"+jobID+"/applications", employer, nil, &applicants)
	if len(applicants) != 1 || applicants[0].Name != "Ana" {
		t.Fatalf("applicants: %+v", applicants)
	}
	appID := applicants[0].ID

	// Interview slot moves the record to waiting with the combined epoch.
	var app struct {
		Status      string `json:"status"`
		InterviewAt int64  `json:"interview_at"`
	}
	if status := env.request(t, http.MethodPost, "/applications/"+appID+"/interview", employer,
		map[string]string{"date": "2024-05-01", "time": "14:30"}, &app); status != http.StatusOK {
		t.Fatalf("interview: status %d", status)
	}
	want := time.Date(2024, 5, 1, 14, 30, 0, 0, time.Local).Unix()
	if app.Status != "waiting" || app.InterviewAt != want {
		t.Fatalf("interview result: %+v (want epoch %d)", app, want)
	}

	// Rejection is terminal and triggers exactly one push attempt.
	if status := env.request(t, http.MethodPost, "/applications/"+appID+"/reject", employer, nil, &app); status != http.StatusOK {
		t.Fatalf("reject: status %d", status)
	}
	if app.Status != "rejected" {
		t.Fatalf("expected rejected, got %q", app.Status)
	}
	if got := env.pushCalls.Load(); got != 1 {
		t.Fatalf("expected 1 push attempt, got %d", got)
	}

	// A third party cannot touch the application.
	intruder := env.signup(t, "eve@test.co", "Eve", "hiring")
	if status := env.request(t, http.MethodPost, "/applications/"+appID+"/accept", intruder, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", status)
	}
}

func TestLoginErrorsAreSpecific(t *testing.T) {
	env := setupServer(t)
	env.signup(t, "ana@test.co", "Ana", "searching")

	var errResp struct {
		Error string `json:"error"`
	}
	status := env.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "ghost@test.co", "password": "hunter22"}, &errResp)
	if status != http.StatusUnauthorized || errResp.Error != "user_not_found" {
		t.Fatalf("unknown account: status %d error %q", status, errResp.Error)
	}
	status = env.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "ana@test.co", "password": "wrong"}, &errResp)
	if status != http.StatusUnauthorized || errResp.Error != "wrong_password" {
		t.Fatalf("bad password: status %d error %q", status, errResp.Error)
	}
}
