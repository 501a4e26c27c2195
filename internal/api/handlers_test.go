package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assetscan-backend/internal/engine"
	"assetscan-backend/internal/notify"
	"assetscan-backend/internal/scheduler"
)

type fakeFeed struct {
	feed notify.Feed
	err  error
}

func (f *fakeFeed) GenerateFeed(ctx context.Context, now time.Time) (notify.Feed, error) {
	return f.feed, f.err
}

type noopRunner struct{}

func (noopRunner) ComplianceScan(ctx context.Context, now time.Time) error { return nil }
func (noopRunner) HealthScan(ctx context.Context, now time.Time) error     { return nil }

func testHandler(t *testing.T, feed FeedSource) *Handler {
	t.Helper()
	sched, err := scheduler.New(noopRunner{}, "0 0 * * *", time.Minute, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return &Handler{
		Feed:  feed,
		Sched: sched,
		Now:   func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC) },
	}
}

func TestHealthz(t *testing.T) {
	h := testHandler(t, &fakeFeed{})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestNotifications(t *testing.T) {
	feed := notify.Aggregate(notify.Inputs{
		BackupFindings: []engine.Finding{
			{Category: engine.CategoryBackup, Message: "No backup logs found in the monitored directory."},
		},
	})
	h := testHandler(t, &fakeFeed{feed: feed})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var got notify.Feed
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Count != 1 || len(got.BackupAlerts) != 1 {
		t.Fatalf("unexpected feed: %+v", got)
	}
}

func TestNotificationsFeedError(t *testing.T) {
	h := testHandler(t, &fakeFeed{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Ok || resp.Code != "feed_failed" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestExportDefaultsToCSV(t *testing.T) {
	h := testHandler(t, &fakeFeed{feed: notify.Aggregate(notify.Inputs{})})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("got content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "type,message") {
		t.Fatalf("got body %q", rec.Body.String())
	}
}

func TestExportPDF(t *testing.T) {
	h := testHandler(t, &fakeFeed{feed: notify.Aggregate(notify.Inputs{})})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/export?format=pdf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("got content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatalf("body is not a pdf")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := testHandler(t, &fakeFeed{feed: notify.Aggregate(notify.Inputs{})})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/export?format=xlsx", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestRunScanAccepted(t *testing.T) {
	h := testHandler(t, &fakeFeed{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan/run", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestJobsListsBothSchedules(t *testing.T) {
	h := testHandler(t, &fakeFeed{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var jobs []scheduler.JobInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}

func TestAlertsRejectsBadStatus(t *testing.T) {
	h := testHandler(t, &fakeFeed{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts?status=OPEN", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestBackupCommentRequiresJobID(t *testing.T) {
	h := testHandler(t, &fakeFeed{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backups/comment", strings.NewReader(`{"comment":"checked"}`))
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}
