package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"assetscan-backend/internal/notify"
	"assetscan-backend/internal/scheduler"
	"assetscan-backend/internal/storage"
)

const requestTimeout = 15 * time.Second

// FeedSource generates the notification feed on demand.
type FeedSource interface {
	GenerateFeed(ctx context.Context, now time.Time) (notify.Feed, error)
}

type Handler struct {
	Repo  *storage.Repository
	Feed  FeedSource
	Sched *scheduler.Scheduler
	Now   func() time.Time
}

type errorResponse struct {
	Ok      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Get("/notifications", h.notifications)
	r.Get("/notifications/export", h.exportNotifications)
	r.Post("/scan/run", h.runScan)
	r.Get("/jobs", h.jobs)
	r.Get("/alerts", h.alerts)
	r.Get("/backups", h.backups)
	r.Post("/backups/verify", h.verifyBackups)
	r.Post("/backups/comment", h.backupComment)
	return r
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	feed, err := h.Feed.GenerateFeed(ctx, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "feed_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (h *Handler) exportNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	feed, err := h.Feed.GenerateFeed(ctx, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "feed_failed", err.Error())
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="notifications.csv"`)
		if err := notify.WriteCSV(w, feed); err != nil {
			writeError(w, http.StatusInternalServerError, "export_failed", err.Error())
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="notifications.pdf"`)
		if err := notify.WritePDF(w, feed); err != nil {
			writeError(w, http.StatusInternalServerError, "export_failed", err.Error())
		}
	default:
		writeError(w, http.StatusBadRequest, "bad_format", "format must be csv or pdf")
	}
}

func (h *Handler) runScan(w http.ResponseWriter, r *http.Request) {
	h.Sched.RunNow()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Sched.Jobs())
}

type alertResponse struct {
	ID             int64     `json:"id"`
	AssetID        int64     `json:"asset_id"`
	Timestamp      time.Time `json:"timestamp"`
	MetricType     string    `json:"metric_type"`
	TriggeredValue float64   `json:"triggered_value"`
	Status         string    `json:"status"`
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = storage.AlertStatusActive
	}
	if status != storage.AlertStatusActive && status != storage.AlertStatusResolved {
		writeError(w, http.StatusBadRequest, "bad_status", "status must be ACTIVE or RESOLVED")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	alerts, err := h.Repo.AlertsByStatus(ctx, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:             a.ID,
			AssetID:        a.AssetID,
			Timestamp:      a.Timestamp,
			MetricType:     a.MetricType,
			TriggeredValue: a.TriggeredValue,
			Status:         a.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type backupJobResponse struct {
	ID                int64     `json:"id"`
	SystemName        string    `json:"system_name"`
	LastRunDate       time.Time `json:"last_run_date"`
	Status            string    `json:"status"`
	AlertReason       *string   `json:"alert_reason,omitempty"`
	TechnicianComment *string   `json:"technician_comment,omitempty"`
}

func (h *Handler) backups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	jobs, err := h.Repo.ListBackupJobs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	out := make([]backupJobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, backupJobResponse{
			ID:                j.ID,
			SystemName:        j.SystemName,
			LastRunDate:       j.LastRunDate,
			Status:            j.Status,
			AlertReason:       j.AlertReason,
			TechnicianComment: j.TechnicianComment,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// verifyBackups moves every Failure or Missed job to Under Investigation.
// Operator-triggered; not part of the periodic scan.
func (h *Handler) verifyBackups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	n, err := h.Repo.VerifyBackupJobs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verify_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": n})
}

type backupCommentRequest struct {
	JobID   int64  `json:"jobId"`
	Comment string `json:"comment"`
}

func (h *Handler) backupComment(w http.ResponseWriter, r *http.Request) {
	var req backupCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.JobID == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "jobId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := h.Repo.SetBackupComment(ctx, req.JobID, req.Comment); err != nil {
		if err == storage.ErrNotFound {
			writeError(w, http.StatusNotFound, "not_found", "backup job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Ok: false, Code: code, Message: message})
}
