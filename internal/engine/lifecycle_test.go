package engine

import (
	"context"
	"testing"
	"time"

	"assetscan-backend/internal/storage"
)

type memAlertStore struct {
	nextID int64
	alerts []storage.AlertRecord
}

func (s *memAlertStore) ActiveAlerts(ctx context.Context) ([]storage.AlertRecord, error) {
	active := []storage.AlertRecord{}
	for _, a := range s.alerts {
		if a.Status == storage.AlertStatusActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *memAlertStore) OpenAlert(ctx context.Context, assetID int64, metricType string, value float64, now time.Time) (storage.AlertRecord, error) {
	for _, a := range s.alerts {
		if a.Status == storage.AlertStatusActive && a.AssetID == assetID && a.MetricType == metricType {
			return a, nil
		}
	}
	s.nextID++
	rec := storage.AlertRecord{
		ID:             s.nextID,
		AssetID:        assetID,
		MetricType:     metricType,
		TriggeredValue: value,
		Timestamp:      now,
		Status:         storage.AlertStatusActive,
	}
	s.alerts = append(s.alerts, rec)
	return rec, nil
}

func (s *memAlertStore) ResolveAlert(ctx context.Context, id int64) error {
	for i, a := range s.alerts {
		if a.ID == id && a.Status == storage.AlertStatusActive {
			s.alerts[i].Status = storage.AlertStatusResolved
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memAlertStore) activeCount() int {
	n := 0
	for _, a := range s.alerts {
		if a.Status == storage.AlertStatusActive {
			n++
		}
	}
	return n
}

func TestReconcileLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memAlertStore{}

	// First breach opens an alert.
	res, err := Reconcile(ctx, scanTime, []Breach{{AssetID: 1, Metric: "cpu", Value: 95, Threshold: 90}}, store)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Opened) != 1 || len(res.Resolved) != 0 {
		t.Fatalf("expected 1 opened, got %+v", res)
	}
	if store.activeCount() != 1 {
		t.Fatalf("expected 1 active row, got %d", store.activeCount())
	}

	// Persisting breach does not duplicate.
	res, err = Reconcile(ctx, scanTime.Add(time.Minute), []Breach{{AssetID: 1, Metric: "cpu", Value: 96, Threshold: 90}}, store)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Opened) != 0 || len(res.Resolved) != 0 {
		t.Fatalf("expected no transitions, got %+v", res)
	}
	if store.activeCount() != 1 {
		t.Fatalf("expected 1 active row, got %d", store.activeCount())
	}

	// Reading back under threshold resolves the row.
	res, err = Reconcile(ctx, scanTime.Add(2*time.Minute), nil, store)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Resolved) != 1 {
		t.Fatalf("expected 1 resolved, got %+v", res)
	}
	if store.activeCount() != 0 {
		t.Fatalf("expected 0 active rows, got %d", store.activeCount())
	}
	if store.alerts[0].Status != storage.AlertStatusResolved {
		t.Fatalf("row should be RESOLVED, got %s", store.alerts[0].Status)
	}
}

func TestReconcileIndependentPairs(t *testing.T) {
	ctx := context.Background()
	store := &memAlertStore{}

	breaches := []Breach{
		{AssetID: 1, Metric: "cpu", Value: 95, Threshold: 90},
		{AssetID: 1, Metric: "ram", Value: 92, Threshold: 90},
		{AssetID: 2, Metric: "cpu", Value: 93, Threshold: 90},
	}
	if _, err := Reconcile(ctx, scanTime, breaches, store); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if store.activeCount() != 3 {
		t.Fatalf("expected 3 active rows, got %d", store.activeCount())
	}

	// Only asset 1 cpu recovers.
	remaining := breaches[1:]
	res, err := Reconcile(ctx, scanTime.Add(time.Minute), remaining, store)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Resolved) != 1 {
		t.Fatalf("expected 1 resolved, got %+v", res)
	}
	if res.Resolved[0].AssetID != 1 || res.Resolved[0].MetricType != "cpu" {
		t.Fatalf("wrong pair resolved: %+v", res.Resolved[0])
	}
	if store.activeCount() != 2 {
		t.Fatalf("expected 2 active rows, got %d", store.activeCount())
	}
}

func TestReconcileDeduplicatesBreaches(t *testing.T) {
	ctx := context.Background()
	store := &memAlertStore{}

	breaches := []Breach{
		{AssetID: 1, Metric: "cpu", Value: 95, Threshold: 90},
		{AssetID: 1, Metric: "cpu", Value: 97, Threshold: 90},
	}
	res, err := Reconcile(ctx, scanTime, breaches, store)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Opened) != 1 || store.activeCount() != 1 {
		t.Fatalf("duplicate pair must open once, got %d opened, %d active", len(res.Opened), store.activeCount())
	}
}

func TestReconcileStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &memAlertStore{}
	_, err := Reconcile(ctx, scanTime, []Breach{{AssetID: 1, Metric: "cpu", Value: 95, Threshold: 90}}, store)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if store.activeCount() != 0 {
		t.Fatalf("cancelled reconcile must not open alerts, got %d", store.activeCount())
	}
}
