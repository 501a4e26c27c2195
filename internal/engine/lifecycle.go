package engine

import (
	"context"
	"fmt"
	"time"

	"assetscan-backend/internal/storage"
)

// AlertStore is the write surface the lifecycle reconciler needs. The
// implementation must serialize writes per (asset, metric) pair so that at
// most one ACTIVE row exists per pair.
type AlertStore interface {
	ActiveAlerts(ctx context.Context) ([]storage.AlertRecord, error)
	OpenAlert(ctx context.Context, assetID int64, metricType string, value float64, now time.Time) (storage.AlertRecord, error)
	ResolveAlert(ctx context.Context, id int64) error
}

// ReconcileResult reports the transitions one reconciliation performed.
type ReconcileResult struct {
	Opened   []storage.AlertRecord
	Resolved []storage.AlertRecord
}

type pairKey struct {
	assetID int64
	metric  string
}

// Reconcile applies the alert state machine: a breach with no ACTIVE row
// opens one, a breach with an ACTIVE row is a no-op, and an ACTIVE row whose
// pair no longer breaches is resolved. Running it twice on unchanged data
// performs no transitions. Cancellation stops between pairs, never mid-pair.
func Reconcile(ctx context.Context, now time.Time, breaches []Breach, store AlertStore) (ReconcileResult, error) {
	result := ReconcileResult{Opened: []storage.AlertRecord{}, Resolved: []storage.AlertRecord{}}

	active, err := store.ActiveAlerts(ctx)
	if err != nil {
		return result, fmt.Errorf("load active alerts: %w", err)
	}
	activeByPair := make(map[pairKey]storage.AlertRecord, len(active))
	for _, a := range active {
		activeByPair[pairKey{a.AssetID, a.MetricType}] = a
	}

	breaching := make(map[pairKey]struct{}, len(breaches))
	for _, b := range breaches {
		key := pairKey{b.AssetID, b.Metric}
		if _, seen := breaching[key]; seen {
			continue
		}
		breaching[key] = struct{}{}

		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, ok := activeByPair[key]; ok {
			continue // breach persists, keep the existing ACTIVE row
		}
		opened, err := store.OpenAlert(ctx, b.AssetID, b.Metric, b.Value, now)
		if err != nil {
			return result, fmt.Errorf("open alert for asset %d %s: %w", b.AssetID, b.Metric, err)
		}
		result.Opened = append(result.Opened, opened)
	}

	for _, a := range active {
		if _, still := breaching[pairKey{a.AssetID, a.MetricType}]; still {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := store.ResolveAlert(ctx, a.ID); err != nil {
			return result, fmt.Errorf("resolve alert %d: %w", a.ID, err)
		}
		a.Status = storage.AlertStatusResolved
		result.Resolved = append(result.Resolved, a)
	}
	return result, nil
}
