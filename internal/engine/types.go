package engine

import (
	"context"
	"fmt"
	"time"

	"assetscan-backend/internal/storage"
)

// Notification categories. The aggregated feed concatenates categories in
// the order license, hardware, backup, warranty, compliance.
const (
	CategoryLicense    = "license_expiry"
	CategoryHardware   = "hardware_alert"
	CategoryBackup     = "backup_alert"
	CategoryWarranty   = "warranty_expiry"
	CategoryCompliance = "compliance_breach"
)

// Finding is a single evaluator detection before aggregation. Only the
// fields relevant to the category are set.
type Finding struct {
	Category  string
	AssetID   int64 // 0 when the finding is not tied to an asset
	LicenseID int64
	JobID     int64
	Name      string // software or backup system name
	Metric    string
	Value     float64
	Threshold float64
	Date      time.Time // expiry or warranty end date
	Message   string
}

// Breach is a metric reading that exceeded its configured threshold.
type Breach struct {
	AssetID   int64
	Metric    string
	Value     float64
	Threshold float64
}

// Policy carries the scan parameters. It is read once at scan start; the
// evaluators never consult ambient state.
type Policy struct {
	WarrantyWindowDays int
	LicenseWindowDays  int
	AuthorizedSoftware []string

	BackupMode      string // logs | jobs | both
	BackupLogDir    string
	BackupLogMaxAge time.Duration
	BackupStaleAge  time.Duration
}

// Snapshot is a read-only view of entity state taken at scan start and used
// consistently by every evaluator in one scan.
type Snapshot struct {
	Assets       []storage.Asset
	Licenses     []storage.SoftwareLicense
	Metrics      []storage.MetricReading
	Thresholds   []storage.AlertThreshold
	ActiveAlerts []storage.AlertRecord
	BackupJobs   []storage.BackupJob
}

// SnapshotSource is the read surface of the entity store.
type SnapshotSource interface {
	ListAssets(ctx context.Context) ([]storage.Asset, error)
	ListLicenses(ctx context.Context) ([]storage.SoftwareLicense, error)
	LatestMetrics(ctx context.Context) ([]storage.MetricReading, error)
	ListThresholds(ctx context.Context) ([]storage.AlertThreshold, error)
	ActiveAlerts(ctx context.Context) ([]storage.AlertRecord, error)
	ListBackupJobs(ctx context.Context) ([]storage.BackupJob, error)
}

// LoadSnapshot reads all entities the evaluators consume.
func LoadSnapshot(ctx context.Context, src SnapshotSource) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error
	if snap.Assets, err = src.ListAssets(ctx); err != nil {
		return nil, fmt.Errorf("snapshot assets: %w", err)
	}
	if snap.Licenses, err = src.ListLicenses(ctx); err != nil {
		return nil, fmt.Errorf("snapshot licenses: %w", err)
	}
	if snap.Metrics, err = src.LatestMetrics(ctx); err != nil {
		return nil, fmt.Errorf("snapshot metrics: %w", err)
	}
	if snap.Thresholds, err = src.ListThresholds(ctx); err != nil {
		return nil, fmt.Errorf("snapshot thresholds: %w", err)
	}
	if snap.ActiveAlerts, err = src.ActiveAlerts(ctx); err != nil {
		return nil, fmt.Errorf("snapshot alerts: %w", err)
	}
	if snap.BackupJobs, err = src.ListBackupJobs(ctx); err != nil {
		return nil, fmt.Errorf("snapshot backup jobs: %w", err)
	}
	return snap, nil
}

// dateOnly truncates to a calendar date in UTC so date columns compare the
// way the store compares them.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
