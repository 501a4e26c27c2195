package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

func (r *Repository) query(q string) string {
	return rebind(r.Store.DriverType(), q)
}

func (r *Repository) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := r.Store.DB.QueryContext(ctx, `
		SELECT id, name, serial_number, purchase_date, warranty_end_date, assigned_user, created_at
		FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	results := []Asset{}
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.SerialNumber, &a.PurchaseDate, &a.WarrantyEndDate, &a.AssignedUser, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (r *Repository) ListLicenses(ctx context.Context) ([]SoftwareLicense, error) {
	rows, err := r.Store.DB.QueryContext(ctx, `
		SELECT id, software_name, license_key, expiry_date, purchase_date, asset_id
		FROM software_licenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()
	results := []SoftwareLicense{}
	for rows.Next() {
		var l SoftwareLicense
		if err := rows.Scan(&l.ID, &l.SoftwareName, &l.LicenseKey, &l.ExpiryDate, &l.PurchaseDate, &l.AssetID); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// LatestMetrics returns the most recent reading per asset.
func (r *Repository) LatestMetrics(ctx context.Context) ([]MetricReading, error) {
	rows, err := r.Store.DB.QueryContext(ctx, `
		SELECT m.id, m.asset_id, m.recorded_at, m.cpu_percent, m.ram_percent, m.disk_percent
		FROM asset_metrics m
		JOIN (
			SELECT asset_id, MAX(recorded_at) AS recorded_at
			FROM asset_metrics GROUP BY asset_id
		) latest ON m.asset_id = latest.asset_id AND m.recorded_at = latest.recorded_at
		ORDER BY m.asset_id`)
	if err != nil {
		return nil, fmt.Errorf("latest metrics: %w", err)
	}
	defer rows.Close()
	results := []MetricReading{}
	for rows.Next() {
		var m MetricReading
		if err := rows.Scan(&m.ID, &m.AssetID, &m.Timestamp, &m.CPUPercent, &m.RAMPercent, &m.DiskPercent); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (r *Repository) ListThresholds(ctx context.Context) ([]AlertThreshold, error) {
	rows, err := r.Store.DB.QueryContext(ctx, `
		SELECT id, metric_type, threshold_percent FROM alert_thresholds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	defer rows.Close()
	results := []AlertThreshold{}
	for rows.Next() {
		var t AlertThreshold
		if err := rows.Scan(&t.ID, &t.MetricType, &t.ThresholdPercent); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func (r *Repository) AlertsByStatus(ctx context.Context, status string) ([]AlertRecord, error) {
	rows, err := r.Store.DB.QueryContext(ctx, r.query(`
		SELECT id, asset_id, triggered_at, metric_type, triggered_value, status
		FROM alert_history WHERE status = ? ORDER BY triggered_at DESC`), status)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	results := []AlertRecord{}
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.ID, &a.AssetID, &a.Timestamp, &a.MetricType, &a.TriggeredValue, &a.Status); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (r *Repository) ActiveAlerts(ctx context.Context) ([]AlertRecord, error) {
	return r.AlertsByStatus(ctx, AlertStatusActive)
}

// OpenAlert inserts an ACTIVE alert row for the pair unless one already
// exists. The check and insert run in one transaction so concurrent scans
// cannot create duplicate ACTIVE rows.
func (r *Repository) OpenAlert(ctx context.Context, assetID int64, metricType string, value float64, now time.Time) (AlertRecord, error) {
	tx, err := r.Store.DB.BeginTx(ctx, nil)
	if err != nil {
		return AlertRecord{}, fmt.Errorf("begin open alert: %w", err)
	}
	defer tx.Rollback()

	var existing AlertRecord
	err = tx.QueryRowContext(ctx, r.query(`
		SELECT id, asset_id, triggered_at, metric_type, triggered_value, status
		FROM alert_history WHERE asset_id = ? AND metric_type = ? AND status = ?`),
		assetID, metricType, AlertStatusActive,
	).Scan(&existing.ID, &existing.AssetID, &existing.Timestamp, &existing.MetricType, &existing.TriggeredValue, &existing.Status)
	if err == nil {
		return existing, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return AlertRecord{}, fmt.Errorf("check active alert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.query(`
		INSERT INTO alert_history (asset_id, triggered_at, metric_type, triggered_value, status)
		VALUES (?, ?, ?, ?, ?)`),
		assetID, now, metricType, value, AlertStatusActive); err != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", err)
	}

	created := AlertRecord{
		AssetID:        assetID,
		Timestamp:      now,
		MetricType:     metricType,
		TriggeredValue: value,
		Status:         AlertStatusActive,
	}
	err = tx.QueryRowContext(ctx, r.query(`
		SELECT id FROM alert_history
		WHERE asset_id = ? AND metric_type = ? AND status = ?`),
		assetID, metricType, AlertStatusActive).Scan(&created.ID)
	if err != nil {
		return AlertRecord{}, fmt.Errorf("read created alert: %w", err)
	}
	return created, tx.Commit()
}

// ResolveAlert marks the row RESOLVED. Value and timestamp are left as
// recorded at trigger time.
func (r *Repository) ResolveAlert(ctx context.Context, id int64) error {
	res, err := r.Store.DB.ExecContext(ctx, r.query(`
		UPDATE alert_history SET status = ? WHERE id = ? AND status = ?`),
		AlertStatusResolved, id, AlertStatusActive)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListBackupJobs(ctx context.Context) ([]BackupJob, error) {
	rows, err := r.Store.DB.QueryContext(ctx, `
		SELECT id, system_name, last_run_date, status, alert_reason, technician_comment
		FROM backup_jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list backup jobs: %w", err)
	}
	defer rows.Close()
	results := []BackupJob{}
	for rows.Next() {
		var j BackupJob
		if err := rows.Scan(&j.ID, &j.SystemName, &j.LastRunDate, &j.Status, &j.AlertReason, &j.TechnicianComment); err != nil {
			return nil, fmt.Errorf("scan backup job: %w", err)
		}
		results = append(results, j)
	}
	return results, rows.Err()
}

// VerifyBackupJobs transitions every Failure or Missed job to Under
// Investigation and returns the number of jobs touched.
func (r *Repository) VerifyBackupJobs(ctx context.Context) (int64, error) {
	res, err := r.Store.DB.ExecContext(ctx, r.query(`
		UPDATE backup_jobs SET status = ? WHERE status IN (?, ?)`),
		BackupStatusInvestigating, BackupStatusFailure, BackupStatusMissed)
	if err != nil {
		return 0, fmt.Errorf("verify backup jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("verify backup jobs affected: %w", err)
	}
	return n, nil
}

func (r *Repository) SetBackupComment(ctx context.Context, jobID int64, comment string) error {
	res, err := r.Store.DB.ExecContext(ctx, r.query(`
		UPDATE backup_jobs SET technician_comment = ? WHERE id = ?`), comment, jobID)
	if err != nil {
		return fmt.Errorf("set backup comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
