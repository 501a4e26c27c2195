package storage

import "time"

// Alert lifecycle states. At most one ACTIVE row exists per
// (asset_id, metric_type) pair.
const (
	AlertStatusActive   = "ACTIVE"
	AlertStatusResolved = "RESOLVED"
)

// Backup job states as reported by the backup tooling. Verification moves
// Failure and Missed jobs to Under Investigation.
const (
	BackupStatusSuccess       = "Success"
	BackupStatusFailure       = "Failure"
	BackupStatusMissed        = "Missed"
	BackupStatusInvestigating = "Under Investigation"
)

type Asset struct {
	ID              int64
	Name            string
	SerialNumber    *string
	PurchaseDate    time.Time
	WarrantyEndDate *time.Time
	AssignedUser    *string
	CreatedAt       time.Time
}

type SoftwareLicense struct {
	ID           int64
	SoftwareName string
	LicenseKey   string
	ExpiryDate   time.Time
	PurchaseDate *time.Time
	AssetID      *int64
}

type MetricReading struct {
	ID          int64
	AssetID     int64
	Timestamp   time.Time
	CPUPercent  float64
	RAMPercent  float64
	DiskPercent float64
}

type AlertThreshold struct {
	ID               int64
	MetricType       string // cpu | ram | disk
	ThresholdPercent float64
}

type AlertRecord struct {
	ID             int64
	AssetID        int64
	Timestamp      time.Time
	MetricType     string
	TriggeredValue float64
	Status         string
}

type BackupJob struct {
	ID                int64
	SystemName        string
	LastRunDate       time.Time
	Status            string
	AlertReason       *string
	TechnicianComment *string
}
