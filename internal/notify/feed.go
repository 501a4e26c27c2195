package notify

import (
	"fmt"
	"strings"
	"time"

	"assetscan-backend/internal/engine"
	"assetscan-backend/internal/storage"
)

// Notification is one externally consumable record of the aggregated feed.
// Category-specific fields are omitted when empty; Message is always set.
type Notification struct {
	Type         string  `json:"type"`
	ID           int64   `json:"id,omitempty"`
	AssetID      int64   `json:"asset_id,omitempty"`
	SoftwareName string  `json:"software_name,omitempty"`
	SystemName   string  `json:"system_name,omitempty"`
	ExpiresOn    string  `json:"expires_on,omitempty"`
	Metric       string  `json:"metric,omitempty"`
	Value        float64 `json:"value,omitempty"`
	Status       string  `json:"status,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
	Message      string  `json:"message"`
}

// Feed is the unified notification feed. Category slices and Notifications
// are never nil; an all-clear scan is an empty feed with Count 0.
type Feed struct {
	Count              int            `json:"count"`
	Notifications      []Notification `json:"notifications"`
	LicenseExpiries    []Notification `json:"license_expiries"`
	HardwareAlerts     []Notification `json:"hardware_alerts"`
	BackupAlerts       []Notification `json:"backup_alerts"`
	WarrantyExpiries   []Notification `json:"warranty_expiries"`
	ComplianceBreaches []Notification `json:"compliance_breaches"`
}

// Inputs carries the evaluator outputs one scan produced. Hardware alerts
// come from the persisted ACTIVE alert rows, not from findings, because
// metric breaches are the one category with cross-scan memory.
type Inputs struct {
	LicenseExpiries    []engine.Finding
	ActiveAlerts       []storage.AlertRecord
	BackupFindings     []engine.Finding
	WarrantyExpiries   []engine.Finding
	ComplianceBreaches []engine.Finding
}

// Aggregate merges the evaluator outputs into one ordered feed. Category
// order is fixed (license, hardware, backup, warranty, compliance);
// category-internal order is whatever the evaluator produced. There is no
// cross-category deduplication.
func Aggregate(in Inputs) Feed {
	feed := Feed{
		LicenseExpiries:    fromFindings(in.LicenseExpiries),
		HardwareAlerts:     fromActiveAlerts(in.ActiveAlerts),
		BackupAlerts:       fromFindings(in.BackupFindings),
		WarrantyExpiries:   fromFindings(in.WarrantyExpiries),
		ComplianceBreaches: fromFindings(in.ComplianceBreaches),
	}

	feed.Notifications = []Notification{}
	for _, category := range [][]Notification{
		feed.LicenseExpiries,
		feed.HardwareAlerts,
		feed.BackupAlerts,
		feed.WarrantyExpiries,
		feed.ComplianceBreaches,
	} {
		feed.Notifications = append(feed.Notifications, category...)
	}
	feed.Count = len(feed.Notifications)
	return feed
}

func fromFindings(findings []engine.Finding) []Notification {
	out := make([]Notification, 0, len(findings))
	for _, f := range findings {
		n := Notification{
			Type:    f.Category,
			AssetID: f.AssetID,
			Message: f.Message,
		}
		switch f.Category {
		case engine.CategoryLicense, engine.CategoryCompliance:
			n.ID = f.LicenseID
			n.SoftwareName = f.Name
		case engine.CategoryBackup:
			n.ID = f.JobID
			n.SystemName = f.Name
		case engine.CategoryWarranty:
			n.ID = f.AssetID
			n.SystemName = f.Name
		}
		if !f.Date.IsZero() {
			n.ExpiresOn = f.Date.Format("2006-01-02")
		}
		out = append(out, n)
	}
	return out
}

func fromActiveAlerts(alerts []storage.AlertRecord) []Notification {
	out := make([]Notification, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, Notification{
			Type:      engine.CategoryHardware,
			ID:        a.ID,
			AssetID:   a.AssetID,
			Metric:    a.MetricType,
			Value:     a.TriggeredValue,
			Status:    a.Status,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
			Message:   fmt.Sprintf("%s alert on asset %d", strings.ToUpper(a.MetricType), a.AssetID),
		})
	}
	return out
}
