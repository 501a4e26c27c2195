package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assetscan-backend/internal/storage"
)

const noBackupsMessage = "No backup logs found in the monitored directory."

// BackupLogFindings inspects a directory of backup tool logs. A missing or
// empty directory yields a single "no backups found" finding. Otherwise the
// most recently modified .log file is checked for staleness and for failure
// keywords; both findings can fire for the same file.
func BackupLogFindings(now time.Time, dir string, maxAge time.Duration) []Finding {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return []Finding{{Category: CategoryBackup, Message: noBackupsMessage}}
	}

	var latestPath string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latestPath == "" || info.ModTime().After(latestMod) {
			latestPath = filepath.Join(dir, entry.Name())
			latestMod = info.ModTime()
		}
	}
	if latestPath == "" {
		return []Finding{{Category: CategoryBackup, Message: noBackupsMessage}}
	}

	findings := []Finding{}
	if now.Sub(latestMod) > maxAge {
		findings = append(findings, Finding{
			Category: CategoryBackup,
			Name:     filepath.Base(latestPath),
			Message:  "Latest backup log is older than expected threshold.",
		})
	}

	// Unreadable content is treated as empty rather than failing the scan.
	content, err := os.ReadFile(latestPath)
	if err != nil {
		content = nil
	}
	lowered := strings.ToLower(string(content))
	if strings.Contains(lowered, "fail") || strings.Contains(lowered, "error") {
		findings = append(findings, Finding{
			Category: CategoryBackup,
			Name:     filepath.Base(latestPath),
			Message:  fmt.Sprintf("Issues detected in backup log %s", filepath.Base(latestPath)),
		})
	}
	return findings
}

// BackupJobFindings is the structured job-table variant of the backup
// evaluator. Failed and missed jobs each yield a finding; jobs whose last
// run is older than staleAge yield a separate "stale" finding.
func BackupJobFindings(now time.Time, jobs []storage.BackupJob, staleAge time.Duration) []Finding {
	findings := []Finding{}
	for _, j := range jobs {
		if j.Status == storage.BackupStatusFailure || j.Status == storage.BackupStatusMissed {
			findings = append(findings, Finding{
				Category: CategoryBackup,
				JobID:    j.ID,
				Name:     j.SystemName,
				Message:  fmt.Sprintf("Backup job '%s' reported %s", j.SystemName, j.Status),
			})
		}
	}
	cutoff := now.Add(-staleAge)
	for _, j := range jobs {
		if j.LastRunDate.Before(cutoff) {
			findings = append(findings, Finding{
				Category: CategoryBackup,
				JobID:    j.ID,
				Name:     j.SystemName,
				Message:  fmt.Sprintf("No recent backup for '%s' since %s", j.SystemName, j.LastRunDate.UTC().Format("2006-01-02")),
			})
		}
	}
	return findings
}
