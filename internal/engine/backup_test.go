package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assetscan-backend/internal/storage"
)

func writeLog(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func TestBackupLogFindingsMissingDirectory(t *testing.T) {
	findings := BackupLogFindings(scanTime, filepath.Join(t.TempDir(), "nope"), 2*time.Hour)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Message != noBackupsMessage {
		t.Fatalf("got %q", findings[0].Message)
	}
}

func TestBackupLogFindingsNoLogFiles(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "notes.txt", "not a log", scanTime)

	findings := BackupLogFindings(scanTime, dir, 2*time.Hour)
	if len(findings) != 1 || findings[0].Message != noBackupsMessage {
		t.Fatalf("expected no-backups finding, got %+v", findings)
	}
}

func TestBackupLogFindingsHealthyLog(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "nightly.log", "backup completed ok", scanTime.Add(-time.Hour))

	findings := BackupLogFindings(scanTime, dir, 2*time.Hour)
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %+v", findings)
	}
}

func TestBackupLogFindingsStaleLog(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "nightly.log", "backup completed ok", scanTime.Add(-3*time.Hour))

	findings := BackupLogFindings(scanTime, dir, 2*time.Hour)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Message != "Latest backup log is older than expected threshold." {
		t.Fatalf("got %q", findings[0].Message)
	}
}

func TestBackupLogFindingsFailureKeywordCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "nightly.log", "step 3: FAILED to copy volume", scanTime.Add(-time.Hour))

	findings := BackupLogFindings(scanTime, dir, 2*time.Hour)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Message, "nightly.log") {
		t.Fatalf("message should name the file, got %q", findings[0].Message)
	}
}

func TestBackupLogFindingsStaleAndFailingCoOccur(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "old.log", "error: disk full", scanTime.Add(-48*time.Hour))
	writeLog(t, dir, "older.log", "ok", scanTime.Add(-72*time.Hour))

	findings := BackupLogFindings(scanTime, dir, 2*time.Hour)
	if len(findings) != 2 {
		t.Fatalf("expected stale and failure findings, got %+v", findings)
	}
	for _, f := range findings {
		if f.Name != "old.log" {
			t.Fatalf("findings must reference the newest log, got %q", f.Name)
		}
	}
}

func TestBackupJobFindings(t *testing.T) {
	jobs := []storage.BackupJob{
		{ID: 1, SystemName: "fileserver", Status: storage.BackupStatusSuccess, LastRunDate: scanTime.Add(-time.Hour)},
		{ID: 2, SystemName: "mailserver", Status: storage.BackupStatusFailure, LastRunDate: scanTime.Add(-time.Hour)},
		{ID: 3, SystemName: "dbserver", Status: storage.BackupStatusMissed, LastRunDate: scanTime.Add(-time.Hour)},
		{ID: 4, SystemName: "archive", Status: storage.BackupStatusSuccess, LastRunDate: scanTime.AddDate(0, 0, -10)},
	}

	findings := BackupJobFindings(scanTime, jobs, 7*24*time.Hour)
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}
	if findings[0].JobID != 2 || findings[1].JobID != 3 {
		t.Fatalf("expected failed then missed jobs first, got %+v", findings)
	}
	if findings[2].JobID != 4 || !strings.Contains(findings[2].Message, "No recent backup") {
		t.Fatalf("expected stale finding for archive, got %+v", findings[2])
	}
}
