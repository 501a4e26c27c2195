// Package scan drives the evaluators against store snapshots and owns the
// engine's side effects: alert lifecycle writes, bus events and metrics.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assetscan-backend/internal/bus"
	"assetscan-backend/internal/engine"
	"assetscan-backend/internal/metrics"
	"assetscan-backend/internal/notify"
)

// Publisher is the bus surface the service needs. Publish failures are
// logged, never escalated: eventing must not fail a scan.
type Publisher interface {
	Publish(subject string, payload any) error
}

// Store combines the read surface of the entity store with the alert
// lifecycle write surface.
type Store interface {
	engine.SnapshotSource
	engine.AlertStore
}

type Service struct {
	store  Store
	policy engine.Policy
	bus    Publisher // may be nil
	logger *slog.Logger
}

func NewService(store Store, policy engine.Policy, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, policy: policy, bus: publisher, logger: logger}
}

// ComplianceScan runs the warranty, license and unauthorized-software
// evaluators. Each evaluator is isolated: a fault is logged and the
// remaining evaluators still run.
func (s *Service) ComplianceScan(ctx context.Context, now time.Time) error {
	start := time.Now()
	snap, err := engine.LoadSnapshot(ctx, s.store)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("compliance", "error").Inc()
		return fmt.Errorf("compliance scan snapshot: %w", err)
	}

	if warranties, ok := s.runEvaluator(ctx, "warranty-expiry", func() []engine.Finding {
		return engine.ExpiringWarranties(now, snap.Assets, s.policy.WarrantyWindowDays)
	}); ok {
		metrics.FindingsTotal.WithLabelValues(engine.CategoryWarranty).Add(float64(len(warranties)))
		if len(warranties) == 0 {
			s.logger.Info("warranty check complete, no expiring warranties")
		} else {
			s.logger.Warn("assets have expiring warranties", slog.Int("count", len(warranties)))
		}
	}

	if cancelled(ctx) {
		return ctx.Err()
	}
	if licenses, ok := s.runEvaluator(ctx, "license-expiry", func() []engine.Finding {
		return engine.ExpiringLicenses(now, snap.Licenses, s.policy.LicenseWindowDays)
	}); ok {
		metrics.FindingsTotal.WithLabelValues(engine.CategoryLicense).Add(float64(len(licenses)))
		if len(licenses) == 0 {
			s.logger.Info("license check complete, no expiring licenses")
		} else {
			// slog has no critical level; error plus attr matches severity ramp
			s.logger.Error("software licenses are expiring",
				slog.Int("count", len(licenses)),
				slog.Bool("critical", true),
			)
		}
	}

	if cancelled(ctx) {
		return ctx.Err()
	}
	if breaches, ok := s.runEvaluator(ctx, "unauthorized-software", func() []engine.Finding {
		return engine.UnauthorizedSoftware(snap.Licenses, s.policy.AuthorizedSoftware)
	}); ok {
		metrics.FindingsTotal.WithLabelValues(engine.CategoryCompliance).Add(float64(len(breaches)))
		if len(breaches) == 0 {
			s.logger.Info("compliance check complete, no unauthorized software detected")
		} else {
			s.logger.Error("unauthorized software detected", slog.Int("count", len(breaches)))
			for _, f := range breaches {
				s.logger.Error(f.Message)
			}
		}
	}

	metrics.ScansTotal.WithLabelValues("compliance", "ok").Inc()
	metrics.ScanDurationSeconds.WithLabelValues("compliance").Observe(time.Since(start).Seconds())
	s.publish(bus.SubjectScanCompleted, map[string]any{"kind": "compliance", "at": now.UTC()})
	return nil
}

// HealthScan evaluates metric thresholds, reconciles the persisted alert
// state and checks backup health.
func (s *Service) HealthScan(ctx context.Context, now time.Time) error {
	start := time.Now()
	snap, err := engine.LoadSnapshot(ctx, s.store)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("health", "error").Inc()
		return fmt.Errorf("health scan snapshot: %w", err)
	}

	breaches := engine.MetricBreaches(snap.Metrics, snap.Thresholds, s.logger)
	result, err := engine.Reconcile(ctx, now, breaches, s.store)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("health", "error").Inc()
		return fmt.Errorf("reconcile alerts: %w", err)
	}
	for _, opened := range result.Opened {
		s.logger.Warn("hardware alert opened",
			slog.Int64("asset_id", opened.AssetID),
			slog.String("metric", opened.MetricType),
			slog.Float64("value", opened.TriggeredValue),
		)
		s.publish(bus.SubjectAlertOpened, opened)
	}
	for _, resolved := range result.Resolved {
		s.logger.Info("hardware alert resolved",
			slog.Int64("asset_id", resolved.AssetID),
			slog.String("metric", resolved.MetricType),
		)
		s.publish(bus.SubjectAlertResolved, resolved)
	}
	metrics.FindingsTotal.WithLabelValues(engine.CategoryHardware).Add(float64(len(result.Opened)))

	active := len(snap.ActiveAlerts) + len(result.Opened) - len(result.Resolved)
	if active < 0 {
		active = 0
	}
	metrics.ActiveAlerts.Set(float64(active))

	if backups, ok := s.runEvaluator(ctx, "backup-staleness", func() []engine.Finding {
		return s.backupFindings(now, snap)
	}); ok {
		metrics.FindingsTotal.WithLabelValues(engine.CategoryBackup).Add(float64(len(backups)))
		if len(backups) > 0 {
			s.logger.Warn("backup issues detected", slog.Int("count", len(backups)))
		}
	}

	metrics.ScansTotal.WithLabelValues("health", "ok").Inc()
	metrics.ScanDurationSeconds.WithLabelValues("health").Observe(time.Since(start).Seconds())
	s.publish(bus.SubjectScanCompleted, map[string]any{
		"kind":     "health",
		"at":       now.UTC(),
		"opened":   len(result.Opened),
		"resolved": len(result.Resolved),
	})
	return nil
}

// GenerateFeed recomputes the full notification feed from a fresh snapshot.
// Everything except the persisted alert rows is derived on the fly, so the
// result is idempotent across calls with unchanged data.
func (s *Service) GenerateFeed(ctx context.Context, now time.Time) (notify.Feed, error) {
	snap, err := engine.LoadSnapshot(ctx, s.store)
	if err != nil {
		return notify.Feed{}, fmt.Errorf("feed snapshot: %w", err)
	}
	return notify.Aggregate(notify.Inputs{
		LicenseExpiries:    engine.ExpiringLicenses(now, snap.Licenses, s.policy.LicenseWindowDays),
		ActiveAlerts:       snap.ActiveAlerts,
		BackupFindings:     s.backupFindings(now, snap),
		WarrantyExpiries:   engine.ExpiringWarranties(now, snap.Assets, s.policy.WarrantyWindowDays),
		ComplianceBreaches: engine.UnauthorizedSoftware(snap.Licenses, s.policy.AuthorizedSoftware),
	}), nil
}

func (s *Service) backupFindings(now time.Time, snap *engine.Snapshot) []engine.Finding {
	findings := []engine.Finding{}
	if s.policy.BackupMode == "logs" || s.policy.BackupMode == "both" {
		findings = append(findings, engine.BackupLogFindings(now, s.policy.BackupLogDir, s.policy.BackupLogMaxAge)...)
	}
	if s.policy.BackupMode == "jobs" || s.policy.BackupMode == "both" {
		findings = append(findings, engine.BackupJobFindings(now, snap.BackupJobs, s.policy.BackupStaleAge)...)
	}
	return findings
}

// runEvaluator isolates one evaluator: a panic is recovered and logged, the
// caller's remaining evaluators still run.
func (s *Service) runEvaluator(ctx context.Context, name string, fn func() []engine.Finding) (findings []engine.Finding, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("evaluator failed",
				slog.String("evaluator", name),
				slog.Any("panic", r),
			)
			ok = false
		}
	}()
	return fn(), true
}

func (s *Service) publish(subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(subject, payload); err != nil {
		s.logger.Error("bus publish failed",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}

func cancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}
