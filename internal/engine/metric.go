package engine

import (
	"log/slog"
	"sort"
	"strings"

	"assetscan-backend/internal/storage"
)

// MetricBreaches flags asset/metric pairs whose latest reading strictly
// exceeds the configured threshold. Comparison is value > threshold
// throughout the engine. Readings outside [0,100] are data errors: the
// reading is skipped and logged, the scan continues.
func MetricBreaches(readings []storage.MetricReading, thresholds []storage.AlertThreshold, logger *slog.Logger) []Breach {
	breaches := []Breach{}
	for _, t := range thresholds {
		metric := strings.ToLower(strings.TrimSpace(t.MetricType))
		for _, m := range readings {
			value, ok := readingValue(m, metric)
			if !ok {
				continue
			}
			if value < 0 || value > 100 {
				if logger != nil {
					logger.Warn("skipping out-of-range metric reading",
						slog.Int64("asset_id", m.AssetID),
						slog.String("metric", metric),
						slog.Float64("value", value),
					)
				}
				continue
			}
			if value > t.ThresholdPercent {
				breaches = append(breaches, Breach{
					AssetID:   m.AssetID,
					Metric:    metric,
					Value:     value,
					Threshold: t.ThresholdPercent,
				})
			}
		}
	}
	sort.SliceStable(breaches, func(i, j int) bool {
		if breaches[i].AssetID != breaches[j].AssetID {
			return breaches[i].AssetID < breaches[j].AssetID
		}
		return breaches[i].Metric < breaches[j].Metric
	})
	return breaches
}

func readingValue(m storage.MetricReading, metric string) (float64, bool) {
	switch metric {
	case "cpu":
		return m.CPUPercent, true
	case "ram":
		return m.RAMPercent, true
	case "disk":
		return m.DiskPercent, true
	default:
		return 0, false
	}
}
