package engine

import (
	"testing"

	"assetscan-backend/internal/storage"
)

func TestMetricBreachesStrictComparison(t *testing.T) {
	readings := []storage.MetricReading{
		{AssetID: 1, CPUPercent: 90, RAMPercent: 50, DiskPercent: 50},
		{AssetID: 2, CPUPercent: 90.1, RAMPercent: 50, DiskPercent: 50},
	}
	thresholds := []storage.AlertThreshold{{MetricType: "CPU", ThresholdPercent: 90}}

	breaches := MetricBreaches(readings, thresholds, nil)
	if len(breaches) != 1 {
		t.Fatalf("expected 1 breach, got %d", len(breaches))
	}
	if breaches[0].AssetID != 2 {
		t.Fatalf("value equal to threshold must not breach, got asset %d", breaches[0].AssetID)
	}
}

func TestMetricBreachesSkipsOutOfRangeReadings(t *testing.T) {
	readings := []storage.MetricReading{
		{AssetID: 1, CPUPercent: 120},
		{AssetID: 2, CPUPercent: -3},
		{AssetID: 3, CPUPercent: 95},
	}
	thresholds := []storage.AlertThreshold{{MetricType: "cpu", ThresholdPercent: 90}}

	breaches := MetricBreaches(readings, thresholds, nil)
	if len(breaches) != 1 {
		t.Fatalf("expected 1 breach, got %d", len(breaches))
	}
	if breaches[0].AssetID != 3 {
		t.Fatalf("expected asset 3, got %d", breaches[0].AssetID)
	}
}

func TestMetricBreachesUnknownMetricTypeIgnored(t *testing.T) {
	readings := []storage.MetricReading{{AssetID: 1, CPUPercent: 99}}
	thresholds := []storage.AlertThreshold{{MetricType: "gpu", ThresholdPercent: 10}}

	if breaches := MetricBreaches(readings, thresholds, nil); len(breaches) != 0 {
		t.Fatalf("expected no breaches for unknown metric, got %d", len(breaches))
	}
}

func TestMetricBreachesDeterministicOrder(t *testing.T) {
	readings := []storage.MetricReading{
		{AssetID: 2, CPUPercent: 95, RAMPercent: 95},
		{AssetID: 1, CPUPercent: 95, RAMPercent: 95},
	}
	thresholds := []storage.AlertThreshold{
		{MetricType: "ram", ThresholdPercent: 90},
		{MetricType: "cpu", ThresholdPercent: 90},
	}

	breaches := MetricBreaches(readings, thresholds, nil)
	if len(breaches) != 4 {
		t.Fatalf("expected 4 breaches, got %d", len(breaches))
	}
	want := []struct {
		asset  int64
		metric string
	}{{1, "cpu"}, {1, "ram"}, {2, "cpu"}, {2, "ram"}}
	for i, w := range want {
		if breaches[i].AssetID != w.asset || breaches[i].Metric != w.metric {
			t.Fatalf("breach %d: got (%d, %s), want (%d, %s)", i, breaches[i].AssetID, breaches[i].Metric, w.asset, w.metric)
		}
	}
}
