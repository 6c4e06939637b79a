package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()
	var families []*dto.MetricFamily
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == labelValue {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStoreMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.IncCacheHit("Users")
	m.IncCacheHit("Users")
	m.IncCacheMiss("Orders")
	m.IncFetchError("Orders", "rows")
	m.ObserveFetch("Orders", "rows", 120*time.Millisecond)

	if got := counterValue(t, reg, "sheet_cache_hits_total", "Users"); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := counterValue(t, reg, "sheet_cache_misses_total", "Orders"); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := counterValue(t, reg, "sheet_fetch_errors_total", "Orders"); got != 1 {
		t.Fatalf("expected 1 fetch error, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawHistogram bool
	for _, fam := range families {
		if fam.GetName() == "sheet_fetch_duration_seconds" {
			sawHistogram = true
			if fam.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
				t.Fatalf("expected one observation, got %v", fam)
			}
		}
	}
	if !sawHistogram {
		t.Fatal("fetch duration histogram not registered")
	}
}

func TestStoreMetricsNilSafe(t *testing.T) {
	var m *StoreMetrics
	m.IncCacheHit("Users")
	m.IncCacheMiss("Users")
	m.IncFetchError("Users", "rows")
	m.ObserveFetch("Users", "rows", time.Second)

	empty := NewStoreMetrics(nil)
	empty.IncCacheHit("Users")
}

func TestNormalizeLabel(t *testing.T) {
	if normalizeLabel("") != "unknown" {
		t.Fatal("empty label should normalize to unknown")
	}
	if normalizeLabel("Users") != "Users" {
		t.Fatal("non-empty label should pass through")
	}
}
