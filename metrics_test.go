package dotcluster

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordsBuilds(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cz, err := New(DefaultConfig(), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	cz.AddDot(0, 0)
	cz.AddDot(5, 0)
	cz.AddDot(5, 0, 1)
	cz.AddDot(9000, 0)
	mustBuild(t, cz, Level1, false)
	mustBuild(t, cz, Level1, true)

	if got := testutil.ToFloat64(m.DotsInserted); got != 3 {
		t.Errorf("dots inserted = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BuildsTotal.WithLabelValues("L1")); got != 2 {
		t.Errorf("L1 builds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ClustersBuilt.WithLabelValues("L1")); got != 3 {
		t.Errorf("L1 clusters built = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(m.BuildDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(reg); err == nil {
		t.Error("second Register succeeded")
	}
}
