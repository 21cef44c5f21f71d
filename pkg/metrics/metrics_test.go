package metrics

import (
	"testing"
	"time"
)

func TestInMemoryCollector(t *testing.T) {
	c := NewInMemoryCollector()

	t.Run("Counter", func(t *testing.T) {
		c.CounterInc(ReportsGeneratedTotal.Name, "format", "pdf")
		c.CounterInc(ReportsGeneratedTotal.Name, "format", "pdf")
		c.CounterAdd(ReportsGeneratedTotal.Name, 3, "format", "pdf")

		if got := c.GetCounter(ReportsGeneratedTotal.Name, "format", "pdf"); got != 5 {
			t.Errorf("Counter = %v, want %v", got, 5)
		}
		if got := c.GetCounter(ReportsGeneratedTotal.Name, "format", "html"); got != 0 {
			t.Errorf("Counter with other label = %v, want 0", got)
		}
	})

	t.Run("Gauge", func(t *testing.T) {
		c.GaugeSet(GenerationsInFlight.Name, 1)
		c.GaugeInc(GenerationsInFlight.Name)
		c.GaugeDec(GenerationsInFlight.Name)

		if got := c.GetGauge(GenerationsInFlight.Name); got != 1 {
			t.Errorf("Gauge = %v, want 1", got)
		}
	})

	t.Run("Histogram", func(t *testing.T) {
		c.HistogramObserve(GenerationDuration.Name, 1.2, "format", "pdf")
		c.HistogramObserve(GenerationDuration.Name, 3.4, "format", "pdf")

		got := c.GetHistogram(GenerationDuration.Name, "format", "pdf")
		if len(got) != 2 {
			t.Errorf("Histogram observations = %d, want 2", len(got))
		}
	})
}

func TestTimer(t *testing.T) {
	c := NewInMemoryCollector()
	timer := NewTimer(c, GenerationDuration.Name, "format", "json")
	time.Sleep(time.Millisecond)
	d := timer.ObserveDuration()

	if d <= 0 {
		t.Errorf("ObserveDuration() = %v, want > 0", d)
	}
	obs := c.GetHistogram(GenerationDuration.Name, "format", "json")
	if len(obs) != 1 {
		t.Fatalf("observations = %d, want 1", len(obs))
	}
	if obs[0] <= 0 {
		t.Errorf("observed value = %v, want > 0", obs[0])
	}
}

func TestPrometheusCollectorRegistersWorkflowMetrics(t *testing.T) {
	c := NewPrometheusCollector(&PrometheusConfig{RegisterWorkflowMetrics: true})

	// Unregistered names are silently dropped; registered ones must
	// not panic with the declared label sets.
	c.CounterInc(ReportsGeneratedTotal.Name, "format", "pdf", "status", "signed")
	c.CounterInc(DownloadsTotal.Name, "format", "pdf")
	c.GaugeInc(GenerationsInFlight.Name)
	c.GaugeDec(GenerationsInFlight.Name)
	c.HistogramObserve(GenerationDuration.Name, 0.8, "format", "pdf")
	c.HistogramObserve(ArtifactBytes.Name, 2048, "format", "pdf", "encoding", "zstd")

	c.CounterInc("reportgen_never_registered_total")

	if c.Handler() == nil {
		t.Error("Handler() = nil")
	}
}

func TestPrometheusRegisterIdempotent(t *testing.T) {
	c := NewPrometheusCollector(&PrometheusConfig{})
	if err := c.Register(ReportsGeneratedTotal); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := c.Register(ReportsGeneratedTotal); err != nil {
		t.Errorf("second Register() error = %v, want nil", err)
	}
}
