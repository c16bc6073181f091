package health

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_UpdateAndGet(t *testing.T) {
	monitor := NewMonitor()
	assert.Equal(t, 0, monitor.Count())

	monitor.Update("source", Status{Component: "wrong-name", Status: StateHealthy})

	got, ok := monitor.Get("source")
	require.True(t, ok)
	assert.Equal(t, "source", got.Component)
	assert.False(t, got.Timestamp.IsZero())

	_, ok = monitor.Get("missing")
	assert.False(t, ok)
}

func TestMonitor_OnChange(t *testing.T) {
	monitor := NewMonitor()

	var seen []Status
	monitor.OnChange(func(s Status) { seen = append(seen, s) })

	monitor.UpdateHealthy("source", "42 records")
	monitor.UpdateDegraded("source", "no records")

	require.Len(t, seen, 2)
	assert.Equal(t, 2, seen[0].Level())
	assert.Equal(t, 1, seen[1].Level())
}

func TestMonitor_AggregateHealth(t *testing.T) {
	monitor := NewMonitor()

	assert.True(t, monitor.AggregateHealth("registry").IsHealthy())

	monitor.UpdateHealthy("sessions", "ok")
	monitor.UpdateDegraded("source", "empty dataset")
	agg := monitor.AggregateHealth("registry")
	assert.True(t, agg.IsDegraded())
	require.Len(t, agg.SubStatuses, 2)
	assert.Equal(t, "sessions", agg.SubStatuses[0].Component)
	assert.Equal(t, "source", agg.SubStatuses[1].Component)

	monitor.UpdateUnhealthy("source", "fetch failed")
	agg = monitor.AggregateHealth("registry")
	assert.True(t, agg.IsUnhealthy())
	assert.Equal(t, 0, agg.Level())
}

func TestMonitor_Concurrent(t *testing.T) {
	monitor := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				monitor.UpdateHealthy("source", "ok")
				monitor.AggregateHealth("registry")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, monitor.Count())
}

func TestNewStatusHelpers(t *testing.T) {
	before := time.Now()
	s := NewUnhealthy("source", "down")

	assert.False(t, s.Healthy)
	assert.True(t, s.IsUnhealthy())
	assert.False(t, s.Timestamp.Before(before))
	assert.True(t, NewHealthy("a", "").Healthy)
	assert.False(t, NewDegraded("a", "").Healthy)
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{"empty", "", "", "x"},
		{"url", "Get \"https://docs.example/export?key=abc\": timeout", "[URL]", "docs.example"},
		{"ip", "dial tcp 10.0.0.12:443: connection refused", "[IP]", "10.0.0.12"},
		{"credential", "bad token=s3cr3t in request", "[REDACTED]", "s3cr3t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeMessage(tt.input)
			assert.Contains(t, got, tt.contains)
			assert.NotContains(t, got, tt.excludes)
		})
	}
}
