package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	mu    sync.Mutex
	count int64
	err   error
	calls int
}

func (m *mockStatsProvider) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.count, m.err
}

func (m *mockStatsProvider) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestCollectorUpdatesDocumentGauge(t *testing.T) {
	provider := &mockStatsProvider{count: 42}
	collector := NewCollector(provider, time.Hour)

	collector.collect()

	if got := testutil.ToFloat64(StoreDocumentsTotal); got != 42 {
		t.Errorf("Expected store documents gauge 42, got %v", got)
	}
}

func TestCollectorKeepsGaugeOnError(t *testing.T) {
	StoreDocumentsTotal.Set(7)

	provider := &mockStatsProvider{count: 99, err: errors.New("store unavailable")}
	collector := NewCollector(provider, time.Hour)
	collector.collect()

	if got := testutil.ToFloat64(StoreDocumentsTotal); got != 7 {
		t.Errorf("Expected gauge to keep previous value 7, got %v", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	collector := NewCollector(nil, time.Hour)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect panicked with nil provider: %v", r)
		}
	}()
	collector.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{count: 3}
	collector := NewCollector(provider, 10*time.Millisecond)

	collector.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.getCalls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	collector.Stop()

	calls := provider.getCalls()
	if calls < 2 {
		t.Fatalf("Expected at least 2 collections, got %d", calls)
	}

	time.Sleep(30 * time.Millisecond)
	if after := provider.getCalls(); after != calls {
		t.Errorf("Expected no collections after Stop, got %d more", after-calls)
	}
}
