package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arimedia/mediaplanner/internal/config"
)

var (
	selectionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_selection_calls_total",
		Help: "Reasoning-service calls issued by the selection pipeline",
	}, []string{"inventory_type", "outcome"})

	selectionCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_selection_call_duration_seconds",
		Help:    "Latency of individual reasoning-service calls",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_selection_cache_lookups_total",
		Help: "Selection cache lookups by outcome",
	}, []string{"outcome"})
)

// Telemetry provides monitoring and cost tracking for selection runs
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger

	mu sync.RWMutex

	totalRuns      int64
	cacheHits      int64
	callsByType    map[string]int64
	failuresByType map[string]int64
	totalTokens    int64
	totalCost      float64
}

// CallEvent records one reasoning-service call
type CallEvent struct {
	InventoryType string
	ChunkLabel    string
	Duration      time.Duration
	Success       bool
	Selections    int
	Tokens        int64
	Cost          float64
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config:         cfg,
		logger:         log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		callsByType:    make(map[string]int64),
		failuresByType: make(map[string]int64),
	}
}

// RecordCall records a reasoning-service call event
func (t *Telemetry) RecordCall(event CallEvent) {
	if !t.config.Enabled {
		return
	}

	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	selectionCalls.WithLabelValues(event.InventoryType, outcome).Inc()
	selectionCallDuration.Observe(event.Duration.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()

	t.callsByType[event.InventoryType]++
	if !event.Success {
		t.failuresByType[event.InventoryType]++
	}
	if t.config.CostTracking {
		t.totalTokens += event.Tokens
		t.totalCost += event.Cost
	}

	t.logger.Printf("Call: type=%s chunk=%q success=%t duration=%v selections=%d tokens=%d cost=$%.4f",
		event.InventoryType, event.ChunkLabel, event.Success, event.Duration, event.Selections, event.Tokens, event.Cost)
}

// RecordRun records the completion of one orchestrator run
func (t *Telemetry) RecordRun(runID string, cached bool, duration time.Duration) {
	if !t.config.Enabled {
		return
	}

	if cached {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}

	t.mu.Lock()
	t.totalRuns++
	if cached {
		t.cacheHits++
	}
	t.mu.Unlock()

	t.logger.Printf("Run: id=%s cached=%t duration=%v", runID, cached, duration)
}

// Summary is a snapshot of accumulated telemetry
type Summary struct {
	TotalRuns      int64
	CacheHits      int64
	CallsByType    map[string]int64
	FailuresByType map[string]int64
	TotalTokens    int64
	TotalCost      float64
}

// GetSummary returns a copy of the accumulated counters
func (t *Telemetry) GetSummary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{
		TotalRuns:      t.totalRuns,
		CacheHits:      t.cacheHits,
		TotalTokens:    t.totalTokens,
		TotalCost:      t.totalCost,
		CallsByType:    make(map[string]int64),
		FailuresByType: make(map[string]int64),
	}
	for k, v := range t.callsByType {
		s.CallsByType[k] = v
	}
	for k, v := range t.failuresByType {
		s.FailuresByType[k] = v
	}
	return s
}

// Shutdown logs a final report
func (t *Telemetry) Shutdown() {
	s := t.GetSummary()
	t.logger.Printf("Final Report: runs=%d cacheHits=%d tokens=%d cost=$%.4f",
		s.TotalRuns, s.CacheHits, s.TotalTokens, s.TotalCost)
}
