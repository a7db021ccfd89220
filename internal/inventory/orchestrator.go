package inventory

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arimedia/mediaplanner/internal/config"
	"github.com/arimedia/mediaplanner/internal/telemetry"
)

// Orchestrator runs the full selection pipeline for a brief: cache check,
// then one independent sub-pipeline per inventory type, all sharing a
// bounded worker pool for their reasoning-service calls. A sub-pipeline
// failure leaves its slot absent and never affects its siblings; the
// orchestrator always reaches a terminal result.
type Orchestrator struct {
	cfg       config.InventoryConfig
	store     *Store
	client    *Client
	cache     Cache
	telemetry *telemetry.Telemetry
	logger    *log.Logger

	// semaphore bounds in-flight reasoning-service calls across all
	// sub-pipelines and chunks of one or more concurrent runs
	semaphore chan struct{}
}

// NewOrchestrator creates an orchestrator over the given collaborators
func NewOrchestrator(cfg config.InventoryConfig, store *Store, client *Client, cache Cache, tele *telemetry.Telemetry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		client:    client,
		cache:     cache,
		telemetry: tele,
		logger:    logger,
		semaphore: make(chan struct{}, workers),
	}
}

// SelectAll selects relevant inventory of all three types for the brief.
// The returned result may have any subset of its type slots absent; an
// all-absent result is valid and left to the caller to interpret.
func (o *Orchestrator) SelectAll(ctx context.Context, brief, audience string) (CombinedResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	fp := Fingerprint(brief)

	if cached, ok := o.cache.Get(ctx, fp); ok {
		o.logger.Printf("cache hit for %s, returning cached result", fp)
		if o.telemetry != nil {
			o.telemetry.RecordRun(runID, true, time.Since(start))
		}
		return cached, nil
	}

	result := CombinedResult{Fingerprint: fp, RunID: runID}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, t := range Types {
		settings, ok := o.cfg.Types[string(t)]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(t EntryType, settings config.TypeSettings) {
			defer wg.Done()
			sels := o.selectType(ctx, t, settings, brief, audience)
			mu.Lock()
			result.setByType(t, sels)
			mu.Unlock()
		}(t, settings)
	}
	wg.Wait()

	result.Elapsed = time.Since(start)
	o.cache.Put(ctx, fp, result)
	o.logger.Printf("run %s completed in %v", runID, result.Elapsed)
	if o.telemetry != nil {
		o.telemetry.RecordRun(runID, false, result.Elapsed)
	}
	return result, nil
}

// selectType runs one inventory type's sub-pipeline. Returns nil when the
// dataset is absent or every chunk call failed.
func (o *Orchestrator) selectType(ctx context.Context, t EntryType, settings config.TypeSettings, brief, audience string) []Selection {
	ds, present, err := o.store.Load(t)
	if err != nil {
		o.logger.Printf("loading %s failed: %v", t, err)
		return nil
	}
	if !present {
		return nil
	}

	chunks := SplitChunks(ds, settings.ChunkSize)
	o.logger.Printf("%s: %d entries -> %d chunk(s) of <=%d", t, len(ds), len(chunks), settings.ChunkSize)

	winners := make([]Selection, 0, settings.ChunkTopN*len(chunks))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk Chunk) {
			defer wg.Done()

			select {
			case o.semaphore <- struct{}{}:
				defer func() { <-o.semaphore }()
			case <-ctx.Done():
				return
			}

			sels := o.client.Select(ctx, brief, audience, FormatBlock(chunk.Entries), t, settings.ChunkTopN, chunk.Label)
			if len(sels) == 0 {
				return
			}
			mu.Lock()
			winners = append(winners, sels...)
			mu.Unlock()
		}(chunk)
	}
	wg.Wait()

	if len(winners) == 0 {
		return nil
	}

	// Only a multi-chunk dataset needs the second pass; the final ordering
	// for single-pass types is whatever the one call produced.
	if len(chunks) > 1 {
		select {
		case o.semaphore <- struct{}{}:
			defer func() { <-o.semaphore }()
		case <-ctx.Done():
			return topScored(winners, settings.FinalTopN)
		}
		return o.client.AggregateWinners(ctx, brief, audience, winners, settings.FinalTopN)
	}

	if len(winners) > settings.FinalTopN {
		winners = winners[:settings.FinalTopN]
	}
	return winners
}
