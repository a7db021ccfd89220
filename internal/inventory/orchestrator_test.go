package inventory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/arimedia/mediaplanner/internal/config"
)

func testInventoryConfig(dir string) config.InventoryConfig {
	return config.InventoryConfig{
		DataDir:    dir,
		MaxWorkers: 4,
		Types: map[string]config.TypeSettings{
			"website":            {File: "websites.csv", ChunkSize: 5000, ChunkTopN: 10, FinalTopN: 5},
			"tv_network":         {File: "tv.csv", ChunkSize: 5000, ChunkTopN: 5, FinalTopN: 5},
			"streaming_platform": {File: "streaming.csv", ChunkSize: 5000, ChunkTopN: 6, FinalTopN: 6},
		},
	}
}

// writeFixtures populates a dataset dir: websites rows plus small tv and
// streaming files. Pass websites=0 to omit the website file entirely.
func writeFixtures(t *testing.T, dir string, websites int, withTV, withStreaming bool) {
	t.Helper()
	if websites > 0 {
		var b strings.Builder
		b.WriteString("Domain Name,Category,Behavioral Keywords,Audience\n")
		for i := 0; i < websites; i++ {
			fmt.Fprintf(&b, "w-%d.com,News,keywords,Adults\n", i)
		}
		writeCSV(t, dir, "websites.csv", b.String())
	}
	if withTV {
		writeCSV(t, dir, "tv.csv", tvCSV)
	}
	if withStreaming {
		writeCSV(t, dir, "streaming.csv", `App/Platform Name,Publisher Name,Category
StreamBox,BoxMedia,Entertainment
FilmFlow,FlowCo,Movies
`)
	}
}

// scriptedResponses answers chunk, single-pass and aggregation prompts with
// plausible fixed selections
func scriptedResponses(prompt string) (string, error) {
	switch {
	case isAggregatePrompt(prompt):
		return `{"selections": [
			{"name": "w-1.com", "category": "News", "relevance_score": 390},
			{"name": "w-5001.com", "category": "Sports", "relevance_score": 360},
			{"name": "w-2.com", "category": "Tech", "relevance_score": 330},
			{"name": "w-10002.com", "category": "Food", "relevance_score": 300},
			{"name": "w-3.com", "category": "Travel", "relevance_score": 270}
		]}`, nil
	case strings.Contains(prompt, "Available TV network inventory"):
		return `{"selections": [
			{"name": "SportsNet", "relevance_score": 350},
			{"name": "NewsOne", "relevance_score": 320},
			{"name": "FilmFour", "relevance_score": 290},
			{"name": "KidsTV", "relevance_score": 260},
			{"name": "DocuMax", "relevance_score": 230}
		]}`, nil
	case strings.Contains(prompt, "Available streaming platform inventory"):
		return `{"selections": [
			{"name": "StreamBox", "relevance_score": 340},
			{"name": "FilmFlow", "relevance_score": 310}
		]}`, nil
	default: // website chunk call
		var b strings.Builder
		b.WriteString(`{"selections": [`)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"name": "chunk-pick-%d.com", "relevance_score": %d}`, i, 150+i*10)
		}
		b.WriteString(`]}`)
		return b.String(), nil
	}
}

func newTestOrchestrator(t *testing.T, dir string, fp *fakeProvider) (*Orchestrator, *Store) {
	t.Helper()
	cfg := testInventoryConfig(dir)
	store := NewStore(dir, map[EntryType]string{
		TypeWebsite:   "websites.csv",
		TypeTVNetwork: "tv.csv",
		TypeStreaming: "streaming.csv",
	}, nil)
	client := NewClient(fp, nil, nil)
	return NewOrchestrator(cfg, store, client, NewMemoryCache(), nil, nil), store
}

func TestOrchestratorEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 12000, true, true)

	fp := &fakeProvider{respond: scriptedResponses}
	orch, _ := newTestOrchestrator(t, dir, fp)

	result, err := orch.SelectAll(context.Background(), "running shoes for urban athletes", "")
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}

	// 12000 entries at chunk size 5000 -> 3 chunk calls + 1 aggregation,
	// plus one single-pass call each for tv and streaming
	if fp.callCount() != 6 {
		t.Fatalf("expected 6 reasoning calls, got %d", fp.callCount())
	}

	if len(result.Websites) != 5 {
		t.Fatalf("expected 5 website selections, got %d", len(result.Websites))
	}
	for i := 0; i < len(result.Websites)-1; i++ {
		if result.Websites[i].RelevanceScore < result.Websites[i+1].RelevanceScore {
			t.Fatalf("websites not ordered best-first: %+v", result.Websites)
		}
	}
	if len(result.TVNetworks) != 5 {
		t.Fatalf("expected 5 TV selections, got %d", len(result.TVNetworks))
	}
	if len(result.Streaming) != 2 {
		t.Fatalf("expected 2 streaming selections, got %d", len(result.Streaming))
	}
	if result.Fingerprint == "" || result.RunID == "" {
		t.Fatalf("missing fingerprint or run id: %+v", result)
	}
}

func TestOrchestratorCacheHitSkipsAllWork(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 12000, true, true)

	fp := &fakeProvider{respond: scriptedResponses}
	orch, store := newTestOrchestrator(t, dir, fp)

	brief := "streaming sports campaign for men 18-34"
	first, err := orch.SelectAll(context.Background(), brief, "")
	if err != nil {
		t.Fatalf("first SelectAll: %v", err)
	}
	callsAfterFirst := fp.callCount()
	loadsAfterFirst := store.Loads()

	second, err := orch.SelectAll(context.Background(), brief, "")
	if err != nil {
		t.Fatalf("second SelectAll: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result differs from original")
	}
	if fp.callCount() != callsAfterFirst {
		t.Fatalf("cache hit triggered %d extra reasoning calls", fp.callCount()-callsAfterFirst)
	}
	if store.Loads() != loadsAfterFirst {
		t.Fatalf("cache hit triggered extra dataset loads")
	}
}

func TestOrchestratorGracefulAbsence(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 100, false, true) // no TV dataset

	fp := &fakeProvider{respond: scriptedResponses}
	orch, _ := newTestOrchestrator(t, dir, fp)

	result, err := orch.SelectAll(context.Background(), "brief", "")
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if result.TVNetworks != nil {
		t.Fatalf("expected absent TV result, got %+v", result.TVNetworks)
	}
	if len(result.Websites) == 0 {
		t.Fatalf("website pipeline must be unaffected by the absent TV dataset")
	}
	if len(result.Streaming) == 0 {
		t.Fatalf("streaming pipeline must be unaffected by the absent TV dataset")
	}
}

func TestOrchestratorAllAbsent(t *testing.T) {
	fp := &fakeProvider{respond: scriptedResponses}
	orch, _ := newTestOrchestrator(t, t.TempDir(), fp)

	result, err := orch.SelectAll(context.Background(), "brief", "")
	if err != nil {
		t.Fatalf("all-absent run must not error, got %v", err)
	}
	if result.Websites != nil || result.TVNetworks != nil || result.Streaming != nil {
		t.Fatalf("expected all slots absent, got %+v", result)
	}
	if fp.callCount() != 0 {
		t.Fatalf("no reasoning calls expected, got %d", fp.callCount())
	}
}

func TestOrchestratorResilientAggregation(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 12000, false, false)

	// chunk calls succeed with distinct score bands; the aggregation pass
	// fails, so the result must be the deterministic score-sorted top 5
	fp := &fakeProvider{respond: func(prompt string) (string, error) {
		if isAggregatePrompt(prompt) {
			return "", errors.New("service unavailable")
		}
		base := 100
		switch {
		case strings.Contains(prompt, "w-0.com"):
			base = 300
		case strings.Contains(prompt, "w-5000.com"):
			base = 200
		}
		var b strings.Builder
		b.WriteString(`{"selections": [`)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"name": "pick-%d-%d.com", "relevance_score": %d}`, base, i, base+i)
		}
		b.WriteString(`]}`)
		return b.String(), nil
	}}
	orch, _ := newTestOrchestrator(t, dir, fp)

	result, err := orch.SelectAll(context.Background(), "brief", "")
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(result.Websites) != 5 {
		t.Fatalf("expected 5 fallback selections, got %d", len(result.Websites))
	}
	// top of the 300-band wins: 309, 308, 307, 306, 305
	want := []int{309, 308, 307, 306, 305}
	for i, sel := range result.Websites {
		if sel.RelevanceScore != want[i] {
			t.Fatalf("fallback rank %d: score %d, want %d", i, sel.RelevanceScore, want[i])
		}
	}
}

func TestOrchestratorBoundedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 0, true, false)

	// the service over-delivers; the result must still respect final topN
	fp := &fakeProvider{respond: func(string) (string, error) {
		var b strings.Builder
		b.WriteString(`{"selections": [`)
		for i := 0; i < 20; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"name": "net-%d", "relevance_score": %d}`, i, 400-i)
		}
		b.WriteString(`]}`)
		return b.String(), nil
	}}
	orch, _ := newTestOrchestrator(t, dir, fp)

	result, err := orch.SelectAll(context.Background(), "brief", "")
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(result.TVNetworks) != 5 {
		t.Fatalf("expected output bounded to 5, got %d", len(result.TVNetworks))
	}
}

func TestOrchestratorAllChunkFailuresYieldAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, 100, false, false)

	fp := &fakeProvider{respond: func(string) (string, error) {
		return "", errors.New("timeout")
	}}
	orch, _ := newTestOrchestrator(t, dir, fp)

	result, err := orch.SelectAll(context.Background(), "brief", "")
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if result.Websites != nil {
		t.Fatalf("all-failed pipeline must yield absent, got %+v", result.Websites)
	}
}
