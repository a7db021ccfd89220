package inventory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arimedia/mediaplanner/internal/provider"
	"github.com/arimedia/mediaplanner/internal/telemetry"
)

// Text budgets bounding each request to the reasoning service. Oversized
// input is truncated, never rejected.
const (
	briefBudget       = 3000
	audienceBudgetCtx = 1500

	selectionSystemPrompt = "You are a media planning expert. Given an RFP brief and available " +
		"ad inventory, select the most relevant entries for this campaign's target audience. " +
		"Consider audience demographics, interests, and campaign objectives when scoring relevance."

	chunkMaxTokens = 2000
)

// Client asks the reasoning service to judge one chunk of inventory against
// a campaign brief. Failures of any kind resolve to an empty selection list;
// a failed chunk contributes no candidates but never aborts the pipeline.
type Client struct {
	provider  provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewClient creates a selection client
func NewClient(p provider.Provider, tele *telemetry.Telemetry, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.Writer(), "[SELECT] ", log.LstdFlags)
	}
	return &Client{provider: p, telemetry: tele, logger: logger}
}

// Select asks for the topN most relevant entries from one formatted chunk.
// topN is the per-chunk count, which for the multi-chunk inventory type is
// deliberately larger than the final output count.
func (c *Client) Select(ctx context.Context, brief, audience, chunkText string, t EntryType, topN int, chunkLabel string) []Selection {
	userPrompt := fmt.Sprintf(
		"## RFP Brief\n%s\n%s\n## Available %s inventory (%s)\n%s\n\n"+
			"Select the top %d most relevant %s entries for this campaign. "+
			"Return JSON with a \"selections\" array containing exactly %d items:\n"+
			`{"selections": [{"name": "...", "category": "...", "relevance_score": <100-400>, "rationale": "..."}]}`+"\n\n"+
			"Score 100-400 where 400 = perfect audience match. "+
			"Ensure variety across categories.",
		truncate(brief, briefBudget), audienceSection(audience),
		typeLabel(t), columnHint(t), chunkText,
		topN, typeLabel(t), topN,
	)

	messages := []provider.Message{
		{Role: "system", Content: selectionSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	c.logger.Printf("calling reasoning service for %s [%s] (top %d)", t, chunkLabel, topN)

	start := time.Now()
	content, usage, err := c.provider.CompleteJSON(ctx, messages, chunkMaxTokens)
	duration := time.Since(start)

	if err != nil {
		c.logger.Printf("call failed for %s [%s]: %v", t, chunkLabel, err)
		c.recordCall(t, chunkLabel, duration, false, 0, usage)
		return nil
	}

	sels := decodeSelections(content)
	if len(sels) == 0 {
		c.logger.Printf("unusable response for %s [%s]", t, chunkLabel)
		c.recordCall(t, chunkLabel, duration, false, 0, usage)
		return nil
	}

	c.logger.Printf("got %d selections for %s [%s]", len(sels), t, chunkLabel)
	c.recordCall(t, chunkLabel, duration, true, len(sels), usage)
	return sels
}

func (c *Client) recordCall(t EntryType, label string, duration time.Duration, success bool, count int, usage provider.Usage) {
	if c.telemetry == nil {
		return
	}
	c.telemetry.RecordCall(telemetry.CallEvent{
		InventoryType: string(t),
		ChunkLabel:    label,
		Duration:      duration,
		Success:       success,
		Selections:    count,
		Tokens:        usage.PromptTokens + usage.CompletionTokens,
		Cost:          c.provider.CalculateCost(usage),
	})
}

func audienceSection(audience string) string {
	if audience == "" {
		return ""
	}
	return fmt.Sprintf("\n## Audience Context\n%s\n", truncate(audience, audienceBudgetCtx))
}
