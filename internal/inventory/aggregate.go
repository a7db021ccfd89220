package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arimedia/mediaplanner/internal/provider"
)

const (
	aggregateSystemPrompt = "You are a media planning expert. From pre-screened website candidates, " +
		"select the final top picks ensuring category diversity and maximum audience relevance."

	rationaleBudget    = 80
	aggregateMaxTokens = 1500
)

// AggregateWinners runs the final selection pass over the pooled chunk
// winners of a multi-chunk dataset. A pool already within topN is returned
// unchanged. If the final call fails or returns nothing usable the pool is
// sorted by relevance score descending and truncated, so the pipeline always
// answers when any chunk succeeded.
func (c *Client) AggregateWinners(ctx context.Context, brief, audience string, winners []Selection, topN int) []Selection {
	if len(winners) <= topN {
		return winners
	}

	lines := make([]string, 0, len(winners))
	for _, w := range winners {
		lines = append(lines, fmt.Sprintf("%s | %s | Score: %d | %s",
			w.Name, w.Category, w.RelevanceScore, truncate(w.Rationale, rationaleBudget)))
	}

	userPrompt := fmt.Sprintf(
		"## RFP Brief\n%s\n%s\n## Pre-screened website candidates (%d total)\n%s\n\n"+
			"Select the final top %d websites. Ensure category diversity. "+
			"Return JSON with a \"selections\" array containing exactly %d items:\n"+
			`{"selections": [{"name": "...", "category": "...", "relevance_score": <100-400>, "rationale": "..."}]}`,
		truncate(brief, briefBudget), audienceSection(audience),
		len(winners), strings.Join(lines, "\n"),
		topN, topN,
	)

	messages := []provider.Message{
		{Role: "system", Content: aggregateSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	c.logger.Printf("final aggregation: %d candidates -> top %d", len(winners), topN)

	start := time.Now()
	content, usage, err := c.provider.CompleteJSON(ctx, messages, aggregateMaxTokens)
	duration := time.Since(start)

	if err != nil {
		c.logger.Printf("aggregation call failed, using top-scored chunk winners: %v", err)
		c.recordCall(TypeWebsite, "aggregate", duration, false, 0, usage)
		return topScored(winners, topN)
	}

	sels := decodeSelections(content)
	if len(sels) == 0 {
		c.logger.Printf("aggregation response unusable, using top-scored chunk winners")
		c.recordCall(TypeWebsite, "aggregate", duration, false, 0, usage)
		return topScored(winners, topN)
	}

	c.recordCall(TypeWebsite, "aggregate", duration, true, len(sels), usage)
	if len(sels) > topN {
		sels = sels[:topN]
	}
	return sels
}

// topScored is the deterministic fallback: relevance score descending,
// stable for equal scores, truncated to topN.
func topScored(winners []Selection, topN int) []Selection {
	sorted := make([]Selection, len(winners))
	copy(sorted, winners)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}
