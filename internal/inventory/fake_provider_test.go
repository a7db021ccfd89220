package inventory

import (
	"context"
	"strings"
	"sync"

	"github.com/arimedia/mediaplanner/internal/provider"
)

// fakeProvider scripts reasoning-service responses per prompt and counts
// calls, standing in for the real chat completions API.
type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	respond func(prompt string) (string, error)
}

func (f *fakeProvider) CompleteJSON(_ context.Context, messages []provider.Message, _ int) (string, provider.Usage, error) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	content, err := f.respond(b.String())
	return content, provider.Usage{PromptTokens: 100, CompletionTokens: 50}, err
}

func (f *fakeProvider) CalculateCost(provider.Usage) float64 { return 0 }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// isAggregatePrompt reports whether a prompt belongs to the final
// aggregation pass rather than a per-chunk selection call
func isAggregatePrompt(prompt string) bool {
	return strings.Contains(prompt, "Pre-screened website candidates")
}
