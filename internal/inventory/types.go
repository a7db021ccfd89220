// Package inventory implements the AI-assisted selection pipeline: loading
// the reference inventories, partitioning the large one into chunks, asking
// the reasoning service for per-chunk relevance judgments, aggregating chunk
// winners into a final ranking and caching combined results per brief.
package inventory

import "time"

// EntryType identifies one of the three reference inventories
type EntryType string

const (
	TypeWebsite   EntryType = "website"
	TypeTVNetwork EntryType = "tv_network"
	TypeStreaming EntryType = "streaming_platform"
)

// Types lists all inventory types in presentation order
var Types = []EntryType{TypeWebsite, TypeTVNetwork, TypeStreaming}

// Entry is one candidate placement, immutable once loaded
type Entry struct {
	Type      EntryType `json:"type"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Keywords  string    `json:"keywords,omitempty"`
	Audience  string    `json:"audience,omitempty"`
	Publisher string    `json:"publisher,omitempty"` // tv/streaming only
}

// Dataset is an ordered, read-only sequence of entries of one type
type Dataset []Entry

// Chunk is an ordered, non-overlapping slice of a dataset. The label
// ("chunk 3/7") exists only for logging and diagnostics.
type Chunk struct {
	Label   string
	Entries []Entry
}

// Selection is one candidate judged relevant by the reasoning service.
// RelevanceScore is conventionally 100-400, higher = better fit; nothing
// beyond "numeric" is enforced.
type Selection struct {
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	RelevanceScore int    `json:"relevance_score"`
	Rationale      string `json:"rationale,omitempty"`
}

// CombinedResult maps each inventory type to its ordered selections.
// A nil slice means the type's pipeline could not produce a result
// (dataset absent or every call failed); an empty non-nil slice is a
// valid "nothing matched" outcome.
type CombinedResult struct {
	Websites    []Selection   `json:"websites"`
	TVNetworks  []Selection   `json:"tv_networks"`
	Streaming   []Selection   `json:"streaming_platforms"`
	Fingerprint string        `json:"fingerprint"`
	RunID       string        `json:"run_id"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ByType returns the result slot for the given inventory type
func (r *CombinedResult) ByType(t EntryType) []Selection {
	switch t {
	case TypeWebsite:
		return r.Websites
	case TypeTVNetwork:
		return r.TVNetworks
	case TypeStreaming:
		return r.Streaming
	}
	return nil
}

func (r *CombinedResult) setByType(t EntryType, sels []Selection) {
	switch t {
	case TypeWebsite:
		r.Websites = sels
	case TypeTVNetwork:
		r.TVNetworks = sels
	case TypeStreaming:
		r.Streaming = sels
	}
}
