package inventory

import (
	"encoding/json"
	"strings"
)

// Response shapes seen from the reasoning service are not contractually
// stable: the requested {"selections": [...]} object may come back as a bare
// array, under a different key, as a single object, or as JSON wrapped in a
// string. decodeSelections runs a fixed cascade of decode attempts and yields
// an empty slice when nothing usable is found; it never fails.
//
// Known keys are searched in priority order before falling back to the
// longest list-valued field.
var knownListKeys = []string{
	"results", "items", "selections", "top", "data", "inventory",
	"top_websites", "top_tv_networks", "top_streaming_platforms",
	"websites", "tv_networks", "streaming_platforms",
}

// rawSelection tolerates scores arriving as integers, floats or numeric
// strings
type rawSelection struct {
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	RelevanceScore json.Number `json:"relevance_score"`
	Rationale      string      `json:"rationale"`
}

func (r rawSelection) toSelection() Selection {
	score := 0
	if f, err := r.RelevanceScore.Float64(); err == nil {
		score = int(f)
	}
	return Selection{
		Name:           strings.TrimSpace(r.Name),
		Category:       strings.TrimSpace(r.Category),
		RelevanceScore: score,
		Rationale:      strings.TrimSpace(r.Rationale),
	}
}

// decodeSelections normalizes a reasoning-service response into selections
func decodeSelections(content string) []Selection {
	raw := json.RawMessage(strings.TrimSpace(content))

	// Secondary parse: the whole payload may itself be a JSON-encoded string.
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		raw = json.RawMessage(strings.TrimSpace(inner))
	}

	if sels, ok := decodeList(raw); ok {
		return sels
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}

	if sels, ok := decodeKnownKey(obj); ok {
		return sels
	}
	if sels, ok := decodeLongestList(obj); ok {
		return sels
	}
	if sel, ok := decodeSingle(raw, obj); ok {
		return []Selection{sel}
	}
	return nil
}

// decodeList accepts a top-level array of selection objects
func decodeList(raw json.RawMessage) ([]Selection, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	sels := make([]Selection, 0, len(items))
	for _, item := range items {
		var rs rawSelection
		if err := json.Unmarshal(item, &rs); err != nil {
			continue
		}
		sels = append(sels, rs.toSelection())
	}
	return sels, true
}

// decodeKnownKey searches the known key names in priority order
func decodeKnownKey(obj map[string]json.RawMessage) ([]Selection, bool) {
	for _, key := range knownListKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if sels, ok := decodeList(raw); ok {
			return sels, true
		}
	}
	return nil, false
}

// decodeLongestList falls back to the longest list-valued field in the object
func decodeLongestList(obj map[string]json.RawMessage) ([]Selection, bool) {
	var best []Selection
	bestLen := -1
	for _, raw := range obj {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			continue
		}
		sels, ok := decodeList(raw)
		if !ok {
			continue
		}
		if len(items) > bestLen {
			best = sels
			bestLen = len(items)
		}
	}
	return best, bestLen >= 0
}

// decodeSingle treats an object with a name-like field as a one-element list
func decodeSingle(raw json.RawMessage, obj map[string]json.RawMessage) (Selection, bool) {
	if _, ok := obj["name"]; !ok {
		return Selection{}, false
	}
	var rs rawSelection
	if err := json.Unmarshal(raw, &rs); err != nil {
		return Selection{}, false
	}
	if rs.Name == "" {
		return Selection{}, false
	}
	return rs.toSelection(), true
}
