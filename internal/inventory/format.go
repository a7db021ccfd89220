package inventory

import "strings"

// Character budgets keep a formatted chunk inside the reasoning service's
// input limits. Keywords and audience descriptors carry the bulk of the
// per-row text, so they are the fields that get truncated.
const (
	keywordBudget  = 80
	audienceBudget = 60
	fieldDelimiter = " | "
)

// FormatEntry renders one entry as a compact single line. Absent optional
// fields are omitted rather than rendered empty; the result is deterministic
// for a given entry.
func FormatEntry(e Entry) string {
	parts := make([]string, 0, 5)
	parts = append(parts, strings.TrimSpace(e.Name))

	if e.Publisher != "" {
		parts = append(parts, e.Publisher)
	}
	if e.Category != "" {
		parts = append(parts, e.Category)
	}
	if kw := truncate(e.Keywords, keywordBudget); kw != "" {
		parts = append(parts, kw)
	}
	if aud := truncate(e.Audience, audienceBudget); aud != "" {
		parts = append(parts, aud)
	}

	return strings.Join(parts, fieldDelimiter)
}

// FormatBlock joins formatted entries with newlines, skipping entries whose
// rendered line is empty after trimming.
func FormatBlock(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		line := FormatEntry(e)
		if strings.TrimSpace(line) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// columnHint describes the field layout of a formatted block, included in
// prompts so the reasoning service can read the rows.
func columnHint(t EntryType) string {
	if t == TypeWebsite {
		return "Domain | Category | Keywords | Audience"
	}
	return "Name | Publisher | Category | Keywords | Audience"
}

// typeLabel is the human-readable name used in prompts
func typeLabel(t EntryType) string {
	switch t {
	case TypeWebsite:
		return "website"
	case TypeTVNetwork:
		return "TV network"
	case TypeStreaming:
		return "streaming platform"
	}
	return "media"
}

func truncate(s string, budget int) string {
	s = strings.TrimSpace(s)
	if len(s) > budget {
		return s[:budget]
	}
	return s
}
