package tracks

import (
	"slices"
	"strings"

	"recoder/internal/language"
	"recoder/internal/media/streams"
)

// AllLanguages is the policy keyword that disables language filtering.
const AllLanguages = "all"

// Policy is the language selection policy for one stream kind.
type Policy struct {
	Languages             []string
	FirstPerLanguage      bool
	PreferHighestChannels bool
}

// Normalize canonicalizes language codes and collapses the "all" keyword.
func (p Policy) Normalize() Policy {
	p.Languages = language.NormalizeList(p.Languages)
	return p
}

// All reports whether the policy keeps every language.
func (p Policy) All() bool {
	if len(p.Languages) == 0 {
		return true
	}
	for _, lang := range p.Languages {
		if strings.EqualFold(strings.TrimSpace(lang), AllLanguages) {
			return true
		}
	}
	return false
}

// Selection lists the chosen ordinals in ascending order. FellBack is set
// when the language filter matched nothing and the unfiltered candidates
// were kept instead.
type Selection struct {
	Ordinals []int
	FellBack bool
}

// Select applies policy to records of a single kind. It never mutates its
// inputs and never fails: a language filter that removes every candidate
// falls back to the unfiltered set.
func Select(records []streams.Record, policy Policy) Selection {
	if len(records) == 0 {
		return Selection{}
	}

	candidates := make([]streams.Record, len(records))
	copy(candidates, records)

	if policy.PreferHighestChannels {
		candidates = highestChannelsPerLanguage(candidates)
	}

	var selection Selection
	if !policy.All() {
		filtered := filterLanguages(candidates, policy.Languages)
		if len(filtered) == 0 {
			selection.FellBack = true
		} else {
			candidates = filtered
		}
	}

	if policy.FirstPerLanguage {
		candidates = firstPerLanguage(candidates)
	}

	selection.Ordinals = make([]int, 0, len(candidates))
	for _, record := range candidates {
		selection.Ordinals = append(selection.Ordinals, record.Ordinal)
	}
	slices.Sort(selection.Ordinals)
	return selection
}

// highestChannelsPerLanguage keeps one record per language: the one with the
// most channels, ties broken by the lowest ordinal.
func highestChannelsPerLanguage(records []streams.Record) []streams.Record {
	best := make(map[string]streams.Record, len(records))
	for _, record := range records {
		key := language.Normalize(record.Language)
		current, ok := best[key]
		if !ok || record.Channels > current.Channels ||
			(record.Channels == current.Channels && record.Ordinal < current.Ordinal) {
			best[key] = record
		}
	}
	out := make([]streams.Record, 0, len(best))
	for _, record := range records {
		if chosen := best[language.Normalize(record.Language)]; chosen.Ordinal == record.Ordinal {
			out = append(out, record)
		}
	}
	return out
}

func filterLanguages(records []streams.Record, languages []string) []streams.Record {
	wanted := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		if normalized := language.Normalize(lang); normalized != "" {
			wanted[normalized] = struct{}{}
		}
	}
	out := make([]streams.Record, 0, len(records))
	for _, record := range records {
		if _, ok := wanted[language.Normalize(record.Language)]; ok {
			out = append(out, record)
		}
	}
	return out
}

// firstPerLanguage keeps the lowest ordinal per distinct language. Records
// without a language form their own group.
func firstPerLanguage(records []streams.Record) []streams.Record {
	first := make(map[string]int, len(records))
	for _, record := range records {
		key := language.Normalize(record.Language)
		if ordinal, ok := first[key]; !ok || record.Ordinal < ordinal {
			first[key] = record.Ordinal
		}
	}
	out := make([]streams.Record, 0, len(first))
	for _, record := range records {
		if first[language.Normalize(record.Language)] == record.Ordinal {
			out = append(out, record)
		}
	}
	return out
}
