package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2/T, the canonical form
	alt3    string   // ISO 639-2/B where it differs (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "castilian"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch", "flemish"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func clean(code string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(code, "\u0000", "")))
}

func lookup(code string) *entry {
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize converts an ISO 639-1, ISO 639-2 (B or T), BCP 47 tag, or English
// word form to its canonical ISO 639-2/T code. Empty input and "und" return
// the empty string (absent). Codes nobody recognises are returned lowercased
// so that equal spellings still compare equal.
func Normalize(code string) string {
	code = clean(code)
	if code == "" || code == "und" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	primary := code
	if idx := strings.IndexAny(primary, "-_"); idx > 0 {
		primary = primary[:idx]
		if e := lookup(primary); e != nil {
			return e.code3
		}
	}
	if base, err := xlanguage.ParseBase(primary); err == nil {
		if iso3 := base.ISO3(); iso3 != "" && iso3 != "und" {
			return iso3
		}
	}
	return code
}

// Equal reports whether two language values name the same language.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	cleaned := clean(code)
	if cleaned == "" || cleaned == "und" {
		return "Unknown"
	}
	if e := lookup(cleaned); e != nil {
		return e.display
	}
	if base, err := xlanguage.ParseBase(cleaned); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(cleaned)
}

// ExtractFromTags returns the normalized language from ffprobe stream tags.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		if value, ok := tags[key]; ok {
			if normalized := Normalize(value); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

// NormalizeList deduplicates and normalizes a list of language codes. The
// keyword "all" is preserved and collapses the list.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		cleaned := clean(value)
		if cleaned == "" {
			continue
		}
		if cleaned == "all" {
			return []string{"all"}
		}
		code := Normalize(cleaned)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	return normalized
}
