package retrieval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/engine/semantic"
	"github.com/jurisearch/jurisearch/pkg/fn"
)

// Normalize maps a raw search hit into a Decision. Absent, nil, and empty
// fields routinely occur in the index and become the sentinel; nothing here
// ever fails on missing data.
func Normalize(hit semantic.Hit) Decision {
	p := hit.Payload
	return Decision{
		Score:        hit.Score,
		ID:           stringField(p, "unique_ID"),
		Number:       stringField(p, "number"),
		ECLI:         stringField(p, "ecli"),
		Jurisdiction: stringField(p, "jurisdiction"),
		Chamber:      stringField(p, "chamber"),
		Formation:    stringField(p, "formation"),
		Type:         stringField(p, "type"),
		Date:         stringField(p, "decision_date"),
		Location:     stringField(p, "localisation"),
		Solution:     stringField(p, "solution"),
		Theme:        stringField(p, "theme"),
		Themes:       FormatThemes(p["themes"]),
		Publication:  FormatThemes(p["publication"]),
		Summary:      stringField(p, "summary"),
		Zones:        FormatThemes(p["zones"]),
		Files:        FormatThemes(p["files"]),
		Visa:         visaTitles(p["visa"]),
		Related:      relatedCases(p["rapprochements"]),
	}
}

// stringField resolves one payload key to its display string, substituting
// the sentinel for absent, nil, or empty values.
func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return domain.NotProvided
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return domain.NotProvided
		}
		return s
	}
	return fmt.Sprint(v)
}

// FormatThemes renders a list-shaped field on a single line. Lists are
// joined with ", ", empty or absent values become the sentinel, and a
// scalar is used in its string form as-is.
func FormatThemes(v any) string {
	switch t := v.(type) {
	case nil:
		return domain.NotProvided
	case []any:
		if len(t) == 0 {
			return domain.NotProvided
		}
		return strings.Join(fn.Map(t, func(e any) string { return fmt.Sprint(e) }), ", ")
	case []string:
		if len(t) == 0 {
			return domain.NotProvided
		}
		return strings.Join(t, ", ")
	case string:
		if t == "" {
			return domain.NotProvided
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Case-number patterns, most specific first. The first match wins, so an
// explicit "pourvoi n°" reference beats a bare number elsewhere in the title.
var caseNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pourvoi n°\s*(\d{2}-\d{2}\.\d{3})`),
	regexp.MustCompile(`(?i)n°\s*(\d{2}-\d{2}\.\d{3})`),
	regexp.MustCompile(`(\d{2}-\d{2}\.\d{3})`),
}

// ExtractCaseNumber pulls a case-number-shaped substring out of a
// rapprochement title. The boolean is false when no pattern matches, which
// is distinct from an empty match.
func ExtractCaseNumber(title string) (string, bool) {
	for _, re := range caseNumberPatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// visaTitles extracts the cited legal-basis titles. Visa entries are
// usually {title: ...} objects but bare strings occur too; entries with no
// usable title are skipped.
func visaTitles(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	return fn.FilterMap(list, func(entry any) (string, bool) {
		switch t := entry.(type) {
		case map[string]any:
			title, ok := t["title"].(string)
			return title, ok && title != ""
		case string:
			return t, t != ""
		default:
			return "", false
		}
	})
}

// relatedCases normalizes the rapprochements list, extracting a case number
// from each title when one is present.
func relatedCases(v any) []RelatedCase {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	return fn.Map(list, func(entry any) RelatedCase {
		title := fmt.Sprint(entry)
		if m, ok := entry.(map[string]any); ok {
			if t, ok := m["title"].(string); ok && t != "" {
				title = t
			} else {
				title = "Sans titre"
			}
		}
		rc := RelatedCase{Title: title}
		if num, ok := ExtractCaseNumber(title); ok {
			rc.CaseNumber = num
		}
		return rc
	})
}
