package retrieval

import (
	"testing"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/engine/semantic"
)

func TestFormatThemes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"list", []any{"Contrat de travail", "Licenciement"}, "Contrat de travail, Licenciement"},
		{"string slice", []string{"A", "B"}, "A, B"},
		{"single element", []any{"A"}, "A"},
		{"empty list", []any{}, domain.NotProvided},
		{"nil", nil, domain.NotProvided},
		{"scalar string", "Sécurité sociale", "Sécurité sociale"},
		{"empty string", "", domain.NotProvided},
		{"number", int64(3), "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatThemes(tc.in); got != tc.want {
				t.Errorf("FormatThemes(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractCaseNumber(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
		found bool
	}{
		{"pourvoi pattern", "Soc., 25 novembre 2015, pourvoi n° 14-24.444", "14-24.444", true},
		{"pourvoi uppercase", "POURVOI N° 12-34.567", "12-34.567", true},
		{"generic numero", "Civ. 2e, arrêt n° 19-20.123, publié", "19-20.123", true},
		{"bare number", "voir 21-10.006 en ce sens", "21-10.006", true},
		{"no match", "no numbers here", "", false},
		{"empty title", "", "", false},
		{"digits but wrong shape", "affaire 2021-123", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractCaseNumber(tc.title)
			if got != tc.want || found != tc.found {
				t.Errorf("ExtractCaseNumber(%q) = (%q, %v), want (%q, %v)",
					tc.title, got, found, tc.want, tc.found)
			}
		})
	}
}

// The pourvoi pattern must win even when a second bare number appears
// earlier in the string.
func TestExtractCaseNumber_Priority(t *testing.T) {
	title := "cf. 11-22.333 et pourvoi n° 14-24.444"
	got, found := ExtractCaseNumber(title)
	if !found || got != "14-24.444" {
		t.Fatalf("got (%q, %v), want the pourvoi match to win", got, found)
	}
}

func TestDecisionURL(t *testing.T) {
	if _, ok := DecisionURL(""); ok {
		t.Error("empty id must yield no URL")
	}
	if _, ok := DecisionURL(domain.NotProvided); ok {
		t.Error("sentinel id must yield no URL")
	}
	url, ok := DecisionURL("ABC123")
	if !ok || url != "https://www.courdecassation.fr/decision/ABC123" {
		t.Errorf("got (%q, %v)", url, ok)
	}
}

func TestNormalize_AllFieldsDefaulted(t *testing.T) {
	d := Normalize(semantic.Hit{ID: "p1", Score: 0.5, Payload: map[string]any{}})
	for name, got := range map[string]string{
		"ID": d.ID, "Number": d.Number, "ECLI": d.ECLI,
		"Jurisdiction": d.Jurisdiction, "Chamber": d.Chamber,
		"Formation": d.Formation, "Type": d.Type, "Date": d.Date,
		"Location": d.Location, "Solution": d.Solution, "Theme": d.Theme,
		"Themes": d.Themes, "Publication": d.Publication,
		"Summary": d.Summary, "Zones": d.Zones, "Files": d.Files,
	} {
		if got != domain.NotProvided {
			t.Errorf("%s = %q, want sentinel", name, got)
		}
	}
	if len(d.Visa) != 0 || len(d.Related) != 0 {
		t.Errorf("list fields should be empty: visa=%v related=%v", d.Visa, d.Related)
	}
	if _, ok := d.URL(); ok {
		t.Error("defaulted record must have no URL")
	}
}

func TestNormalize_NilPayload(t *testing.T) {
	d := Normalize(semantic.Hit{ID: "p1", Score: 0.1})
	if d.Chamber != domain.NotProvided {
		t.Errorf("nil payload should default every field, got %q", d.Chamber)
	}
}

func TestNormalize_FullPayload(t *testing.T) {
	hit := semantic.Hit{
		ID:    "p1",
		Score: 0.9134,
		Payload: map[string]any{
			"unique_ID":     "JURITEXT000047023741",
			"number":        "21-12.345",
			"ecli":          "ECLI:FR:CCASS:2023:SO00123",
			"jurisdiction":  "cc",
			"chamber":       "Chambre sociale",
			"formation":     "Formation de section",
			"type":          "arret",
			"decision_date": "2023-01-18",
			"localisation":  "Paris",
			"solution":      "Cassation partielle",
			"theme":         "Travail",
			"themes":        []any{"Contrat de travail", "Sécurité"},
			"publication":   []any{"b"},
			"summary":       "L'employeur est tenu d'une obligation de sécurité.",
			"zones":         []any{"motivations"},
			"visa": []any{
				map[string]any{"title": "Code du travail, article L. 4121-1"},
				"Code civil, article 1231-1",
			},
			"rapprochements": []any{
				map[string]any{"title": "Soc., 25 novembre 2015, pourvoi n° 14-24.444"},
				map[string]any{"title": "sans numéro identifiable"},
				"Soc., 5 avril 2019, n° 18-17.442",
			},
			"files": []any{"decision.pdf"},
		},
	}
	d := Normalize(hit)

	if d.Score != 0.9134 {
		t.Errorf("score: %v", d.Score)
	}
	if d.ID != "JURITEXT000047023741" || d.Number != "21-12.345" {
		t.Errorf("id/number: %q %q", d.ID, d.Number)
	}
	if d.Themes != "Contrat de travail, Sécurité" {
		t.Errorf("themes: %q", d.Themes)
	}
	if d.Publication != "b" || d.Zones != "motivations" || d.Files != "decision.pdf" {
		t.Errorf("list fields: %q %q %q", d.Publication, d.Zones, d.Files)
	}
	if len(d.Visa) != 2 || d.Visa[0] != "Code du travail, article L. 4121-1" || d.Visa[1] != "Code civil, article 1231-1" {
		t.Errorf("visa: %v", d.Visa)
	}
	if len(d.Related) != 3 {
		t.Fatalf("related: %v", d.Related)
	}
	if d.Related[0].CaseNumber != "14-24.444" {
		t.Errorf("related[0]: %+v", d.Related[0])
	}
	if d.Related[1].CaseNumber != "" {
		t.Errorf("related[1] should carry no number: %+v", d.Related[1])
	}
	if d.Related[2].Title != "Soc., 5 avril 2019, n° 18-17.442" || d.Related[2].CaseNumber != "18-17.442" {
		t.Errorf("related[2]: %+v", d.Related[2])
	}

	url, ok := d.URL()
	if !ok || url != "https://www.courdecassation.fr/decision/JURITEXT000047023741" {
		t.Errorf("url: (%q, %v)", url, ok)
	}
}

func TestNormalize_HeterogeneousTypes(t *testing.T) {
	hit := semantic.Hit{
		ID:    "p1",
		Score: 0.2,
		Payload: map[string]any{
			"number":         int64(12345),
			"themes":         "un seul thème",
			"rapprochements": "pas une liste",
			"visa":           map[string]any{"title": "pas une liste"},
			"chamber":        nil,
		},
	}
	d := Normalize(hit)
	if d.Number != "12345" {
		t.Errorf("non-string scalar should be stringified: %q", d.Number)
	}
	if d.Themes != "un seul thème" {
		t.Errorf("scalar themes used as-is: %q", d.Themes)
	}
	if d.Related != nil {
		t.Errorf("non-list rapprochements drop to empty: %v", d.Related)
	}
	if d.Visa != nil {
		t.Errorf("non-list visa drops to empty: %v", d.Visa)
	}
	if d.Chamber != domain.NotProvided {
		t.Errorf("nil value defaults to sentinel: %q", d.Chamber)
	}
}

func TestNormalize_RelatedTitleFallback(t *testing.T) {
	hit := semantic.Hit{
		Payload: map[string]any{
			"rapprochements": []any{map[string]any{"url": "x"}},
		},
	}
	d := Normalize(hit)
	if len(d.Related) != 1 || d.Related[0].Title != "Sans titre" {
		t.Errorf("untitled rapprochement: %+v", d.Related)
	}
}
