package retrieval

import (
	"fmt"

	"github.com/jurisearch/jurisearch/engine/domain"
)

const decisionURLTemplate = "https://www.courdecassation.fr/decision/%s"

// Decision is the normalized result record handed to display layers. Every
// scalar field is guaranteed non-empty: either the source value or the
// domain.NotProvided sentinel. Display code never branches on missing keys.
type Decision struct {
	Score        float32       `json:"score"`
	ID           string        `json:"decision_id"`
	Number       string        `json:"number"`
	ECLI         string        `json:"ecli"`
	Jurisdiction string        `json:"jurisdiction"`
	Chamber      string        `json:"chamber"`
	Formation    string        `json:"formation"`
	Type         string        `json:"type"`
	Date         string        `json:"decision_date"`
	Location     string        `json:"localisation"`
	Solution     string        `json:"solution"`
	Theme        string        `json:"theme"`
	Themes       string        `json:"themes"`
	Publication  string        `json:"publication"`
	Summary      string        `json:"summary"`
	Zones        string        `json:"zones"`
	Files        string        `json:"files"`
	Visa         []string      `json:"visa"`
	Related      []RelatedCase `json:"rapprochements"`
}

// RelatedCase is one "rapprochement": a free-text reference to a nearby
// decision, with the case number extracted from its title when one is
// recognizable. CaseNumber is empty when no pattern matched.
type RelatedCase struct {
	Title      string `json:"title"`
	CaseNumber string `json:"case_number,omitempty"`
}

// URL returns the canonical Cour de cassation lookup URL for this decision.
// The second return is false when the identifier is absent; callers render
// no link in that case rather than a broken one.
func (d Decision) URL() (string, bool) {
	return DecisionURL(d.ID)
}

// DecisionURL builds the lookup URL for a decision identifier.
func DecisionURL(id string) (string, bool) {
	if id == "" || id == domain.NotProvided {
		return "", false
	}
	return fmt.Sprintf(decisionURLTemplate, id), true
}
