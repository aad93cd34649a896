package macros

import "strings"

// Card is one labeled value in a nutrition breakdown.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Breakdown is the interpretation of an analysis result. Exactly one of
// Cards or Text is meaningful, selected by IsText.
type Breakdown struct {
	Cards  []Card
	Text   string
	IsText bool
}

// Parse interprets the analyzer's text output.
//
// Text containing a comma is split into segments, each read as
// "Label: value" on its first colon. Blank segments are kept as empty cards.
// Text without a comma is returned verbatim.
func Parse(text string) Breakdown {
	if !strings.Contains(text, ",") {
		return Breakdown{Text: text, IsText: true}
	}

	segments := strings.Split(text, ",")
	cards := make([]Card, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		label, value, found := strings.Cut(segment, ":")
		if !found {
			cards = append(cards, Card{Label: segment})
			continue
		}
		cards = append(cards, Card{
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}

	return Breakdown{Cards: cards}
}
