package combo

import (
	"fmt"
	"strings"
)

// Category is one of the three selectable partitions of labels
type Category string

const (
	Genre      Category = "Genre"
	Instrument Category = "Instrument"
	Mood       Category = "Mood"
)

// Label is the human-readable name of a button
type Label string

const (
	Pop     Label = "Pop"
	Country Label = "Country"
	Jazz    Label = "Jazz"
	Classic Label = "Classic"

	Saxophone Label = "Saxophone"
	Piano     Label = "Piano"
	Guitar    Label = "Guitar"
	Drums     Label = "Drums"

	Jolly       Label = "Jolly"
	Gloomy      Label = "Gloomy"
	Suspenseful Label = "Suspenseful"
	Calm        Label = "Calm"

	Stop     Label = "Stop"
	Generate Label = "Generate"
)

// Identifier names one physical input. Identifiers are the lower-case labels
// so they survive viper's key normalization in the pins map.
type Identifier string

// Categories in the order missing selections are filled
var Categories = []Category{Genre, Instrument, Mood}

var members = map[Category][]Label{
	Genre:      {Pop, Jazz, Country, Classic},
	Instrument: {Saxophone, Piano, Guitar, Drums},
	Mood:       {Gloomy, Jolly, Suspenseful, Calm},
}

// scanOrder is the order the poll loop samples inputs in
var scanOrder = []Label{
	Pop, Country, Jazz, Classic,
	Saxophone, Piano, Guitar, Drums,
	Jolly, Gloomy, Suspenseful, Calm,
	Stop, Generate,
}

var categoryOf = func() map[Label]Category {
	m := make(map[Label]Category)
	for cat, labels := range members {
		for _, l := range labels {
			m[l] = cat
		}
	}
	return m
}()

// Members returns the four labels of a category
func (c Category) Members() []Label {
	out := make([]Label, len(members[c]))
	copy(out, members[c])
	return out
}

// Category returns the category a label belongs to. Commands have none.
func (l Label) Category() (Category, bool) {
	c, ok := categoryOf[l]
	return c, ok
}

// IsCommand reports whether the label is Stop or Generate
func (l Label) IsCommand() bool {
	return l == Stop || l == Generate
}

// Identifier returns the input identifier bound to the label
func (l Label) Identifier() Identifier {
	return Identifier(strings.ToLower(string(l)))
}

// Identifiers returns all 14 identifiers in scan order
func Identifiers() []Identifier {
	ids := make([]Identifier, len(scanOrder))
	for i, l := range scanOrder {
		ids[i] = l.Identifier()
	}
	return ids
}

// LabelFor resolves an identifier to its label
func LabelFor(id Identifier) (Label, bool) {
	for _, l := range scanOrder {
		if l.Identifier() == id {
			return l, true
		}
	}
	return "", false
}

// ParseLabel accepts a label or identifier in any case
func ParseLabel(s string) (Label, error) {
	l, ok := LabelFor(Identifier(strings.ToLower(strings.TrimSpace(s))))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return l, nil
}
