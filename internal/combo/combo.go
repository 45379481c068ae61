package combo

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// ClipExtension is appended to every clip reference
const ClipExtension = ".mp3"

var (
	ErrCategoryTaken = errors.New("category already selected")
	ErrNotSelectable = errors.New("label is not selectable")
	ErrUnknownLabel  = errors.New("unknown label")
)

// Combo is the in-progress selection: at most one label per category, in
// the order they were accepted.
type Combo struct {
	labels []Label
	rng    *rand.Rand
}

// New creates an empty combo. rng drives the random fill; nil uses a
// randomly seeded source.
func New(rng *rand.Rand) *Combo {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Combo{rng: rng}
}

// Accept appends label unless its category is already represented
func (c *Combo) Accept(label Label) error {
	cat, ok := label.Category()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSelectable, label)
	}
	if c.Has(cat) {
		return fmt.Errorf("%w: %s (%s)", ErrCategoryTaken, cat, label)
	}
	c.labels = append(c.labels, label)
	return nil
}

// Has reports whether the combo holds a label from cat
func (c *Combo) Has(cat Category) bool {
	for _, l := range c.labels {
		if lc, _ := l.Category(); lc == cat {
			return true
		}
	}
	return false
}

// EnsureFull adds a random member for every missing category, checking
// Genre, Instrument, Mood in that order, and returns what it added.
func (c *Combo) EnsureFull() []Label {
	var added []Label
	for _, cat := range Categories {
		if c.Has(cat) {
			continue
		}
		choices := members[cat]
		pick := choices[c.rng.IntN(len(choices))]
		c.labels = append(c.labels, pick)
		added = append(added, pick)
	}
	return added
}

// Full reports whether every category is represented
func (c *Combo) Full() bool {
	return len(c.labels) == len(Categories)
}

// ClipReference derives the clip filename from the current labels
func (c *Combo) ClipReference() string {
	return ClipName(c.labels)
}

// Clear empties the combo
func (c *Combo) Clear() {
	c.labels = c.labels[:0]
}

// Labels returns a copy of the selection in insertion order
func (c *Combo) Labels() []Label {
	return slices.Clone(c.labels)
}

func (c *Combo) Len() int {
	return len(c.labels)
}

func (c *Combo) String() string {
	names := make([]string, len(c.labels))
	for i, l := range c.labels {
		names[i] = string(l)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// ClipName sorts labels lexicographically, joins them with "_" and adds the
// clip extension.
func ClipName(labels []Label) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	slices.Sort(names)
	return strings.Join(names, "_") + ClipExtension
}

// AllClipNames lists the 64 clip filenames a complete clip library holds
func AllClipNames() []string {
	var names []string
	for _, g := range members[Genre] {
		for _, i := range members[Instrument] {
			for _, m := range members[Mood] {
				names = append(names, ClipName([]Label{g, i, m}))
			}
		}
	}
	slices.Sort(names)
	return names
}
