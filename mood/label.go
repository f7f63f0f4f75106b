package mood

import (
	"fmt"
)

// Label is one of the fixed emotional classes assigned to musical material.
// The numeric order is the contract with the classifier's output columns and
// must never be rearranged.
type Label int

const (
	Chill Label = iota
	Energetic
	Suspenseful
	Uplifting
	Ominous
	Romantic
	Gritty
	Dreamy
	Frantic
	Focused

	// NumLabels is the size of the classifier's output tensor
	NumLabels = 10
)

var labelNames = [NumLabels]string{
	"chill", "energetic", "suspenseful", "uplifting", "ominous",
	"romantic", "gritty", "dreamy", "frantic", "focused",
}

func (l Label) String() string {
	if l < 0 || l >= NumLabels {
		return "unknown"
	}
	return labelNames[l]
}

// Valid reports whether the label is a member of the fixed set
func (l Label) Valid() bool {
	return l >= 0 && l < NumLabels
}

// ParseLabel converts a mood name to its Label
func ParseLabel(name string) (Label, error) {
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mood label %q", name)
}

// Labels returns all labels in classifier column order
func Labels() [NumLabels]Label {
	var all [NumLabels]Label
	for i := range all {
		all[i] = Label(i)
	}
	return all
}
