// Package rank combines the four per-method scores into a composite,
// filters ineligible methods and orders the rest deterministically.
package rank

import (
	"fmt"
	"strings"
)

// Mode is a named weighting preset.
type Mode string

const (
	// Business favors methods that are used and tested.
	Business Mode = "business"
	// Algorithmic favors methods with substantial logic.
	Algorithmic Mode = "algorithmic"
	// Balanced weighs every dimension equally.
	Balanced Mode = "balanced"
	// Any is a general preset that keeps accessors.
	Any Mode = "any"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = Business

// Weights are the per-dimension factors of the composite score.
type Weights struct {
	Heuristic  float64 `json:"heuristic" yaml:"heuristic"`
	Complexity float64 `json:"complexity" yaml:"complexity"`
	Dependency float64 `json:"dependency" yaml:"dependency"`
	TestSignal float64 `json:"testSignal" yaml:"testSignal"`
}

type preset struct {
	weights          Weights
	excludeAccessors bool
	description      string
}

var presets = map[Mode]preset{
	Business: {
		weights:          Weights{Heuristic: 0.20, Complexity: 0.15, Dependency: 0.30, TestSignal: 0.35},
		excludeAccessors: true,
		description:      "used and tested domain logic, accessors excluded",
	},
	Algorithmic: {
		weights:          Weights{Heuristic: 0.35, Complexity: 0.35, Dependency: 0.15, TestSignal: 0.15},
		excludeAccessors: true,
		description:      "control-flow heavy methods of teachable size",
	},
	Balanced: {
		weights:          Weights{Heuristic: 0.25, Complexity: 0.25, Dependency: 0.25, TestSignal: 0.25},
		excludeAccessors: true,
		description:      "every dimension weighted equally",
	},
	Any: {
		weights:     Weights{Heuristic: 0.35, Complexity: 0.25, Dependency: 0.25, TestSignal: 0.15},
		description: "no accessor filter",
	},
}

// UnknownModeError reports a mode outside the closed set.
type UnknownModeError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode %q (valid: %s)", e.Name, strings.Join(ModeNames(), ", "))
}

// ParseMode converts a name to a Mode. Matching ignores case and
// surrounding space; an empty name is an error.
func ParseMode(name string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := presets[m]; !ok {
		return "", &UnknownModeError{Name: name}
	}
	return m, nil
}

// Modes lists every mode in presentation order.
func Modes() []Mode {
	return []Mode{Business, Algorithmic, Balanced, Any}
}

// ModeNames lists the mode names in presentation order.
func ModeNames() []string {
	modes := Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return names
}

// String implements fmt.Stringer.
func (m Mode) String() string { return string(m) }

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := presets[m]
	return ok
}

// Weights returns the preset weights; unknown modes have zero weights.
func (m Mode) Weights() Weights {
	return presets[m].weights
}

// ExcludesAccessors reports whether the mode drops getters and setters.
func (m Mode) ExcludesAccessors() bool {
	return presets[m].excludeAccessors
}

// Description is a one-line summary of the preset.
func (m Mode) Description() string {
	return presets[m].description
}

// Info describes one mode for listings.
type Info struct {
	Name              string  `json:"name" yaml:"name"`
	Description       string  `json:"description" yaml:"description"`
	Weights           Weights `json:"weights" yaml:"weights"`
	ExcludesAccessors bool    `json:"excludesAccessors" yaml:"excludesAccessors"`
}

// Describe lists every mode in presentation order.
func Describe() []Info {
	modes := Modes()
	out := make([]Info, len(modes))
	for i, m := range modes {
		out[i] = Info{
			Name:              m.String(),
			Description:       m.Description(),
			Weights:           m.Weights(),
			ExcludesAccessors: m.ExcludesAccessors(),
		}
	}
	return out
}
