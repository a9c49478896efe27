// Package cli wires together the generator's components — colorcube,
// colorspace, kdforest, frontier, passsched, pngenc — behind the flag
// table of spec.md §6. It generalizes the teacher's single positional
// image-path argument and keeps the teacher's manual os.Args parsing
// idiom rather than pulling in the flag package or a cobra-style
// framework (pkg/cli/cli.go parses os.Args by hand).
package cli

import (
	"fmt"
	"strings"
)

// ModeSpec describes one CLI enum flag: its name, allowed values, and
// help text. It generalizes the teacher's stdimg.CommandSpec /
// cli.ValidationRule pattern (pkg/cli/meta.go, pkg/stdimg/commands.go)
// from "one validated image-editing command" to "one validated mode
// flag". The table drives -help text, the interactive picker's choices
// and the allowed-value list in parseArgs's error messages; parseArgs
// itself accepts a value when the owning package's Parse function does.
type ModeSpec struct {
	Flag    string
	Help    string
	Values  []string
	Default string
}

// Modes is the authoritative registry of the generator's enum-valued
// flags (order, selection, color-space). -help text, the picker and
// parseArgs's error messages read from this table.
var Modes = []ModeSpec{
	{
		Flag:    "order",
		Help:    "color enumeration order",
		Values:  []string{"hue-sort", "random", "morton", "hilbert", "sequential"},
		Default: "hue-sort",
	},
	{
		Flag:    "selection",
		Help:    "open-pixel frontier representation",
		Values:  []string{"min", "mean"},
		Default: "min",
	},
	{
		Flag:    "color-space",
		Help:    "perceptual space used for nearest-neighbor distance",
		Values:  []string{"rgb", "lab", "luv"},
		Default: "lab",
	},
}

// Lookup returns the ModeSpec for flag, if registered.
func Lookup(flag string) (ModeSpec, bool) {
	for _, m := range Modes {
		if m.Flag == flag {
			return m, true
		}
	}
	return ModeSpec{}, false
}

// Validate reports whether value is one of m's allowed Values.
func (m ModeSpec) Validate(value string) bool {
	for _, v := range m.Values {
		if v == value {
			return true
		}
	}
	return false
}

// helpLine renders m as one -help line, e.g.
// "  -order        color enumeration order (hue-sort, random, morton, hilbert, sequential) [default hue-sort]"
func (m ModeSpec) helpLine() string {
	return fmt.Sprintf("  -%-12s %s (%s) [default %s]", m.Flag, m.Help, strings.Join(m.Values, ", "), m.Default)
}
