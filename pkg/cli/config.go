package cli

import (
	"fmt"
	"strconv"

	"github.com/kdforest/kdforest/pkg/colorcube"
	"github.com/kdforest/kdforest/pkg/colorspace"
	"github.com/kdforest/kdforest/pkg/frontier"
)

// Config holds the parsed, validated flag table of spec.md §6.
type Config struct {
	BitDepth    int
	Order       colorcube.Order
	Selection   frontier.Selection
	Space       colorspace.Space
	Animate     bool
	Output      string
	Seed        uint32
	CheckUpdate bool
	Preview     bool
	Pick        bool
	Help        bool
}

// defaultConfig mirrors spec.md §6's default column.
func defaultConfig() Config {
	order, _ := colorcube.Parse("hue-sort")
	selection, _ := frontier.Parse("min")
	space, _ := colorspace.Parse("lab")
	return Config{
		BitDepth:  24,
		Order:     order,
		Selection: selection,
		Space:     space,
		Animate:   false,
		Output:    "kd-forest.png",
		Seed:      0,
	}
}

// parseArgs walks args by hand, Fepozopo-timp's os.Args idiom generalized
// from one positional image path to the full flag table. Every flag takes
// the form -name value except the booleans, which are bare switches. A
// help flag anywhere in args wins over every other flag, valid or not.
// modeSet reports which of the three ModeSpec-governed flags the caller
// supplied explicitly, so RunCLI knows which ones are still eligible for
// the interactive picker.
func parseArgs(args []string) (cfg Config, modeSet map[string]bool, err error) {
	cfg = defaultConfig()
	modeSet = map[string]bool{}
	animateSet := false

	for _, arg := range args {
		if arg == "-help" || arg == "--help" || arg == "-h" {
			cfg.Help = true
			return cfg, modeSet, nil
		}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-help", "--help", "-h":
			cfg.Help = true
			return cfg, modeSet, nil
		case "-animate":
			cfg.Animate = true
			animateSet = true
			continue
		case "-check-update":
			cfg.CheckUpdate = true
			continue
		case "-preview":
			cfg.Preview = true
			continue
		case "-pick":
			cfg.Pick = true
			continue
		}

		val, ok := nextValue(args, &i)
		if !ok {
			return cfg, modeSet, fmt.Errorf("%w: flag %s requires a value", ErrInvalidOption, arg)
		}

		switch arg {
		case "-bit-depth":
			b, err := strconv.Atoi(val)
			if err != nil || b < 2 || b > 24 {
				return cfg, modeSet, fmt.Errorf("%w: -bit-depth must be an integer in [2,24], got %q", ErrInvalidOption, val)
			}
			cfg.BitDepth = b
		case "-order":
			o, ok := colorcube.Parse(val)
			if !ok {
				return cfg, modeSet, fmt.Errorf("%w: -order %q, want one of %v", ErrInvalidOption, val, mustLookup("order").Values)
			}
			cfg.Order = o
			modeSet["order"] = true
		case "-selection":
			s, ok := frontier.Parse(val)
			if !ok {
				return cfg, modeSet, fmt.Errorf("%w: -selection %q, want one of %v", ErrInvalidOption, val, mustLookup("selection").Values)
			}
			cfg.Selection = s
			modeSet["selection"] = true
		case "-color-space":
			s, ok := colorspace.Parse(val)
			if !ok {
				return cfg, modeSet, fmt.Errorf("%w: -color-space %q, want one of %v", ErrInvalidOption, val, mustLookup("color-space").Values)
			}
			cfg.Space = s
			modeSet["color-space"] = true
		case "-output":
			cfg.Output = val
		case "-seed":
			seed, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return cfg, modeSet, fmt.Errorf("%w: -seed must be a 32-bit unsigned integer, got %q", ErrInvalidOption, val)
			}
			cfg.Seed = uint32(seed)
		default:
			return cfg, modeSet, fmt.Errorf("%w: unknown flag %s", ErrInvalidOption, arg)
		}
	}

	if animateSet && cfg.Output == "kd-forest.png" {
		cfg.Output = "frames"
	}
	return cfg, modeSet, nil
}

func nextValue(args []string, i *int) (string, bool) {
	if *i+1 >= len(args) {
		return "", false
	}
	*i++
	return args[*i], true
}

func mustLookup(flag string) ModeSpec {
	m, _ := Lookup(flag)
	return m
}
