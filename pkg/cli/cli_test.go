package cli

import (
	"errors"
	"testing"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, modeSet, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs(nil): %v", err)
	}
	if cfg.BitDepth != 24 || cfg.Output != "kd-forest.png" || cfg.Seed != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(modeSet) != 0 {
		t.Fatalf("expected no modes marked explicit, got %v", modeSet)
	}
}

func TestParseArgsValidFlags(t *testing.T) {
	cfg, modeSet, err := parseArgs([]string{
		"-bit-depth", "12",
		"-order", "morton",
		"-selection", "mean",
		"-color-space", "rgb",
		"-seed", "42",
		"-output", "out.png",
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.BitDepth != 12 {
		t.Errorf("BitDepth = %d, want 12", cfg.BitDepth)
	}
	if cfg.Order.String() != "morton" {
		t.Errorf("Order = %v, want morton", cfg.Order)
	}
	if cfg.Selection.String() != "mean" {
		t.Errorf("Selection = %v, want mean", cfg.Selection)
	}
	if cfg.Space.String() != "rgb" {
		t.Errorf("Space = %v, want rgb", cfg.Space)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Output != "out.png" {
		t.Errorf("Output = %q, want out.png", cfg.Output)
	}
	for _, flag := range []string{"order", "selection", "color-space"} {
		if !modeSet[flag] {
			t.Errorf("modeSet[%q] = false, want true", flag)
		}
	}
}

func TestParseArgsAnimateDefaultOutputIsFrames(t *testing.T) {
	cfg, _, err := parseArgs([]string{"-animate"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Output != "frames" {
		t.Errorf("Output = %q, want frames", cfg.Output)
	}
}

func TestParseArgsAnimateRespectsExplicitOutput(t *testing.T) {
	cfg, _, err := parseArgs([]string{"-animate", "-output", "myframes"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Output != "myframes" {
		t.Errorf("Output = %q, want myframes", cfg.Output)
	}
}

func TestParseArgsHelpShortCircuits(t *testing.T) {
	cfg, _, err := parseArgs([]string{"-bit-depth", "bogus", "-help"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !cfg.Help {
		t.Fatal("Help = false, want true")
	}
}

func TestParseArgsInvalidCases(t *testing.T) {
	cases := [][]string{
		{"-bit-depth", "1"},
		{"-bit-depth", "25"},
		{"-bit-depth", "nope"},
		{"-order", "nonsense"},
		{"-selection", "nonsense"},
		{"-color-space", "nonsense"},
		{"-seed", "-1"},
		{"-unknown-flag"},
		{"-output"},
	}
	for _, args := range cases {
		_, _, err := parseArgs(args)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("parseArgs(%v): err = %v, want ErrInvalidOption", args, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	if c := exitCode(nil); c != 0 {
		t.Errorf("exitCode(nil) = %d, want 0", c)
	}
	if c := exitCode(ErrInvalidOption); c != 2 {
		t.Errorf("exitCode(ErrInvalidOption) = %d, want 2", c)
	}
	if c := exitCode(errors.New("boom")); c != 1 {
		t.Errorf("exitCode(other) = %d, want 1", c)
	}
}

func TestContainsFlag(t *testing.T) {
	if !containsFlag([]string{"-seed", "3"}, "-seed") {
		t.Fatal("expected -seed to be found")
	}
	if containsFlag([]string{"-seed", "3"}, "-output") {
		t.Fatal("did not expect -output to be found")
	}
}

func TestPrependIfAbsentSkipsWhenFlagAlreadyPresent(t *testing.T) {
	t.Setenv("KDFOREST_TEST_FLAG", "99")
	got := prependIfAbsent(nil, []string{"-seed", "1"}, "-seed", "KDFOREST_TEST_FLAG")
	if len(got) != 0 {
		t.Fatalf("expected no prefix when flag already present, got %v", got)
	}
}

func TestPrependIfAbsentAddsFromEnv(t *testing.T) {
	t.Setenv("KDFOREST_TEST_FLAG", "99")
	got := prependIfAbsent(nil, []string{}, "-seed", "KDFOREST_TEST_FLAG")
	want := []string{"-seed", "99"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("prependIfAbsent = %v, want %v", got, want)
	}
}
