package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// pickMode resolves a value for spec's ModeSpec m: try fzf first (the
// teacher's SelectCommandWithFzfStd pattern in pkg/cli/fzf.go), and if
// it's unavailable or the user selects nothing, fall back to a numbered
// textual list read from the stdin reader, same as RunCLI's fallback path
// in the teacher's cli.go.
func pickMode(m ModeSpec, in *bufio.Reader) (string, error) {
	if v, err := selectWithFzf(m); err == nil && v != "" {
		return v, nil
	}

	fmt.Printf("Select %s:\n", m.Flag)
	for i, v := range m.Values {
		fmt.Printf("  %d) %s\n", i+1, v)
	}
	fmt.Printf("Enter number (default %s): ", m.Default)

	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return m.Default, nil
	}
	if idx, err := strconv.Atoi(line); err == nil {
		if idx < 1 || idx > len(m.Values) {
			return "", fmt.Errorf("%w: %s selection %d out of range", ErrInvalidOption, m.Flag, idx)
		}
		return m.Values[idx-1], nil
	}
	if m.Validate(line) {
		return line, nil
	}
	return "", fmt.Errorf("%w: %s selection %q not recognized", ErrInvalidOption, m.Flag, line)
}

// selectWithFzf shells out to fzf with one "value: help" line per allowed
// value, exactly as SelectCommandWithFzfStd feeds fzf "name: description"
// lines.
func selectWithFzf(m ModeSpec) (string, error) {
	if _, err := exec.LookPath("fzf"); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, v := range m.Values {
		fmt.Fprintf(&b, "%s: %s\n", v, m.Help)
	}
	cmd := exec.Command("fzf", "--prompt", m.Flag+"> ")
	cmd.Stdin = strings.NewReader(b.String())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	selection := strings.TrimSpace(out.String())
	parts := strings.SplitN(selection, ":", 2)
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return "", fmt.Errorf("no selection")
	}
	return strings.TrimSpace(parts[0]), nil
}
