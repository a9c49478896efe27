package cli

import "errors"

// ErrInvalidOption is spec.md §7's INVALID_OPTION: a bad flag name or
// value. It is reported to stderr with usage text and exits non-zero,
// mirroring the teacher's os.Exit(1) pattern in cli.go generalized to
// distinguish usage errors (exit 2) from runtime failures (exit 1).
var ErrInvalidOption = errors.New("cli: invalid option")

// exitCode maps an error met by RunCLI to the process exit code spec.md
// §7 calls for: usage errors get 2, everything else (IO_ERROR,
// EMPTY_FOREST, and any other fatal runtime error) gets 1. OUT_OF_MEMORY
// has no Go-level signal to catch — a failing allocation panics the
// runtime before any error value exists — so it is not represented here.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrInvalidOption) {
		return 2
	}
	return 1
}
