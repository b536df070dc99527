// Package terminal reports the capabilities of the attached terminal.
//
// The distributor CLI prints digests and cache paths on stdout for scripts
// to consume, so capability checks gate only the decorations: colored
// status marks and pull spinners.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY     bool
	NoColor   bool
	ForceFlag bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	// Check NO_COLOR environment variable (https://no-color.org/)
	_, noColor := os.LookupEnv("NO_COLOR")

	return &Info{
		IsTTY:   term.IsTerminal(int(os.Stdout.Fd())),
		NoColor: noColor,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// SpinnersEnabled returns true if pull progress spinners should be used.
// A spinner over a pipe would corrupt digest output, so non-TTY runs never
// get one.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}
