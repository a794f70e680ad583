// Package ansi wraps text in ANSI SGR escape sequences.
package ansi

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/baxromumarov/taskkit/env"
)

const reset = "\x1b[0m"

// Color styles a string.
type Color func(text string) string

// New returns a Color for an SGR code. The style is closed before and
// reopened after every newline so that each line is self-contained.
func New(code string) Color {
	open := "\x1b[" + code + "m"
	return func(text string) string {
		return open + strings.ReplaceAll(text, "\n", reset+"\n"+open) + reset
	}
}

var (
	Bold    = New("1")
	Red     = New("31")
	Green   = New("32")
	Yellow  = New("33")
	Blue    = New("34")
	Magenta = New("35")
	Cyan    = New("36")
	Gray    = New("90")
)

// Palette applies colors only when enabled.
type Palette struct {
	Enabled bool
}

// Detect enables colors when f is a terminal and NO_COLOR is unset or empty.
func Detect(f *os.File, vars *env.Reader) Palette {
	if v, ok := vars.OptionalString("NO_COLOR"); ok && v != "" {
		return Palette{}
	}
	fd := f.Fd()
	return Palette{Enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

// Paint styles text with c, or returns it unchanged.
func (p Palette) Paint(c Color, text string) string {
	if !p.Enabled || c == nil {
		return text
	}
	return c(text)
}
