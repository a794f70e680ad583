// Package env reads typed values from environment variables.
package env

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// ErrNotFound is returned when a required variable is unset and no
	// fallback was given.
	ErrNotFound = errors.New("env: variable not found")
	// ErrInvalid is returned when a variable is set to a value that does
	// not parse.
	ErrInvalid = errors.New("env: invalid value")
)

// Reader looks up variables in a fixed source.
type Reader struct {
	lookup func(name string) (string, bool)
}

// FromOS returns a Reader over the process environment.
func FromOS() *Reader {
	return &Reader{lookup: os.LookupEnv}
}

// FromMap returns a Reader over vars. The map is not copied.
func FromMap(vars map[string]string) *Reader {
	return &Reader{lookup: func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}}
}

// Load reads .env files into the process environment without overriding
// variables that are already set. With no arguments it loads ".env".
func Load(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		return fmt.Errorf("env: load: %w", err)
	}
	return nil
}

// ReadFiles parses .env files into a Reader without touching the process
// environment.
func ReadFiles(filenames ...string) (*Reader, error) {
	vars, err := godotenv.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("env: read: %w", err)
	}
	return FromMap(vars), nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// OptionalString returns the raw value of name and whether it is set.
func (r *Reader) OptionalString(name string) (string, bool) {
	return r.lookup(name)
}

// String returns the value of name, or fallback[0] if it is unset.
func (r *Reader) String(name string, fallback ...string) (string, error) {
	if v, ok := r.lookup(name); ok {
		return v, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return "", notFound(name)
}

// StringOf returns the value of name if it is one of allowed. An unset or
// disallowed value yields fallback[0] when given.
func (r *Reader) StringOf(name string, allowed []string, fallback ...string) (string, error) {
	v, ok := r.lookup(name)
	switch {
	case ok && slices.Contains(allowed, v):
		return v, nil
	case len(fallback) > 0:
		return fallback[0], nil
	case !ok:
		return "", notFound(name)
	default:
		return "", fmt.Errorf("%w: %s has value %q. Allowed values: %s",
			ErrInvalid, name, v, strings.Join(allowed, ", "))
	}
}

// OptionalNumber parses name as a number. It reports false when the
// variable is unset; an unparsable value is an error.
func (r *Reader) OptionalNumber(name string) (float64, bool, error) {
	v, ok := r.lookup(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(n) {
		return 0, false, fmt.Errorf("%w: %s has invalid number value %q", ErrInvalid, name, v)
	}
	return n, true, nil
}

// Number is like [Reader.OptionalNumber] with a required value or fallback.
func (r *Reader) Number(name string, fallback ...float64) (float64, error) {
	n, ok, err := r.OptionalNumber(name)
	switch {
	case err != nil:
		return 0, err
	case ok:
		return n, nil
	case len(fallback) > 0:
		return fallback[0], nil
	default:
		return 0, notFound(name)
	}
}

// OptionalBoolean parses name as a boolean. Accepted spellings are
// true/1/yes and false/0/no.
func (r *Reader) OptionalBoolean(name string) (bool, bool, error) {
	v, ok := r.lookup(name)
	if !ok {
		return false, false, nil
	}
	switch v {
	case "true", "1", "yes":
		return true, true, nil
	case "false", "0", "no":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("%w: %s has invalid boolean value %q", ErrInvalid, name, v)
	}
}

// Boolean is like [Reader.OptionalBoolean] with a required value or
// fallback.
func (r *Reader) Boolean(name string, fallback ...bool) (bool, error) {
	b, ok, err := r.OptionalBoolean(name)
	switch {
	case err != nil:
		return false, err
	case ok:
		return b, nil
	case len(fallback) > 0:
		return fallback[0], nil
	default:
		return false, notFound(name)
	}
}
