package glob

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPattern is returned for a pattern with no segments.
	ErrEmptyPattern = errors.New("glob: empty pattern")
	// ErrAbsolutePattern is returned for a pattern starting with "/".
	// Patterns are always resolved against Options.Cwd.
	ErrAbsolutePattern = errors.New("glob: pattern must be relative")
	// ErrUnbalancedBrace is returned when "{" and "}" do not pair up.
	ErrUnbalancedBrace = errors.New("glob: unbalanced brace")
)

// ChunkKind is the kind of a parsed pattern segment.
type ChunkKind int

const (
	// Literal is one or more plain path segments, e.g. "src/lib".
	Literal ChunkKind = iota
	// Pattern is a single segment with wildcards, e.g. "*.ts".
	Pattern
	// Globstar is "**": zero or more directory levels.
	Globstar
)

func (k ChunkKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Pattern:
		return "pattern"
	case Globstar:
		return "globstar"
	default:
		return fmt.Sprintf("ChunkKind(%d)", int(k))
	}
}

// Chunk is one step of a parsed pattern.
type Chunk struct {
	Kind ChunkKind
	// Value is the path of a Literal chunk.
	Value string
	// Regexp matches base names for a Pattern chunk.
	Regexp *regexp.Regexp
}

func (c Chunk) String() string {
	switch c.Kind {
	case Literal:
		return "literal(" + c.Value + ")"
	case Pattern:
		return "pattern(" + c.Regexp.String() + ")"
	default:
		return c.Kind.String()
	}
}

// Parse splits pattern on "/" into chunks. Segments containing "*", "?"
// or "{" become anchored regular expressions; "**" is a globstar; adjacent
// literal segments are merged. Empty and "." segments are ignored.
//
//	Parse("src/lib/**/*.{ts,tsx}")
//	// literal(src/lib), globstar, pattern(^.*\.(?:ts|tsx)$)
func Parse(pattern string) ([]Chunk, error) {
	if strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q", ErrAbsolutePattern, pattern)
	}

	var chunks []Chunk
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" || seg == "." {
			continue
		}

		c, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}

		if n := len(chunks); n > 0 && c.Kind == Literal && chunks[n-1].Kind == Literal {
			chunks[n-1].Value += "/" + c.Value
			continue
		}
		chunks = append(chunks, c)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyPattern, pattern)
	}
	return chunks, nil
}

func parseSegment(seg string) (Chunk, error) {
	if seg == "**" {
		return Chunk{Kind: Globstar}, nil
	}
	if !strings.ContainsAny(seg, "*?{}") {
		return Chunk{Kind: Literal, Value: seg}, nil
	}

	expr, err := segmentRegexp(seg)
	if err != nil {
		return Chunk{}, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Chunk{}, fmt.Errorf("glob: compile %q: %w", seg, err)
	}
	return Chunk{Kind: Pattern, Regexp: re}, nil
}

// segmentRegexp translates one wildcard segment. Commas are alternation
// separators only inside braces.
func segmentRegexp(seg string) (string, error) {
	var b strings.Builder
	b.WriteByte('^')

	depth := 0
	for _, r := range seg {
		switch {
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteByte('.')
		case r == '{':
			depth++
			b.WriteString("(?:")
		case r == '}':
			if depth == 0 {
				return "", fmt.Errorf("%w: %q", ErrUnbalancedBrace, seg)
			}
			depth--
			b.WriteByte(')')
		case r == ',' && depth > 0:
			b.WriteByte('|')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("%w: %q", ErrUnbalancedBrace, seg)
	}

	b.WriteByte('$')
	return b.String(), nil
}
