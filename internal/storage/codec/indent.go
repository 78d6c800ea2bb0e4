package codec

import (
	"strconv"
	"strings"
)

// Indent selects the snapshot layout.
//
// The zero Indent is the flat layout. Spaces(n) and Literal(s) put every
// member on its own line, prefixed by the unit repeated once per depth.
type Indent struct {
	enabled bool
	unit    string
}

// NoIndent returns the flat layout.
func NoIndent() Indent { return Indent{} }

// Spaces indents with n spaces per level. n <= 0 still breaks lines but
// adds no indentation.
func Spaces(n int) Indent {
	if n < 0 {
		n = 0
	}
	return Indent{enabled: true, unit: strings.Repeat(" ", n)}
}

// Literal indents with s per level.
func Literal(s string) Indent { return Indent{enabled: true, unit: s} }

// ParseIndent parses a configuration string: "" or "none" is flat, a decimal
// number is that many spaces, anything else is used literally.
func ParseIndent(s string) Indent {
	if s == "" || strings.EqualFold(s, "none") {
		return NoIndent()
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Spaces(n)
	}
	return Literal(s)
}

// Enabled reports whether the layout is multi-line.
func (i Indent) Enabled() bool { return i.enabled }

// Unit returns the per-level indentation string.
func (i Indent) Unit() string { return i.unit }

// String returns a form accepted by ParseIndent.
func (i Indent) String() string {
	if !i.enabled {
		return "none"
	}
	if strings.Trim(i.unit, " ") == "" {
		return strconv.Itoa(len(i.unit))
	}
	return i.unit
}
