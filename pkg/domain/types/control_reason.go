package types

import (
	"strings"
	"unicode"
)

// ControlReason is a regulatory control-reason tag such as NS1 or AT.
// A tag without a trailing column number (e.g. "NS") names the whole family.
type ControlReason string

const (
	ControlReasonNS ControlReason = "NS" // national security
	ControlReasonMT ControlReason = "MT" // missile technology
	ControlReasonNP ControlReason = "NP" // nuclear nonproliferation
	ControlReasonCB ControlReason = "CB" // chemical and biological weapons
	ControlReasonAT ControlReason = "AT" // anti-terrorism
)

// NormalizeControlReason upper-cases the tag and drops whitespace, so that
// matrix headers like "NS 1" compare equal to "NS1".
func NormalizeControlReason(s string) ControlReason {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return ControlReason(b.String())
}

// Family returns the alphabetic prefix of the tag
func (c ControlReason) Family() ControlReason {
	s := string(c)
	for i, r := range s {
		if !unicode.IsLetter(r) {
			return ControlReason(s[:i])
		}
	}
	return c
}

// IsFamily reports whether the tag has no column number
func (c ControlReason) IsFamily() bool {
	return c != "" && c.Family() == c
}

// Covers reports whether this reason applies to the given matrix column.
// A family tag covers every column of its family; an exact tag covers only itself.
func (c ControlReason) Covers(column ControlReason) bool {
	c = NormalizeControlReason(string(c))
	column = NormalizeControlReason(string(column))
	if c == "" || column == "" {
		return false
	}
	if c.IsFamily() {
		return column.Family() == c
	}
	return c == column
}

// String returns the string representation of the control reason
func (c ControlReason) String() string {
	return string(c)
}

// ParseControlReasons splits a free-form list like "NS1, AT 1" into normalized tags.
// Empty elements are dropped and duplicates are removed, preserving order.
func ParseControlReasons(s string) []ControlReason {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '、'
	})

	seen := make(map[ControlReason]struct{}, len(fields))
	var reasons []ControlReason
	for _, f := range fields {
		reason := NormalizeControlReason(f)
		if reason == "" {
			continue
		}
		if _, ok := seen[reason]; ok {
			continue
		}
		seen[reason] = struct{}{}
		reasons = append(reasons, reason)
	}
	return reasons
}
