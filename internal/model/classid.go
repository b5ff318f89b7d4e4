package model

import "strings"

const (
	itemNumberLen  = 4
	quarterCodeLen = 4
	classIDLen     = itemNumberLen + quarterCodeLen
)

// ClassID identifies one offered section in one quarter.  The textual
// form is the item number followed by the year-quarter code, e.g.
// "1234B343".  The zero value is not a valid ClassID.
type ClassID struct {
	raw string
}

// ParseClassID validates s and returns the ClassID it encodes.
func ParseClassID(s string) (ClassID, error) {
	s = strings.TrimSpace(s)
	if len(s) != classIDLen {
		return ClassID{}, NewValidationError(ErrInvalidClassID, "class_id", s, "must be exactly 8 characters")
	}
	if !isAlnum(s) {
		return ClassID{}, NewValidationError(ErrInvalidClassID, "class_id", s, "must be alphanumeric")
	}
	return ClassID{raw: strings.ToUpper(s)}, nil
}

// MustParseClassID is like ParseClassID but panics on error.  Intended
// for constants and tests.
func MustParseClassID(s string) ClassID {
	id, err := ParseClassID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewClassID composes a ClassID from an item number and a quarter.
func NewClassID(itemNumber string, yrq YearQuarter) (ClassID, error) {
	return ParseClassID(itemNumber + yrq.Code())
}

// ItemNumber returns the first four characters.
func (c ClassID) ItemNumber() string {
	if c.raw == "" {
		return ""
	}
	return c.raw[:itemNumberLen]
}

// QuarterCode returns the last four characters.
func (c ClassID) QuarterCode() string {
	if c.raw == "" {
		return ""
	}
	return c.raw[itemNumberLen:]
}

// YearQuarter returns the quarter the section is offered in.
func (c ClassID) YearQuarter() YearQuarter {
	return YearQuarter{code: c.QuarterCode()}
}

func (c ClassID) String() string { return c.raw }

// IsZero reports whether c was never parsed.
func (c ClassID) IsZero() bool { return c.raw == "" }

// MarshalText encodes the ClassID as its 8 character string.
func (c ClassID) MarshalText() ([]byte, error) { return []byte(c.raw), nil }

// UnmarshalText parses an 8 character ClassID.
func (c *ClassID) UnmarshalText(b []byte) error {
	id, err := ParseClassID(string(b))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'A' && ch <= 'Z':
		case ch >= 'a' && ch <= 'z':
		default:
			return false
		}
	}
	return true
}
