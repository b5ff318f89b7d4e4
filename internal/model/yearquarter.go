package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Quarter numbers as they appear in the last character of a year-quarter
// code.  The academic year begins with Summer.
const (
	QuarterSummer = 1
	QuarterFall   = 2
	QuarterWinter = 3
	QuarterSpring = 4
)

var quarterNames = map[int]string{
	QuarterSummer: "Summer",
	QuarterFall:   "Fall",
	QuarterWinter: "Winter",
	QuarterSpring: "Spring",
}

// YearQuarter is an academic term identified by a 4 character code such
// as "B343" (Winter 2014).  Codes order by recency, so comparing codes
// compares terms.
type YearQuarter struct {
	code string
}

// ParseYearQuarter validates a raw 4 character code: a decade character
// followed by two year digits and the quarter digit.
func ParseYearQuarter(code string) (YearQuarter, error) {
	code = strings.TrimSpace(code)
	if len(code) != quarterCodeLen {
		return YearQuarter{}, NewValidationError(ErrInvalidYearQuarter, "year_quarter", code, "must be exactly 4 characters")
	}
	if !isAlnum(code) {
		return YearQuarter{}, NewValidationError(ErrInvalidYearQuarter, "year_quarter", code, "must be alphanumeric")
	}
	for i := 1; i < quarterCodeLen; i++ {
		if code[i] < '0' || code[i] > '9' {
			return YearQuarter{}, NewValidationError(ErrInvalidYearQuarter, "year_quarter", code, "must end in three digits")
		}
	}
	return YearQuarter{code: strings.ToUpper(code)}, nil
}

// MustParseYearQuarter panics when code is not a valid year-quarter code.
func MustParseYearQuarter(code string) YearQuarter {
	yrq, err := ParseYearQuarter(code)
	if err != nil {
		panic(err)
	}
	return yrq
}

// YearQuarterFromFriendlyName parses names like "Fall 2011" or "winter2012".
func YearQuarterFromFriendlyName(name string) (YearQuarter, error) {
	s := strings.ToLower(strings.Join(strings.Fields(name), ""))
	for q, qn := range quarterNames {
		prefix := strings.ToLower(qn)
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		// Winter and Spring fall in the year after the academic year starts,
		// and the earliest encodable start year is 1900.
		start, minYear := 0, 1900
		if q == QuarterWinter || q == QuarterSpring {
			start, minYear = -1, 1901
		}
		year, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
		if err != nil || year < minYear || year > 2259 {
			return YearQuarter{}, NewValidationError(ErrInvalidYearQuarter, "year_quarter", name, "unrecognized year")
		}
		start += year
		return YearQuarter{code: encodeYearQuarter(start, q)}, nil
	}
	return YearQuarter{}, NewValidationError(ErrInvalidYearQuarter, "year_quarter", name, "unrecognized quarter name")
}

// ParseYearQuarterInput accepts either a raw code or a friendly name.
func ParseYearQuarterInput(s string) (YearQuarter, error) {
	if yrq, err := ParseYearQuarter(s); err == nil {
		return yrq, nil
	}
	return YearQuarterFromFriendlyName(s)
}

func encodeYearQuarter(startYear, quarter int) string {
	decade := startYear / 10
	var first byte
	if decade >= 200 {
		first = byte('A' + decade - 200)
	} else {
		first = byte('0' + decade%10)
	}
	return fmt.Sprintf("%c%d%d%d", first, startYear%10, (startYear+1)%10, quarter)
}

// Code returns the raw 4 character code.
func (y YearQuarter) Code() string { return y.code }

func (y YearQuarter) String() string { return y.code }

// IsZero reports whether y was never parsed.
func (y YearQuarter) IsZero() bool { return y.code == "" }

// Compare orders year-quarters by recency: -1 when y is older than o.
func (y YearQuarter) Compare(o YearQuarter) int {
	return strings.Compare(y.code, o.code)
}

// After reports whether y is more recent than o.
func (y YearQuarter) After(o YearQuarter) bool { return y.Compare(o) > 0 }

// Quarter returns the quarter number (1..4) or 0 if the code does not
// carry one.
func (y YearQuarter) Quarter() int {
	if len(y.code) != quarterCodeLen {
		return 0
	}
	q := int(y.code[3] - '0')
	if _, ok := quarterNames[q]; !ok {
		return 0
	}
	return q
}

// FriendlyName renders the quarter as "Winter 2014".  Codes that do not
// follow the standard layout render as the raw code.
func (y YearQuarter) FriendlyName() string {
	q := y.Quarter()
	if q == 0 {
		return y.code
	}
	first, yearDigit := y.code[0], y.code[1]
	if yearDigit < '0' || yearDigit > '9' {
		return y.code
	}
	var decade int
	switch {
	case first >= 'A' && first <= 'Z':
		decade = 200 + int(first-'A')
	case first >= '0' && first <= '9':
		decade = 190 + int(first-'0')
	default:
		return y.code
	}
	year := decade*10 + int(yearDigit-'0')
	if q == QuarterWinter || q == QuarterSpring {
		year++
	}
	return fmt.Sprintf("%s %d", quarterNames[q], year)
}

// MarshalText encodes the quarter as its raw code.
func (y YearQuarter) MarshalText() ([]byte, error) { return []byte(y.code), nil }

// UnmarshalText accepts a raw code or a friendly name.
func (y *YearQuarter) UnmarshalText(b []byte) error {
	yrq, err := ParseYearQuarterInput(string(b))
	if err != nil {
		return err
	}
	*y = yrq
	return nil
}
