package model

import "strings"

// MaxCoursePrefixes is the most course prefixes one courses lookup may
// name.
const MaxCoursePrefixes = 5

// CommonCourseChar marks a subject as a Washington common course number
// (e.g. "ENGL&").
const CommonCourseChar = "&"

// CourseID identifies a catalog course independent of quarter or section.
type CourseID struct {
	Subject        string `json:"subject"`
	Number         string `json:"number"`
	IsCommonCourse bool   `json:"is_common_course"`
}

// ParseCourseID parses "ENGL& 101", "ENGL 101" or the fixed-width
// "ENGL&101" form.
func ParseCourseID(s string) (CourseID, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return CourseID{}, NewValidationError(ErrInvalidCourseID, "course_id", s, "empty")
	}
	var subject, number string
	if fields := strings.Fields(raw); len(fields) == 2 {
		subject, number = fields[0], fields[1]
	} else if len(fields) == 1 {
		// split on the first digit
		i := strings.IndexAny(raw, "0123456789")
		if i <= 0 {
			return CourseID{}, NewValidationError(ErrInvalidCourseID, "course_id", s, "missing course number")
		}
		subject, number = raw[:i], raw[i:]
	} else {
		return CourseID{}, NewValidationError(ErrInvalidCourseID, "course_id", s, "expected subject and number")
	}
	common := strings.HasSuffix(subject, CommonCourseChar)
	subject = strings.TrimSuffix(subject, CommonCourseChar)
	if subject == "" || number == "" {
		return CourseID{}, NewValidationError(ErrInvalidCourseID, "course_id", s, "expected subject and number")
	}
	return CourseID{Subject: subject, Number: number, IsCommonCourse: common}, nil
}

// BuildCourseID composes a CourseID from its parts.
func BuildCourseID(number, subject string, isCommonCourse bool) CourseID {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	if strings.HasSuffix(subject, CommonCourseChar) {
		isCommonCourse = true
		subject = strings.TrimSuffix(subject, CommonCourseChar)
	}
	return CourseID{Subject: subject, Number: strings.ToUpper(strings.TrimSpace(number)), IsCommonCourse: isCommonCourse}
}

// Prefix returns the course prefix as stored in the catalog, including
// the common course marker.
func (c CourseID) Prefix() string {
	if c.IsCommonCourse {
		return c.Subject + CommonCourseChar
	}
	return c.Subject
}

func (c CourseID) String() string {
	if c.Subject == "" {
		return ""
	}
	return c.Prefix() + " " + c.Number
}

// SubjectVariants returns the subject and its common-course form.  Search
// by subject matches both.
func SubjectVariants(subject string) []string {
	s := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(subject)), CommonCourseChar)
	return []string{s, s + CommonCourseChar}
}

// NormalizePrefixes trims, upper-cases and de-duplicates course prefixes,
// dropping the common course marker.  It rejects an empty list and more
// than MaxCoursePrefixes distinct prefixes.
func NormalizePrefixes(prefixes []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(p)), CommonCourseChar)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, NewValidationError(ErrNoPrefixes, "prefix", "", "at least one course prefix is required")
	}
	if len(out) > MaxCoursePrefixes {
		return nil, NewValidationError(ErrTooManyPrefixes, "prefix", strings.Join(out, ","), "at most 5 course prefixes are allowed")
	}
	return out, nil
}
