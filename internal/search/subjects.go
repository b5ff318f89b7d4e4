package search

import "strings"

// SubjectSummary lists the distinct subjects of a result set.
type SubjectSummary struct {
	Subjects []string `json:"subjects"`
	Count    int      `json:"count"`
}

// AggregateSubjects collects distinct subjects over the full result set,
// in first-seen order.  Count is the size of that set, so it does not
// depend on how the input is ordered.
func AggregateSubjects(results []MergedResult) SubjectSummary {
	seen := make(map[string]struct{})
	subjects := []string{}
	for _, r := range results {
		s := strings.TrimSpace(r.Section.Subject)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		subjects = append(subjects, s)
	}
	return SubjectSummary{Subjects: subjects, Count: len(seen)}
}
