package search

import (
	"sort"

	"github.com/iliyamo/class-schedule/internal/model"
)

// SearchHit is a section matched by the full-text search.  Rank 0 means
// unranked; higher ranks are better matches.
type SearchHit struct {
	ClassID model.ClassID `json:"class_id"`
	Rank    int           `json:"rank"`
}

// NoSectionHit is a catalog course matched by the text search that has no
// section offered in the searched quarter.
type NoSectionHit struct {
	CourseID     model.CourseID `json:"course_id"`
	Subject      string         `json:"subject"`
	CourseNumber string         `json:"course_number"`
	Title        string         `json:"title"`
	Rank         int            `json:"rank"`
}

// SearchRanker holds the output of both search channels for one request.
type SearchRanker struct {
	ranks     map[model.ClassID]int
	noSection []NoSectionHit
}

// NewSearchRanker records section hits, keeping the best rank per
// ClassID, and orders the no-section hits for display.
func NewSearchRanker(hits []SearchHit, noSection []NoSectionHit) *SearchRanker {
	r := &SearchRanker{ranks: make(map[model.ClassID]int, len(hits))}
	for _, h := range hits {
		if h.ClassID.IsZero() {
			continue
		}
		if prev, ok := r.ranks[h.ClassID]; !ok || h.Rank > prev {
			r.ranks[h.ClassID] = h.Rank
		}
	}

	seen := make(map[model.CourseID]int, len(noSection))
	out := make([]NoSectionHit, 0, len(noSection))
	for _, h := range noSection {
		if i, ok := seen[h.CourseID]; ok {
			if h.Rank > out[i].Rank {
				out[i].Rank = h.Rank
			}
			continue
		}
		seen[h.CourseID] = len(out)
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].CourseNumber < out[j].CourseNumber
	})
	r.noSection = out
	return r
}

// Rank returns the rank of id and whether the section search matched it.
func (r *SearchRanker) Rank(id model.ClassID) (int, bool) {
	if r == nil {
		return 0, false
	}
	rank, ok := r.ranks[id]
	return rank, ok
}

// Contains reports whether id was matched by the section search.
func (r *SearchRanker) Contains(id model.ClassID) bool {
	_, ok := r.Rank(id)
	return ok
}

// Len returns the number of distinct section hits.
func (r *SearchRanker) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ranks)
}

// NoSection returns the no-section hits, best rank first.
func (r *SearchRanker) NoSection() []NoSectionHit {
	if r == nil {
		return nil
	}
	return r.noSection
}
