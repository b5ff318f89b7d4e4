package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/search"
)

// SearchRepo runs the two full-text search channels against the MySQL
// FULLTEXT indexes on sections and courses.  Relevance is scaled by 1000
// and truncated to an integer rank.
type SearchRepo struct {
	db *sql.DB
}

// NewSearchRepo constructs a SearchRepo with the given DB handle.
func NewSearchRepo(db *sql.DB) *SearchRepo {
	return &SearchRepo{db: db}
}

// courseKey turns "engl& 101" into "ENGL 101" for exact course matches.
func courseKey(term string) string {
	return strings.ToUpper(strings.ReplaceAll(term, model.CommonCourseChar, ""))
}

// SearchSections returns the sections in yrq matching term, either by
// relevance or by exact course id.
func (r *SearchRepo) SearchSections(ctx context.Context, term string, yrq model.YearQuarter) ([]search.SearchHit, error) {
	const q = `SELECT s.class_id,
			CAST(ROUND(MATCH(s.course_title, s.search_text) AGAINST (? IN NATURAL LANGUAGE MODE) * 1000) AS SIGNED) AS rnk
		FROM sections s
		WHERE s.year_quarter_id = ?
		  AND (MATCH(s.course_title, s.search_text) AGAINST (? IN NATURAL LANGUAGE MODE)
		       OR CONCAT(TRIM(TRAILING '&' FROM s.course_subject), ' ', s.course_number) = ?)
		ORDER BY rnk DESC`
	rows, err := r.db.QueryContext(ctx, q, term, yrq.Code(), term, courseKey(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []search.SearchHit{}
	for rows.Next() {
		var (
			raw  string
			rank int
		)
		if err := rows.Scan(&raw, &rank); err != nil {
			return nil, err
		}
		id, err := model.ParseClassID(raw)
		if err != nil {
			logger.Warn().Str("class_id", raw).Msg("skipping search hit with malformed class id")
			continue
		}
		out = append(out, search.SearchHit{ClassID: id, Rank: rank})
	}
	return out, rows.Err()
}

// SearchNoSectionCourses returns catalog courses matching term that have
// no section in yrq.
func (r *SearchRepo) SearchNoSectionCourses(ctx context.Context, term string, yrq model.YearQuarter) ([]search.NoSectionHit, error) {
	const q = `SELECT c.course_subject, c.course_number, c.title,
			CAST(ROUND(MATCH(c.title, c.description) AGAINST (? IN NATURAL LANGUAGE MODE) * 1000) AS SIGNED) AS rnk
		FROM courses c
		WHERE MATCH(c.title, c.description) AGAINST (? IN NATURAL LANGUAGE MODE)
		  AND NOT EXISTS (
		      SELECT 1 FROM sections s
		      WHERE s.year_quarter_id = ?
		        AND s.course_subject = c.course_subject
		        AND s.course_number = c.course_number)
		ORDER BY rnk DESC, c.course_subject, c.course_number`
	rows, err := r.db.QueryContext(ctx, q, term, term, yrq.Code())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []search.NoSectionHit{}
	for rows.Next() {
		var (
			subject, number, title string
			rank                   int
		)
		if err := rows.Scan(&subject, &number, &title, &rank); err != nil {
			return nil, err
		}
		cid := model.BuildCourseID(number, subject, false)
		out = append(out, search.NoSectionHit{
			CourseID:     cid,
			Subject:      cid.Subject,
			CourseNumber: cid.Number,
			Title:        strings.TrimSpace(title),
			Rank:         rank,
		})
	}
	return out, rows.Err()
}
