package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/class-schedule/internal/model"
)

// SubjectRepo lists schedule subjects and their course prefixes.
type SubjectRepo struct {
	db *sql.DB
}

// NewSubjectRepo constructs a SubjectRepo with the given DB handle.
func NewSubjectRepo(db *sql.DB) *SubjectRepo {
	return &SubjectRepo{db: db}
}

// ListSubjects returns the subjects whose course prefixes are offered in
// yrq, or in the catalog at all when yrq is zero.  The common course
// marker is ignored when matching.  Results are ordered by title.
func (r *SubjectRepo) ListSubjects(ctx context.Context, yrq model.YearQuarter) ([]model.Subject, error) {
	var (
		offered string
		args    []any
	)
	if yrq.IsZero() {
		offered = `SELECT TRIM(TRAILING '&' FROM c.course_subject) FROM courses c`
	} else {
		offered = `SELECT TRIM(TRAILING '&' FROM s.course_subject) FROM sections s WHERE s.year_quarter_id = ?`
		args = append(args, yrq.Code())
	}
	q := `SELECT DISTINCT sub.slug, p.course_prefix, sub.title
		FROM subjects sub
		JOIN subject_prefixes p ON p.subject_id = sub.id
		WHERE TRIM(TRAILING '&' FROM p.course_prefix) IN (` + offered + `)
		ORDER BY sub.title, p.course_prefix`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.Slug, &s.Prefix, &s.Title); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
