package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CrosslistRepo reads the section/course crosslisting relation.
type CrosslistRepo struct {
	db *sql.DB
}

// NewCrosslistRepo constructs a CrosslistRepo with the given DB handle.
func NewCrosslistRepo(db *sql.DB) *CrosslistRepo {
	return &CrosslistRepo{db: db}
}

// FindCrosslistedClassIDs returns the raw ClassIDs cross-listed with
// courseID across all quarters.  Callers filter by quarter and validate.
func (r *CrosslistRepo) FindCrosslistedClassIDs(ctx context.Context, courseID string) ([]string, error) {
	const q = `SELECT class_id FROM section_course_crosslistings WHERE course_id = ? ORDER BY class_id`
	rows, err := r.db.QueryContext(ctx, q, strings.TrimSpace(courseID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(id))
	}
	return out, rows.Err()
}
