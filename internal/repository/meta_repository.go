package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/class-schedule/internal/model"
)

// MetaRepo maintains editorial metadata: section and course footnotes.
type MetaRepo struct {
	db *sql.DB
}

// NewMetaRepo constructs a MetaRepo with the given DB handle.
func NewMetaRepo(db *sql.DB) *MetaRepo {
	return &MetaRepo{db: db}
}

// GetSectionMeta returns the metadata row of a section or ErrNotFound.
func (r *MetaRepo) GetSectionMeta(ctx context.Context, id model.ClassID) (model.SectionMeta, error) {
	const q = `SELECT footnote, last_updated, last_updated_by FROM section_meta WHERE class_id = ?`
	var (
		note    sql.NullString
		updated sql.NullTime
		by      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id.String()).Scan(&note, &updated, &by)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SectionMeta{}, ErrNotFound
	}
	if err != nil {
		return model.SectionMeta{}, err
	}
	return model.SectionMeta{ClassID: id, Footnote: note.String, LastUpdated: updated.Time, LastUpdatedBy: by.String}, nil
}

// UpdateSectionFootnote sets the footnote of a section.  An existing row
// is updated only when the text differs; a missing row is inserted only
// when text is non-empty.  It reports whether anything was written.
func (r *MetaRepo) UpdateSectionFootnote(ctx context.Context, id model.ClassID, text, by string, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var current sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT footnote FROM section_meta WHERE class_id = ? FOR UPDATE`, id.String()).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if text == "" {
			return false, nil
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO section_meta (class_id, footnote, last_updated, last_updated_by) VALUES (?, ?, ?, ?)`,
			id.String(), text, now.UTC(), by); err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	default:
		if current.String == text {
			return false, nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE section_meta SET footnote = ?, last_updated = ?, last_updated_by = ? WHERE class_id = ?`,
			text, now.UTC(), by, id.String()); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// GetCourseMeta returns the metadata row of a course or ErrNotFound.
func (r *MetaRepo) GetCourseMeta(ctx context.Context, courseID model.CourseID) (model.CourseMeta, error) {
	const q = `SELECT footnote, last_updated, last_updated_by FROM course_meta WHERE course_id = ?`
	var (
		note    sql.NullString
		updated sql.NullTime
		by      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, courseID.String()).Scan(&note, &updated, &by)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CourseMeta{}, ErrNotFound
	}
	if err != nil {
		return model.CourseMeta{}, err
	}
	return model.CourseMeta{CourseID: courseID.String(), Footnote: note.String, LastUpdated: updated.Time, LastUpdatedBy: by.String}, nil
}

// UpsertCourseFootnote writes the footnote of a course, stamping who
// changed it and when.
func (r *MetaRepo) UpsertCourseFootnote(ctx context.Context, courseID model.CourseID, text, by string, now time.Time) error {
	const q = `INSERT INTO course_meta (course_id, footnote, last_updated, last_updated_by)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE footnote = VALUES(footnote),
	                                   last_updated = VALUES(last_updated),
	                                   last_updated_by = VALUES(last_updated_by)`
	_, err := r.db.ExecContext(ctx, q, courseID.String(), text, now.UTC(), by)
	return err
}
