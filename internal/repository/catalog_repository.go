package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/class-schedule/internal/facet"
	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// CatalogRepo reads sections, courses and quarters from the catalog
// tables.  Facet predicates are evaluated in SQL.
type CatalogRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db, now: time.Now}
}

const sectionColumns = `s.class_id, s.course_subject, s.course_number, s.course_title,
	s.credits, s.is_variable_credits, s.modality, s.start_date, s.is_late_start, s.footnotes`

// CurrentYearQuarter returns the latest quarter whose registration has
// opened.
func (r *CatalogRepo) CurrentYearQuarter(ctx context.Context) (model.YearQuarter, error) {
	const q = `SELECT year_quarter_id FROM year_quarters
	           WHERE registration_start <= ?
	           ORDER BY year_quarter_id DESC
	           LIMIT 1`
	var code string
	err := r.db.QueryRowContext(ctx, q, r.now().UTC()).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return model.YearQuarter{}, ErrNotFound
	}
	if err != nil {
		return model.YearQuarter{}, err
	}
	return model.ParseYearQuarter(code)
}

// ListYearQuarters returns up to n quarters open for registration, most
// recent first.
func (r *CatalogRepo) ListYearQuarters(ctx context.Context, n int) ([]model.YearQuarter, error) {
	const q = `SELECT year_quarter_id FROM year_quarters
	           WHERE registration_start <= ?
	           ORDER BY year_quarter_id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, r.now().UTC(), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.YearQuarter, 0, n)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		yrq, err := model.ParseYearQuarter(code)
		if err != nil {
			logger.Warn().Str("code", code).Msg("skipping malformed year quarter")
			continue
		}
		out = append(out, yrq)
	}
	return out, rows.Err()
}

// GetSections returns the sections offered in yrq that satisfy facets,
// in catalog order.
func (r *CatalogRepo) GetSections(ctx context.Context, yrq model.YearQuarter, facets facet.Set) ([]model.Section, error) {
	where := []string{"s.year_quarter_id = ?"}
	args := []any{yrq.Code()}
	fw, fa := facetWhere(facets)
	return r.querySections(ctx, append(where, fw...), append(args, fa...))
}

// GetSectionsBySubjects is GetSections restricted to the given course
// subjects (as stored, e.g. "ENGL" and "ENGL&").
func (r *CatalogRepo) GetSectionsBySubjects(ctx context.Context, subjects []string, yrq model.YearQuarter, facets facet.Set) ([]model.Section, error) {
	if len(subjects) == 0 {
		return r.GetSections(ctx, yrq, facets)
	}
	where := []string{"s.year_quarter_id = ?", "s.course_subject IN (" + placeholders(len(subjects)) + ")"}
	args := []any{yrq.Code()}
	for _, s := range subjects {
		args = append(args, s)
	}
	fw, fa := facetWhere(facets)
	return r.querySections(ctx, append(where, fw...), append(args, fa...))
}

// GetSectionsByIDs returns the sections with the given ClassIDs.  IDs that
// do not exist are skipped.
func (r *CatalogRepo) GetSectionsByIDs(ctx context.Context, ids []model.ClassID) ([]model.Section, error) {
	if len(ids) == 0 {
		return []model.Section{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	return r.querySections(ctx, []string{"s.class_id IN (" + placeholders(len(ids)) + ")"}, args)
}

func (r *CatalogRepo) querySections(ctx context.Context, where []string, args []any) ([]model.Section, error) {
	q := `SELECT ` + sectionColumns + `
		FROM sections s
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY s.course_subject, s.course_number, s.class_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Section{}
	for rows.Next() {
		s, ok, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMeetings(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSection(rows *sql.Rows) (model.Section, bool, error) {
	var (
		rawID     string
		subject   string
		number    string
		title     string
		credits   float64
		variable  bool
		modality  sql.NullString
		startDate sql.NullTime
		late      bool
		footnotes sql.NullString
	)
	if err := rows.Scan(&rawID, &subject, &number, &title, &credits, &variable,
		&modality, &startDate, &late, &footnotes); err != nil {
		return model.Section{}, false, err
	}
	id, err := model.ParseClassID(rawID)
	if err != nil {
		logger.Warn().Str("class_id", rawID).Msg("skipping section with malformed class id")
		return model.Section{}, false, nil
	}
	cid := model.BuildCourseID(number, subject, false)
	return model.Section{
		ID:                id,
		CourseID:          cid,
		Subject:           cid.Subject,
		CourseNumber:      cid.Number,
		CourseTitle:       strings.TrimSpace(title),
		Credits:           credits,
		IsVariableCredits: variable,
		YearQuarter:       id.YearQuarter(),
		Modality:          model.Modality(modality.String),
		StartDate:         startDate.Time,
		IsLateStart:       late,
		Footnotes:         splitLines(footnotes.String),
		IsCommonCourse:    cid.IsCommonCourse,
		Meetings:          []model.Meeting{},
	}, true, nil
}

func (r *CatalogRepo) attachMeetings(ctx context.Context, sections []model.Section) error {
	if len(sections) == 0 {
		return nil
	}
	index := make(map[string]int, len(sections))
	args := make([]any, len(sections))
	for i, s := range sections {
		index[s.ID.String()] = i
		args[i] = s.ID.String()
	}
	q := `SELECT class_id, days, start_time, end_time, room, instructor
		FROM section_meetings
		WHERE class_id IN (` + placeholders(len(args)) + `)
		ORDER BY class_id, start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			classID                      string
			days, start, end, room, inst sql.NullString
		)
		if err := rows.Scan(&classID, &days, &start, &end, &room, &inst); err != nil {
			return err
		}
		i, ok := index[strings.ToUpper(classID)]
		if !ok {
			continue
		}
		sections[i].Meetings = append(sections[i].Meetings, model.Meeting{
			Days:       days.String,
			StartTime:  parseSQLTime(start.String),
			EndTime:    parseSQLTime(end.String),
			Room:       room.String,
			Instructor: inst.String,
		})
	}
	return rows.Err()
}

// GetCourses returns the catalog courses for the given prefixes, ordered
// by subject then number.  Prefixes match with or without the common
// course marker.
func (r *CatalogRepo) GetCourses(ctx context.Context, prefixes []string) ([]model.Course, error) {
	if len(prefixes) == 0 {
		return []model.Course{}, nil
	}
	args := make([]any, len(prefixes))
	for i, p := range prefixes {
		args[i] = p
	}
	q := `SELECT DISTINCT c.course_subject, c.course_number, c.title, c.credits,
			c.is_variable_credits, c.description
		FROM courses c
		WHERE TRIM(TRAILING '&' FROM c.course_subject) IN (` + placeholders(len(args)) + `)
		ORDER BY c.course_subject, c.course_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Course{}
	for rows.Next() {
		var (
			subject, number, title string
			credits                float64
			variable               bool
			desc                   sql.NullString
		)
		if err := rows.Scan(&subject, &number, &title, &credits, &variable, &desc); err != nil {
			return nil, err
		}
		cid := model.BuildCourseID(number, subject, false)
		out = append(out, model.Course{
			ID:                cid,
			Title:             strings.TrimSpace(title),
			Credits:           credits,
			IsVariableCredits: variable,
			IsCommonCourse:    cid.IsCommonCourse,
			Description:       desc.String,
		})
	}
	return out, rows.Err()
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseSQLTime reads a MySQL TIME column ("15:04:05"); NULL or garbage
// gives the zero time.
func parseSQLTime(s string) time.Time {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
