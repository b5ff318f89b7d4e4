package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// ScheduleRepo reads and writes the per-section data this application
// owns: seat snapshots (section_seats) and editorial metadata
// (section_meta, course_meta).
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// scheduleDataSelect joins seats and metadata onto the sections of
// interest.  Any of the joined rows may be missing.
const scheduleDataSelect = `SELECT s.class_id, ss.seats_available, ss.last_updated,
		sm.footnote, cm.footnote, sm.title, sm.description
	FROM sections s
	LEFT JOIN section_seats ss ON ss.class_id = s.class_id
	LEFT JOIN section_meta  sm ON sm.class_id = s.class_id
	LEFT JOIN course_meta   cm ON cm.course_id = CONCAT(s.course_subject, ' ', s.course_number)
	WHERE `

// GetScheduleData returns schedule data for every section in yrq that has
// at least one of seats or metadata recorded.
func (r *ScheduleRepo) GetScheduleData(ctx context.Context, yrq model.YearQuarter) ([]model.ScheduleData, error) {
	q := scheduleDataSelect + `s.year_quarter_id = ?
		AND (ss.class_id IS NOT NULL OR sm.class_id IS NOT NULL OR cm.course_id IS NOT NULL)`
	return r.queryScheduleData(ctx, q, yrq.Code())
}

// GetScheduleDataByIDs returns schedule data for the given sections.
func (r *ScheduleRepo) GetScheduleDataByIDs(ctx context.Context, ids []model.ClassID) ([]model.ScheduleData, error) {
	if len(ids) == 0 {
		return []model.ScheduleData{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	q := scheduleDataSelect + `s.class_id IN (` + placeholders(len(ids)) + `)`
	return r.queryScheduleData(ctx, q, args...)
}

func (r *ScheduleRepo) queryScheduleData(ctx context.Context, q string, args ...any) ([]model.ScheduleData, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ScheduleData{}
	for rows.Next() {
		var (
			raw                                  string
			seats                                sql.NullInt64
			updated                              sql.NullTime
			secNote, courseNote, title, descript sql.NullString
		)
		if err := rows.Scan(&raw, &seats, &updated, &secNote, &courseNote, &title, &descript); err != nil {
			return nil, err
		}
		id, err := model.ParseClassID(raw)
		if err != nil {
			logger.Warn().Str("class_id", raw).Msg("skipping schedule data with malformed class id")
			continue
		}
		out = append(out, model.ScheduleData{
			ClassID:           id,
			Seats:             snapshot(id, seats, updated),
			SectionFootnote:   secNote.String,
			CourseFootnote:    courseNote.String,
			CustomTitle:       title.String,
			CustomDescription: descript.String,
		})
	}
	return out, rows.Err()
}

// GetSeatSnapshot returns the stored snapshot for id, or an empty
// snapshot when none exists.
func (r *ScheduleRepo) GetSeatSnapshot(ctx context.Context, id model.ClassID) (model.SeatSnapshot, error) {
	const q = `SELECT seats_available, last_updated FROM section_seats WHERE class_id = ?`
	var (
		seats   sql.NullInt64
		updated sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id.String()).Scan(&seats, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SeatSnapshot{ClassID: id}, nil
	}
	if err != nil {
		return model.SeatSnapshot{}, err
	}
	return snapshot(id, seats, updated), nil
}

// UpsertSeatSnapshot records seats for id as of now.  The single
// statement is atomic per class_id.
func (r *ScheduleRepo) UpsertSeatSnapshot(ctx context.Context, id model.ClassID, seats int, now time.Time) error {
	const q = `INSERT INTO section_seats (class_id, seats_available, last_updated)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE seats_available = VALUES(seats_available),
	                                   last_updated = VALUES(last_updated)`
	_, err := r.db.ExecContext(ctx, q, id.String(), seats, now.UTC())
	return err
}

func snapshot(id model.ClassID, seats sql.NullInt64, updated sql.NullTime) model.SeatSnapshot {
	s := model.SeatSnapshot{ClassID: id}
	if seats.Valid {
		n := int(seats.Int64)
		s.SeatsAvailable = &n
	}
	if updated.Valid {
		t := updated.Time
		s.LastUpdated = &t
	}
	return s
}
