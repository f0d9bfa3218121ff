package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classfolio/record-api/internal/models"
)

// AttendanceRepository persists sessions and presence marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// InsertSession attempts a conditional insert. It returns false when another
// writer already created the row for the same (course, subject, date, block);
// the caller then re-reads. Check-then-insert would leave a race window, so
// conflict detection rides on the unique index.
func (r *AttendanceRepository) InsertSession(ctx context.Context, session *models.AttendanceSession) (bool, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_sessions (id, course_id, subject_id, date, block, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (course_id, subject_id, date, block) DO NOTHING
        RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query, session.ID, session.CourseID, session.SubjectID, session.Date, session.Block, session.CreatedAt).Scan(&insertedID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert attendance session: %w", err)
	}
	return true, nil
}

// FindSession returns the session row for the natural key.
func (r *AttendanceRepository) FindSession(ctx context.Context, courseID, subjectID string, date time.Time, block string) (*models.AttendanceSession, error) {
	const query = `SELECT id, course_id, subject_id, date, block, created_at
        FROM attendance_sessions
        WHERE course_id = $1 AND subject_id = $2 AND date = $3 AND block = $4`
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, courseID, subjectID, date, block); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSessionByID returns a session by id.
func (r *AttendanceRepository) FindSessionByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	const query = `SELECT id, course_id, subject_id, date, block, created_at
        FROM attendance_sessions WHERE id = $1`
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpsertMarks replaces the status per (session, student) for every item in
// one transaction. Re-marking overwrites; it never duplicates.
func (r *AttendanceRepository) UpsertMarks(ctx context.Context, marks []models.AttendanceMark) error {
	if len(marks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance marks: %w", err)
	}
	const query = `INSERT INTO attendance_marks (id, session_id, student_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (session_id, student_id)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range marks {
		mark := &marks[i]
		if mark.ID == "" {
			mark.ID = uuid.NewString()
		}
		if mark.CreatedAt.IsZero() {
			mark.CreatedAt = now
		}
		mark.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, mark.ID, mark.SessionID, mark.StudentID, mark.Status, mark.CreatedAt, mark.UpdatedAt); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert attendance mark for %s: %w", mark.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance marks: %w", err)
	}
	return nil
}

// ListMarks returns the recorded marks of a session.
func (r *AttendanceRepository) ListMarks(ctx context.Context, sessionID string) ([]models.AttendanceMark, error) {
	const query = `SELECT id, session_id, student_id, status, created_at, updated_at
        FROM attendance_marks WHERE session_id = $1`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance marks: %w", err)
	}
	return marks, nil
}

// StudentSummary counts a student's statuses across every session of a
// (course, subject).
func (r *AttendanceRepository) StudentSummary(ctx context.Context, courseID, subjectID, studentID string) (*models.AttendanceSummary, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE am.status = 'PRESENT') AS present,
        COUNT(*) FILTER (WHERE am.status = 'ABSENT') AS absent,
        COUNT(*) FILTER (WHERE am.status = 'JUSTIFIED') AS justified,
        COUNT(*) AS total
        FROM attendance_marks am
        JOIN attendance_sessions s ON s.id = am.session_id
        WHERE s.course_id = $1 AND s.subject_id = $2 AND am.student_id = $3`
	row := struct {
		Present   int `db:"present"`
		Absent    int `db:"absent"`
		Justified int `db:"justified"`
		Total     int `db:"total"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, courseID, subjectID, studentID); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	summary := &models.AttendanceSummary{
		StudentID: studentID,
		Present:   row.Present,
		Absent:    row.Absent,
		Justified: row.Justified,
		Total:     row.Total,
	}
	if summary.Total > 0 {
		summary.Percent = float64(summary.Present+summary.Justified) / float64(summary.Total) * 100
	}
	return summary, nil
}
