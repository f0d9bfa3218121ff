package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classfolio/record-api/internal/models"
)

// GrantRepository reads teacher authorization facts and maintains homeroom
// intervals.
type GrantRepository struct {
	db *sqlx.DB
}

// NewGrantRepository creates a new grant repository.
func NewGrantRepository(db *sqlx.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// SubjectGrants lists the (course, subject) pairs assigned to a teacher.
func (r *GrantRepository) SubjectGrants(ctx context.Context, teacherID string) ([]models.SubjectGrant, error) {
	const query = `SELECT id, teacher_id, course_id, subject_id, created_at
        FROM subject_grants WHERE teacher_id = $1`
	var grants []models.SubjectGrant
	if err := r.db.SelectContext(ctx, &grants, query, teacherID); err != nil {
		return nil, fmt.Errorf("list subject grants: %w", err)
	}
	return grants, nil
}

// HasSubjectGrant reports whether the teacher is assigned the pair.
func (r *GrantRepository) HasSubjectGrant(ctx context.Context, teacherID, courseID, subjectID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM subject_grants WHERE teacher_id = $1 AND course_id = $2 AND subject_id = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, courseID, subjectID); err != nil {
		return false, fmt.Errorf("check subject grant: %w", err)
	}
	return exists, nil
}

// HasActiveHomeroom reports whether the teacher holds the open homeroom
// grant of the course.
func (r *GrantRepository) HasActiveHomeroom(ctx context.Context, teacherID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM homeroom_grants WHERE teacher_id = $1 AND course_id = $2 AND until IS NULL)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, courseID); err != nil {
		return false, fmt.Errorf("check homeroom grant: %w", err)
	}
	return exists, nil
}

// ActiveHomeroom returns the open homeroom grant of a course, if any.
func (r *GrantRepository) ActiveHomeroom(ctx context.Context, courseID string) (*models.HomeroomGrant, error) {
	const query = `SELECT id, teacher_id, course_id, since, until
        FROM homeroom_grants WHERE course_id = $1 AND until IS NULL`
	var grant models.HomeroomGrant
	if err := r.db.GetContext(ctx, &grant, query, courseID); err != nil {
		return nil, err
	}
	return &grant, nil
}

// HomeroomHistory lists a course's homeroom grants, newest first.
func (r *GrantRepository) HomeroomHistory(ctx context.Context, courseID string) ([]models.HomeroomGrant, error) {
	const query = `SELECT id, teacher_id, course_id, since, until
        FROM homeroom_grants WHERE course_id = $1 ORDER BY since DESC`
	var grants []models.HomeroomGrant
	if err := r.db.SelectContext(ctx, &grants, query, courseID); err != nil {
		return nil, fmt.Errorf("list homeroom history: %w", err)
	}
	return grants, nil
}

// ReassignHomeroom closes the open grant and opens the new one at the same
// instant, in one transaction. Between commit boundaries the course never
// has zero or two active homeroom teachers.
func (r *GrantRepository) ReassignHomeroom(ctx context.Context, courseID, teacherID string) (*models.HomeroomGrant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin homeroom reassign: %w", err)
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE homeroom_grants SET until = $1 WHERE course_id = $2 AND until IS NULL`, now, courseID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("close homeroom grant: %w", err)
	}
	grant := &models.HomeroomGrant{
		ID:        uuid.NewString(),
		TeacherID: teacherID,
		CourseID:  courseID,
		Since:     now,
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO homeroom_grants (id, teacher_id, course_id, since, until) VALUES ($1, $2, $3, $4, NULL)`,
		grant.ID, grant.TeacherID, grant.CourseID, grant.Since); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("open homeroom grant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit homeroom reassign: %w", err)
	}
	return grant, nil
}
