package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classfolio/record-api/internal/models"
)

// MarkRepository persists assessment marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new mark repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert inserts or replaces the mark for (assessment, student).
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now
	const query = `INSERT INTO marks (id, assessment_id, student_id, value, created_at, updated_at)
        VALUES (:id, :assessment_id, :student_id, :value, :created_at, :updated_at)
        ON CONFLICT (assessment_id, student_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark: %w", err)
	}
	return nil
}

// ListForScope returns every mark recorded against assessments of a
// (course, subject), for grade-sheet computation.
func (r *MarkRepository) ListForScope(ctx context.Context, courseID, subjectID string) ([]models.Mark, error) {
	const query = `SELECT m.id, m.assessment_id, m.student_id, m.value, m.created_at, m.updated_at
        FROM marks m
        JOIN assessments a ON a.id = m.assessment_id
        WHERE a.course_id = $1 AND a.subject_id = $2`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, courseID, subjectID); err != nil {
		return nil, fmt.Errorf("list marks for scope: %w", err)
	}
	return marks, nil
}

// ListForCourse returns every mark recorded against a course's assessments.
func (r *MarkRepository) ListForCourse(ctx context.Context, courseID string) ([]models.Mark, error) {
	const query = `SELECT m.id, m.assessment_id, m.student_id, m.value, m.created_at, m.updated_at
        FROM marks m
        JOIN assessments a ON a.id = m.assessment_id
        WHERE a.course_id = $1`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, courseID); err != nil {
		return nil, fmt.Errorf("list marks for course: %w", err)
	}
	return marks, nil
}
