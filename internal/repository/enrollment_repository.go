package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classfolio/record-api/internal/models"
)

// EnrollmentRepository reads course rosters and applies list-number edits.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListRoster returns the enrollments of a course joined with student identity.
// Ordering is left to the service; storage order is not meaningful.
func (r *EnrollmentRepository) ListRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.student_id, s.first_name, s.last_name, e.list_number
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.course_id = $1`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}

// UpdateListNumbers applies a batch of list-number changes in a single
// transaction; either every row is updated or none is.
func (r *EnrollmentRepository) UpdateListNumbers(ctx context.Context, courseID string, updates []models.ListNumberUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin list number update: %w", err)
	}
	const query = `UPDATE enrollments SET list_number = $1 WHERE course_id = $2 AND student_id = $3`
	for _, update := range updates {
		result, err := tx.ExecContext(ctx, query, update.Number, courseID, update.StudentID)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update list number for %s: %w", update.StudentID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update list number for %s: %w", update.StudentID, err)
		}
		if affected == 0 {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update list number: student %s not enrolled in course %s", update.StudentID, courseID)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit list numbers: %w", err)
	}
	return nil
}
