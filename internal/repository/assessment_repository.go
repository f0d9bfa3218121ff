package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// AssessmentRepository handles assessment persistence.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create inserts an assessment. A title collision within the
// (course, subject, term) scope surfaces as ErrDuplicateTitle, backed by the
// unique index rather than a racy pre-check.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	const query = `INSERT INTO assessments (id, course_id, subject_id, term, title, due_date, weight, created_by, created_at, updated_at)
        VALUES (:id, :course_id, :subject_id, :term, :title, :due_date, :weight, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicateTitle, fmt.Sprintf("title %q already used in this term", assessment.Title))
		}
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// FindByID returns one assessment.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	const query = `SELECT id, course_id, subject_id, term, title, due_date, weight, created_by, created_at, updated_at
        FROM assessments WHERE id = $1`
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// ListByCourseSubject returns the assessments of a (course, subject) across
// all terms, oldest first.
func (r *AssessmentRepository) ListByCourseSubject(ctx context.Context, courseID, subjectID string) ([]models.Assessment, error) {
	const query = `SELECT id, course_id, subject_id, term, title, due_date, weight, created_by, created_at, updated_at
        FROM assessments WHERE course_id = $1 AND subject_id = $2 ORDER BY created_at`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, courseID, subjectID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// ListByCourse returns every assessment of a course, for cohort rollups.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	const query = `SELECT id, course_id, subject_id, term, title, due_date, weight, created_by, created_at, updated_at
        FROM assessments WHERE course_id = $1 ORDER BY subject_id, created_at`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course assessments: %w", err)
	}
	return assessments, nil
}

// CountByScope counts existing assessments in a (course, subject, term),
// used for auto-generated titles.
func (r *AssessmentRepository) CountByScope(ctx context.Context, courseID, subjectID string, term models.Term) (int, error) {
	const query = `SELECT COUNT(*) FROM assessments WHERE course_id = $1 AND subject_id = $2 AND term = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, subjectID, term); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable fields of an assessment.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessments
        SET term = :term, title = :title, due_date = :due_date, weight = :weight, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicateTitle, fmt.Sprintf("title %q already used in this term", assessment.Title))
		}
		return fmt.Errorf("update assessment: %w", err)
	}
	return nil
}

// Delete removes an assessment and, via cascade, its marks.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
