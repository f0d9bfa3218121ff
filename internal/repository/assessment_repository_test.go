package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

func TestAssessmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assessments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assessment := &models.Assessment{
		CourseID:  "c-1",
		SubjectID: "sub-1",
		Term:      models.TermFirst,
		Title:     "Evaluation 1",
		CreatedBy: "t-1",
	}
	require.NoError(t, repo.Create(context.Background(), assessment))
	require.NotEmpty(t, assessment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assessments")).
		WillReturnError(&pq.Error{Code: "23505"})

	assessment := &models.Assessment{
		CourseID:  "c-1",
		SubjectID: "sub-1",
		Term:      models.TermFirst,
		Title:     "Evaluation 1",
		CreatedBy: "t-1",
	}
	err := repo.Create(context.Background(), assessment)
	require.ErrorIs(t, err, appErrors.ErrDuplicateTitle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryCountByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assessments")).
		WithArgs("c-1", "sub-1", models.TermFirst).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByScope(context.Background(), "c-1", "sub-1", models.TermFirst)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMarkRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO marks")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mark := &models.Mark{AssessmentID: "as-1", StudentID: "st-1", Value: 6.3}
	require.NoError(t, repo.Upsert(context.Background(), mark))
	require.NotEmpty(t, mark.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
