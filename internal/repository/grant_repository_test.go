package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestGrantRepositoryHasSubjectGrant(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGrantRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("t-1", "c-1", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasSubjectGrant(context.Background(), "t-1", "c-1", "sub-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantRepositoryReassignHomeroomClosesAndOpens(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGrantRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE homeroom_grants SET until = $1")).
		WithArgs(sqlmock.AnyArg(), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO homeroom_grants")).
		WithArgs(sqlmock.AnyArg(), "t-2", "c-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	grant, err := repo.ReassignHomeroom(context.Background(), "c-1", "t-2")
	require.NoError(t, err)
	require.Equal(t, "t-2", grant.TeacherID)
	require.Nil(t, grant.Until)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantRepositoryReassignHomeroomRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGrantRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE homeroom_grants SET until = $1")).
		WithArgs(sqlmock.AnyArg(), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO homeroom_grants")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err := repo.ReassignHomeroom(context.Background(), "c-1", "t-2")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
