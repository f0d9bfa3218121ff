package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type enrollmentRepoStub struct {
	entries   []models.RosterEntry
	listErr   error
	updates   [][]models.ListNumberUpdate
	updateErr error
}

func (s *enrollmentRepoStub) ListRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	return s.entries, s.listErr
}

func (s *enrollmentRepoStub) UpdateListNumbers(ctx context.Context, courseID string, updates []models.ListNumberUpdate) error {
	s.updates = append(s.updates, updates)
	return s.updateErr
}

type rosterAccessStub struct {
	viewErr error
	editErr error
}

func (s rosterAccessStub) RequireViewCourse(ctx context.Context, teacherID, courseID string) error {
	return s.viewErr
}

func (s rosterAccessStub) RequireEditRoster(ctx context.Context, teacherID, courseID string) error {
	return s.editErr
}

func intPtr(v int) *int {
	return &v
}

func TestOrderNumberedBeforeUnnumbered(t *testing.T) {
	svc := NewRosterService(&enrollmentRepoStub{}, rosterAccessStub{}, "es", nil, nil)

	entries := []models.RosterEntry{
		{StudentID: "st-3", FirstName: "Carla", LastName: "Zapata"},
		{StudentID: "st-2", FirstName: "Benito", LastName: "Araya", ListNumber: intPtr(12)},
		{StudentID: "st-4", FirstName: "Ana", LastName: "Bravo"},
		{StudentID: "st-1", FirstName: "Diego", LastName: "Soto", ListNumber: intPtr(3)},
	}

	ordered := svc.Order(entries)
	require.Len(t, ordered, 4)
	assert.Equal(t, "st-1", ordered[0].StudentID)
	assert.Equal(t, "st-2", ordered[1].StudentID)
	// unnumbered follow, by last name
	assert.Equal(t, "st-4", ordered[2].StudentID)
	assert.Equal(t, "st-3", ordered[3].StudentID)
}

func TestOrderCollationIgnoresCaseAndAccents(t *testing.T) {
	svc := NewRosterService(&enrollmentRepoStub{}, rosterAccessStub{}, "es", nil, nil)

	entries := []models.RosterEntry{
		{StudentID: "st-1", FirstName: "Pedro", LastName: "Ñandú"},
		{StudentID: "st-2", FirstName: "Rosa", LastName: "Álvarez"},
		{StudentID: "st-3", FirstName: "Juan", LastName: "alarcón"},
	}

	ordered := svc.Order(entries)
	assert.Equal(t, "st-3", ordered[0].StudentID)
	assert.Equal(t, "st-2", ordered[1].StudentID)
	assert.Equal(t, "st-1", ordered[2].StudentID)
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	svc := NewRosterService(&enrollmentRepoStub{}, rosterAccessStub{}, "es", nil, nil)

	entries := []models.RosterEntry{
		{StudentID: "st-b", FirstName: "B", LastName: "B"},
		{StudentID: "st-a", FirstName: "A", LastName: "A"},
	}
	_ = svc.Order(entries)
	assert.Equal(t, "st-b", entries[0].StudentID)
}

func TestRosterRequiresCourseView(t *testing.T) {
	access := rosterAccessStub{viewErr: appErrors.Clone(appErrors.ErrForbidden, "")}
	svc := NewRosterService(&enrollmentRepoStub{}, access, "es", nil, nil)

	_, err := svc.Roster(context.Background(), "t-1", "c-1")
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestAutoNumberFollowsDisplayOrder(t *testing.T) {
	repo := &enrollmentRepoStub{entries: []models.RosterEntry{
		{StudentID: "st-2", FirstName: "Benito", LastName: "Araya"},
		{StudentID: "st-1", FirstName: "Diego", LastName: "Soto", ListNumber: intPtr(5)},
	}}
	svc := NewRosterService(repo, rosterAccessStub{}, "es", nil, nil)

	updates, err := svc.AutoNumber(context.Background(), "t-1", "c-1")
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "st-1", updates[0].StudentID)
	assert.Equal(t, 1, *updates[0].Number)
	assert.Equal(t, "st-2", updates[1].StudentID)
	assert.Equal(t, 2, *updates[1].Number)
	assert.Empty(t, repo.updates, "auto-number must not write")
}

func TestSetListNumbersHomeroomOnly(t *testing.T) {
	repo := &enrollmentRepoStub{}
	access := rosterAccessStub{editErr: appErrors.Clone(appErrors.ErrForbidden, "")}
	svc := NewRosterService(repo, access, "es", nil, nil)

	err := svc.SetListNumbers(context.Background(), "t-1", "c-1", []models.ListNumberUpdate{{StudentID: "st-1", Number: intPtr(1)}})
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, repo.updates)
}

func TestSetListNumbersRejectsUnknownStudent(t *testing.T) {
	repo := &enrollmentRepoStub{entries: []models.RosterEntry{{StudentID: "st-1", FirstName: "A", LastName: "A"}}}
	svc := NewRosterService(repo, rosterAccessStub{}, "es", nil, nil)

	err := svc.SetListNumbers(context.Background(), "t-1", "c-1", []models.ListNumberUpdate{{StudentID: "st-9", Number: intPtr(1)}})
	require.ErrorIs(t, err, appErrors.ErrNotInRoster)
	assert.Empty(t, repo.updates)
}

func TestSetListNumbersRejectsOutOfRange(t *testing.T) {
	repo := &enrollmentRepoStub{entries: []models.RosterEntry{{StudentID: "st-1", FirstName: "A", LastName: "A"}}}
	svc := NewRosterService(repo, rosterAccessStub{}, "es", nil, nil)

	for _, number := range []int{0, 1000, -4} {
		err := svc.SetListNumbers(context.Background(), "t-1", "c-1", []models.ListNumberUpdate{{StudentID: "st-1", Number: intPtr(number)}})
		require.ErrorIs(t, err, appErrors.ErrOutOfRange, "number %d", number)
	}
	assert.Empty(t, repo.updates)
}

func TestSetListNumbersRejectsDuplicateStudent(t *testing.T) {
	repo := &enrollmentRepoStub{entries: []models.RosterEntry{{StudentID: "st-1", FirstName: "A", LastName: "A"}}}
	svc := NewRosterService(repo, rosterAccessStub{}, "es", nil, nil)

	err := svc.SetListNumbers(context.Background(), "t-1", "c-1", []models.ListNumberUpdate{
		{StudentID: "st-1", Number: intPtr(1)},
		{StudentID: "st-1", Number: intPtr(2)},
	})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.updates)
}

func TestSetListNumbersAppliesBatch(t *testing.T) {
	repo := &enrollmentRepoStub{entries: []models.RosterEntry{
		{StudentID: "st-1", FirstName: "A", LastName: "A"},
		{StudentID: "st-2", FirstName: "B", LastName: "B"},
	}}
	svc := NewRosterService(repo, rosterAccessStub{}, "es", nil, nil)

	updates := []models.ListNumberUpdate{
		{StudentID: "st-1", Number: intPtr(2)},
		{StudentID: "st-2", Number: nil},
	}
	require.NoError(t, svc.SetListNumbers(context.Background(), "t-1", "c-1", updates))
	require.Len(t, repo.updates, 1)
	assert.Equal(t, updates, repo.updates[0])
}
