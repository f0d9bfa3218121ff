package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type grantRepoStub struct {
	subjectPairs map[string]bool
	homerooms    map[string]bool
	grants       []models.SubjectGrant
	active       *models.HomeroomGrant
	history      []models.HomeroomGrant
	reassigned   []string
}

func pairKey(teacherID, courseID, subjectID string) string {
	return teacherID + "/" + courseID + "/" + subjectID
}

func (s *grantRepoStub) SubjectGrants(ctx context.Context, teacherID string) ([]models.SubjectGrant, error) {
	return s.grants, nil
}

func (s *grantRepoStub) HasSubjectGrant(ctx context.Context, teacherID, courseID, subjectID string) (bool, error) {
	return s.subjectPairs[pairKey(teacherID, courseID, subjectID)], nil
}

func (s *grantRepoStub) HasActiveHomeroom(ctx context.Context, teacherID, courseID string) (bool, error) {
	return s.homerooms[teacherID+"/"+courseID], nil
}

func (s *grantRepoStub) ActiveHomeroom(ctx context.Context, courseID string) (*models.HomeroomGrant, error) {
	if s.active == nil {
		return nil, sql.ErrNoRows
	}
	return s.active, nil
}

func (s *grantRepoStub) HomeroomHistory(ctx context.Context, courseID string) ([]models.HomeroomGrant, error) {
	return s.history, nil
}

func (s *grantRepoStub) ReassignHomeroom(ctx context.Context, courseID, teacherID string) (*models.HomeroomGrant, error) {
	s.reassigned = append(s.reassigned, courseID+"/"+teacherID)
	return &models.HomeroomGrant{ID: "hr-new", TeacherID: teacherID, CourseID: courseID, Since: time.Now()}, nil
}

func TestCanViewSubjectOrHomeroom(t *testing.T) {
	grants := &grantRepoStub{
		subjectPairs: map[string]bool{pairKey("t-subject", "c-1", "sub-1"): true},
		homerooms:    map[string]bool{"t-homeroom/c-1": true},
	}
	svc := NewAccessService(grants, nil, nil)

	cases := []struct {
		name    string
		teacher string
		want    bool
	}{
		{"subject teacher", "t-subject", true},
		{"homeroom teacher", "t-homeroom", true},
		{"stranger", "t-other", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.CanView(context.Background(), tc.teacher, "c-1", "sub-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestCanEditMarksMatchesCanView(t *testing.T) {
	grants := &grantRepoStub{homerooms: map[string]bool{"t-homeroom/c-1": true}}
	svc := NewAccessService(grants, nil, nil)

	ok, err := svc.CanEditMarks(context.Background(), "t-homeroom", "c-1", "sub-1")
	require.NoError(t, err)
	assert.True(t, ok, "homeroom teacher may correct marks in any subject of the course")
}

func TestCanEditRosterHomeroomOnly(t *testing.T) {
	grants := &grantRepoStub{
		subjectPairs: map[string]bool{pairKey("t-subject", "c-1", "sub-1"): true},
		homerooms:    map[string]bool{"t-homeroom/c-1": true},
	}
	svc := NewAccessService(grants, nil, nil)

	ok, err := svc.CanEditRoster(context.Background(), "t-subject", "c-1")
	require.NoError(t, err)
	assert.False(t, ok, "subject grant alone never edits the roster")

	ok, err = svc.CanEditRoster(context.Background(), "t-homeroom", "c-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanCreateAssessmentSubjectGrantOnly(t *testing.T) {
	grants := &grantRepoStub{
		subjectPairs: map[string]bool{pairKey("t-subject", "c-1", "sub-1"): true},
		homerooms:    map[string]bool{"t-homeroom/c-1": true},
	}
	svc := NewAccessService(grants, nil, nil)

	ok, err := svc.CanCreateAssessment(context.Background(), "t-homeroom", "c-1", "sub-1")
	require.NoError(t, err)
	assert.False(t, ok, "homeroom status alone never creates assessments")

	ok, err = svc.CanCreateAssessment(context.Background(), "t-subject", "c-1", "sub-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewCourseViaAnySubjectGrant(t *testing.T) {
	grants := &grantRepoStub{grants: []models.SubjectGrant{
		{TeacherID: "t-1", CourseID: "c-1", SubjectID: "sub-2"},
	}}
	svc := NewAccessService(grants, nil, nil)

	ok, err := svc.CanViewCourse(context.Background(), "t-1", "c-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanViewCourse(context.Background(), "t-1", "c-9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireViewUniformDenial(t *testing.T) {
	svc := NewAccessService(&grantRepoStub{}, nil, nil)

	err := svc.RequireView(context.Background(), "t-1", "c-ghost", "sub-ghost")
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	// denial carries the generic message whether or not the pair exists
	assert.Equal(t, appErrors.ErrForbidden.Message, appErrors.FromError(err).Message)
}

func TestHomeroomViewWithoutActiveGrant(t *testing.T) {
	until := time.Now().Add(-time.Hour)
	grants := &grantRepoStub{history: []models.HomeroomGrant{
		{ID: "hr-1", TeacherID: "t-1", CourseID: "c-1", Since: time.Now().Add(-48 * time.Hour), Until: &until},
	}}
	svc := NewAccessService(grants, nil, nil)

	view, err := svc.Homeroom(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Nil(t, view.Active)
	assert.Len(t, view.History, 1)
}

func TestAssignHomeroomDelegatesToRepository(t *testing.T) {
	grants := &grantRepoStub{}
	svc := NewAccessService(grants, nil, nil)

	grant, err := svc.AssignHomeroom(context.Background(), AssignHomeroomRequest{CourseID: "c-1", TeacherID: "t-2"})
	require.NoError(t, err)
	assert.Equal(t, "t-2", grant.TeacherID)
	assert.Equal(t, []string{"c-1/t-2"}, grants.reassigned)
}

func TestAssignHomeroomValidatesPayload(t *testing.T) {
	svc := NewAccessService(&grantRepoStub{}, nil, nil)

	_, err := svc.AssignHomeroom(context.Background(), AssignHomeroomRequest{CourseID: "c-1"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestHomeroomGrantActiveWindow(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(30 * 24 * time.Hour)
	grant := models.HomeroomGrant{Since: since, Until: &until}

	assert.False(t, grant.Active(since.Add(-time.Hour)))
	assert.True(t, grant.Active(since.Add(time.Hour)))
	assert.False(t, grant.Active(until.Add(time.Hour)))

	open := models.HomeroomGrant{Since: since}
	assert.True(t, open.Active(until.Add(365*24*time.Hour)))
}
