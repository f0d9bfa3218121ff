package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfolio/record-api/internal/middleware"
	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
	"github.com/classfolio/record-api/pkg/response"
)

type rosterServiceMock struct {
	entries      []models.RosterEntry
	rosterErr    error
	setErr       error
	setCalled    bool
	lastCourse   string
	lastTeacher  string
	lastUpdates  []models.ListNumberUpdate
	rosterCalled bool
}

func (m *rosterServiceMock) Roster(ctx context.Context, teacherID, courseID string) ([]models.RosterEntry, error) {
	m.rosterCalled = true
	m.lastTeacher = teacherID
	m.lastCourse = courseID
	return m.entries, m.rosterErr
}

func (m *rosterServiceMock) AutoNumber(ctx context.Context, teacherID, courseID string) ([]models.ListNumberUpdate, error) {
	return nil, nil
}

func (m *rosterServiceMock) SetListNumbers(ctx context.Context, teacherID, courseID string, updates []models.ListNumberUpdate) error {
	m.setCalled = true
	m.lastTeacher = teacherID
	m.lastCourse = courseID
	m.lastUpdates = updates
	return m.setErr
}

func testContext(w *httptest.ResponseRecorder, method, target string, body []byte) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, r
}

func TestRosterHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterServiceMock{entries: []models.RosterEntry{{StudentID: "st-1", FirstName: "Ana", LastName: "Bravo"}}}
	handler := NewRosterHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := testContext(w, http.MethodGet, "/courses/c-1/roster", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}}
	c.Set(middleware.ContextUserKey, &models.TeacherClaims{TeacherID: "t-1"})

	handler.Roster(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.rosterCalled)
	assert.Equal(t, "t-1", mockSvc.lastTeacher)
	assert.Equal(t, "c-1", mockSvc.lastCourse)
}

func TestRosterHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterServiceMock{}
	handler := NewRosterHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := testContext(w, http.MethodGet, "/courses/c-1/roster", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}}

	handler.Roster(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.rosterCalled)
}

func TestRosterHandlerSetListNumbersInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterServiceMock{}
	handler := NewRosterHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := testContext(w, http.MethodPut, "/courses/c-1/roster/list-numbers", []byte(`{"student_id":`))
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}}
	c.Set(middleware.ContextUserKey, &models.TeacherClaims{TeacherID: "t-1"})

	handler.SetListNumbers(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.setCalled)
}

func TestRosterHandlerSetListNumbersForbiddenPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterServiceMock{setErr: appErrors.Clone(appErrors.ErrForbidden, "")}
	handler := NewRosterHandler(mockSvc)

	payload, _ := json.Marshal([]models.ListNumberUpdate{{StudentID: "st-1"}})
	w := httptest.NewRecorder()
	c, _ := testContext(w, http.MethodPut, "/courses/c-1/roster/list-numbers", payload)
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}}
	c.Set(middleware.ContextUserKey, &models.TeacherClaims{TeacherID: "t-1"})

	handler.SetListNumbers(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrForbidden.Code, envelope.Error.Code)
}

func TestRosterHandlerSetListNumbersOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterServiceMock{}
	handler := NewRosterHandler(mockSvc)

	one := 1
	payload, _ := json.Marshal([]models.ListNumberUpdate{{StudentID: "st-1", Number: &one}})
	w := httptest.NewRecorder()
	c, _ := testContext(w, http.MethodPut, "/courses/c-1/roster/list-numbers", payload)
	c.Params = gin.Params{{Key: "courseId", Value: "c-1"}}
	c.Set(middleware.ContextUserKey, &models.TeacherClaims{TeacherID: "t-1"})

	handler.SetListNumbers(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, mockSvc.lastUpdates, 1)
	assert.Equal(t, "st-1", mockSvc.lastUpdates[0].StudentID)
}
