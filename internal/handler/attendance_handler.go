package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classfolio/record-api/internal/models"
	"github.com/classfolio/record-api/internal/service"
	appErrors "github.com/classfolio/record-api/pkg/errors"
	"github.com/classfolio/record-api/pkg/response"
)

type attendanceService interface {
	GetOrCreateSession(ctx context.Context, teacherID string, req service.SessionRequest) (*models.AttendanceSession, error)
	GetSession(ctx context.Context, teacherID, sessionID string) (*models.SessionView, error)
	RecordMarks(ctx context.Context, teacherID, sessionID string, updates []service.AttendanceMarkUpdate) error
	StudentSummary(ctx context.Context, teacherID, courseID, subjectID, studentID string) (*models.AttendanceSummary, error)
}

// AttendanceHandler exposes session and presence-mark endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// GetOrCreateSession godoc
// @Summary Resolve the session for a meeting, creating it when absent
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.SessionRequest true "Session key"
// @Success 200 {object} response.Envelope
// @Router /attendance/sessions [post]
func (h *AttendanceHandler) GetOrCreateSession(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.attendance.GetOrCreateSession(c.Request.Context(), claims.TeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// GetSession godoc
// @Summary Session with its ordered roster and marks
// @Tags Attendance
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} response.Envelope
// @Router /attendance/sessions/{id} [get]
func (h *AttendanceHandler) GetSession(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.attendance.GetSession(c.Request.Context(), claims.TeacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// RecordMarks godoc
// @Summary Record presence marks for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body []service.AttendanceMarkUpdate true "Marks payload"
// @Success 204
// @Router /attendance/sessions/{id}/marks [put]
func (h *AttendanceHandler) RecordMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var updates []service.AttendanceMarkUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.RecordMarks(c.Request.Context(), claims.TeacherID, c.Param("id"), updates); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StudentSummary godoc
// @Summary Attendance counters for one student in a course subject
// @Tags Attendance
// @Produce json
// @Param courseId path string true "Course id"
// @Param subjectId path string true "Subject id"
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/subjects/{subjectId}/students/{studentId}/attendance [get]
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.attendance.StudentSummary(c.Request.Context(), claims.TeacherID, c.Param("courseId"), c.Param("subjectId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
