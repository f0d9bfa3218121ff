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

type gradeService interface {
	CreateAssessment(ctx context.Context, teacherID string, req service.CreateAssessmentRequest) (*models.Assessment, error)
	UpdateAssessment(ctx context.Context, teacherID, assessmentID string, req service.UpdateAssessmentRequest) (*models.Assessment, error)
	DeleteAssessment(ctx context.Context, teacherID, assessmentID string) error
	ListAssessments(ctx context.Context, teacherID, courseID, subjectID string) ([]models.Assessment, error)
	RecordMark(ctx context.Context, teacherID string, req service.RecordMarkRequest) (*models.Mark, error)
	SubjectSheet(ctx context.Context, teacherID, courseID, subjectID string) (*models.SubjectSheet, error)
	StudentAverages(ctx context.Context, teacherID, courseID, subjectID, studentID string) (*models.TermAverages, error)
	CourseAverages(ctx context.Context, teacherID, courseID string) (*models.CourseAverages, error)
}

// GradeHandler exposes assessment, mark and average endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// CreateAssessment godoc
// @Summary Create an assessment
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /assessments [post]
func (h *GradeHandler) CreateAssessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.grades.CreateAssessment(c.Request.Context(), claims.TeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// UpdateAssessment godoc
// @Summary Update an assessment
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Assessment id"
// @Param payload body service.UpdateAssessmentRequest true "Assessment payload"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [put]
func (h *GradeHandler) UpdateAssessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.grades.UpdateAssessment(c.Request.Context(), claims.TeacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// DeleteAssessment godoc
// @Summary Delete an assessment
// @Tags Grades
// @Param id path string true "Assessment id"
// @Success 204
// @Router /assessments/{id} [delete]
func (h *GradeHandler) DeleteAssessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grades.DeleteAssessment(c.Request.Context(), claims.TeacherID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAssessments godoc
// @Summary List assessments of a course subject
// @Tags Grades
// @Produce json
// @Param courseId path string true "Course id"
// @Param subjectId path string true "Subject id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/subjects/{subjectId}/assessments [get]
func (h *GradeHandler) ListAssessments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assessments, err := h.grades.ListAssessments(c.Request.Context(), claims.TeacherID, c.Param("courseId"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessments, nil)
}

// RecordMark godoc
// @Summary Record a student's mark on an assessment
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.RecordMarkRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /marks [post]
func (h *GradeHandler) RecordMark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.grades.RecordMark(c.Request.Context(), claims.TeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// SubjectSheet godoc
// @Summary Grade sheet for a course subject
// @Tags Grades
// @Produce json
// @Param courseId path string true "Course id"
// @Param subjectId path string true "Subject id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/subjects/{subjectId}/sheet [get]
func (h *GradeHandler) SubjectSheet(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sheet, err := h.grades.SubjectSheet(c.Request.Context(), claims.TeacherID, c.Param("courseId"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// StudentAverages godoc
// @Summary Term and final averages for one student in a subject
// @Tags Grades
// @Produce json
// @Param courseId path string true "Course id"
// @Param subjectId path string true "Subject id"
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/subjects/{subjectId}/students/{studentId}/averages [get]
func (h *GradeHandler) StudentAverages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	averages, err := h.grades.StudentAverages(c.Request.Context(), claims.TeacherID, c.Param("courseId"), c.Param("subjectId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}

// CourseAverages godoc
// @Summary Cohort averages per subject of a course
// @Tags Grades
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/averages [get]
func (h *GradeHandler) CourseAverages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	averages, err := h.grades.CourseAverages(c.Request.Context(), claims.TeacherID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}
