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

type homeroomAccessService interface {
	RequireViewCourse(ctx context.Context, teacherID, courseID string) error
	Homeroom(ctx context.Context, courseID string) (*service.HomeroomView, error)
	AssignHomeroom(ctx context.Context, req service.AssignHomeroomRequest) (*models.HomeroomGrant, error)
}

// HomeroomHandler exposes homeroom assignment endpoints.
type HomeroomHandler struct {
	access homeroomAccessService
}

// NewHomeroomHandler constructs the handler.
func NewHomeroomHandler(access homeroomAccessService) *HomeroomHandler {
	return &HomeroomHandler{access: access}
}

// Get godoc
// @Summary Current homeroom teacher and assignment history
// @Tags Homeroom
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/homeroom [get]
func (h *HomeroomHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.access.RequireViewCourse(c.Request.Context(), claims.TeacherID, c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.access.Homeroom(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Assign godoc
// @Summary Replace the homeroom teacher of a course
// @Tags Homeroom
// @Accept json
// @Produce json
// @Param courseId path string true "Course id"
// @Param payload body service.AssignHomeroomRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/homeroom [put]
func (h *HomeroomHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AssignHomeroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.CourseID = c.Param("courseId")
	grant, err := h.access.AssignHomeroom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}
