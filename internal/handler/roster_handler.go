package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
	"github.com/classfolio/record-api/pkg/response"
)

type rosterService interface {
	Roster(ctx context.Context, teacherID, courseID string) ([]models.RosterEntry, error)
	AutoNumber(ctx context.Context, teacherID, courseID string) ([]models.ListNumberUpdate, error)
	SetListNumbers(ctx context.Context, teacherID, courseID string, updates []models.ListNumberUpdate) error
}

// RosterHandler exposes roster ordering and list-number endpoints.
type RosterHandler struct {
	roster rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(roster rosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Roster godoc
// @Summary Get the ordered course roster
// @Tags Roster
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/roster [get]
func (h *RosterHandler) Roster(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.roster.Roster(c.Request.Context(), claims.TeacherID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AutoNumber godoc
// @Summary Propose list numbers following display order
// @Tags Roster
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/roster/auto-number [post]
func (h *RosterHandler) AutoNumber(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	updates, err := h.roster.AutoNumber(c.Request.Context(), claims.TeacherID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updates, nil)
}

// SetListNumbers godoc
// @Summary Apply a batch of list-number edits
// @Tags Roster
// @Accept json
// @Produce json
// @Param courseId path string true "Course id"
// @Param payload body []models.ListNumberUpdate true "List number updates"
// @Success 204
// @Router /courses/{courseId}/roster/list-numbers [put]
func (h *RosterHandler) SetListNumbers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var updates []models.ListNumberUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.roster.SetListNumbers(c.Request.Context(), claims.TeacherID, c.Param("courseId"), updates); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
