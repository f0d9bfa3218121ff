package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type grantRepository interface {
	SubjectGrants(ctx context.Context, teacherID string) ([]models.SubjectGrant, error)
	HasSubjectGrant(ctx context.Context, teacherID, courseID, subjectID string) (bool, error)
	HasActiveHomeroom(ctx context.Context, teacherID, courseID string) (bool, error)
	ActiveHomeroom(ctx context.Context, courseID string) (*models.HomeroomGrant, error)
	HomeroomHistory(ctx context.Context, courseID string) ([]models.HomeroomGrant, error)
	ReassignHomeroom(ctx context.Context, courseID, teacherID string) (*models.HomeroomGrant, error)
}

// AccessService decides what a teacher identity may do with a (course,
// subject) pair. SubjectGrant and HomeroomGrant are independent facts
// composed per operation; there is no role hierarchy.
type AccessService struct {
	grants    grantRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccessService constructs the access service.
func NewAccessService(grants grantRepository, validate *validator.Validate, logger *zap.Logger) *AccessService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{grants: grants, validator: validate, logger: logger}
}

// CanView reports whether the teacher may read marks or attendance for the
// pair: assigned subject teacher OR active homeroom teacher of the course.
func (s *AccessService) CanView(ctx context.Context, teacherID, courseID, subjectID string) (bool, error) {
	granted, err := s.grants.HasSubjectGrant(ctx, teacherID, courseID, subjectID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject grant")
	}
	if granted {
		return true, nil
	}
	homeroom, err := s.grants.HasActiveHomeroom(ctx, teacherID, courseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check homeroom grant")
	}
	return homeroom, nil
}

// CanEditMarks uses the same predicate as CanView: homeroom teachers may
// correct marks for subjects of their own course.
func (s *AccessService) CanEditMarks(ctx context.Context, teacherID, courseID, subjectID string) (bool, error) {
	return s.CanView(ctx, teacherID, courseID, subjectID)
}

// CanEditRoster is a homeroom-exclusive privilege regardless of subject
// grants.
func (s *AccessService) CanEditRoster(ctx context.Context, teacherID, courseID string) (bool, error) {
	homeroom, err := s.grants.HasActiveHomeroom(ctx, teacherID, courseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check homeroom grant")
	}
	return homeroom, nil
}

// CanCreateAssessment requires the subject grant; homeroom status alone does
// not authorize creating evaluations in a subject the teacher does not own.
func (s *AccessService) CanCreateAssessment(ctx context.Context, teacherID, courseID, subjectID string) (bool, error) {
	granted, err := s.grants.HasSubjectGrant(ctx, teacherID, courseID, subjectID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject grant")
	}
	return granted, nil
}

// CanViewCourse grants course-level reads (roster, cohort rollups) to the
// homeroom teacher or any teacher with a subject grant on the course.
func (s *AccessService) CanViewCourse(ctx context.Context, teacherID, courseID string) (bool, error) {
	homeroom, err := s.grants.HasActiveHomeroom(ctx, teacherID, courseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check homeroom grant")
	}
	if homeroom {
		return true, nil
	}
	grants, err := s.grants.SubjectGrants(ctx, teacherID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject grants")
	}
	for _, grant := range grants {
		if grant.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

// forbidden is the uniform denial: callers cannot tell "pair does not exist"
// apart from "access denied".
func (s *AccessService) forbidden() error {
	return appErrors.Clone(appErrors.ErrForbidden, "")
}

// RequireView fails with the uniform FORBIDDEN when CanView is false.
func (s *AccessService) RequireView(ctx context.Context, teacherID, courseID, subjectID string) error {
	ok, err := s.CanView(ctx, teacherID, courseID, subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return s.forbidden()
	}
	return nil
}

// RequireEditMarks fails with FORBIDDEN when CanEditMarks is false.
func (s *AccessService) RequireEditMarks(ctx context.Context, teacherID, courseID, subjectID string) error {
	ok, err := s.CanEditMarks(ctx, teacherID, courseID, subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return s.forbidden()
	}
	return nil
}

// RequireEditRoster fails with FORBIDDEN when CanEditRoster is false.
func (s *AccessService) RequireEditRoster(ctx context.Context, teacherID, courseID string) error {
	ok, err := s.CanEditRoster(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return s.forbidden()
	}
	return nil
}

// RequireCreateAssessment fails with FORBIDDEN when CanCreateAssessment is
// false.
func (s *AccessService) RequireCreateAssessment(ctx context.Context, teacherID, courseID, subjectID string) error {
	ok, err := s.CanCreateAssessment(ctx, teacherID, courseID, subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return s.forbidden()
	}
	return nil
}

// RequireViewCourse fails with FORBIDDEN when CanViewCourse is false.
func (s *AccessService) RequireViewCourse(ctx context.Context, teacherID, courseID string) error {
	ok, err := s.CanViewCourse(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return s.forbidden()
	}
	return nil
}

// HomeroomView pairs the active grant with the course's assignment history.
type HomeroomView struct {
	Active  *models.HomeroomGrant  `json:"active,omitempty"`
	History []models.HomeroomGrant `json:"history"`
}

// Homeroom returns the current homeroom teacher of a course and the
// assignment history.
func (s *AccessService) Homeroom(ctx context.Context, courseID string) (*HomeroomView, error) {
	history, err := s.grants.HomeroomHistory(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homeroom history")
	}
	view := &HomeroomView{History: history}
	active, err := s.grants.ActiveHomeroom(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return view, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homeroom")
	}
	view.Active = active
	return view, nil
}

// AssignHomeroomRequest names the course and the incoming homeroom teacher.
type AssignHomeroomRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// AssignHomeroom replaces the homeroom teacher of a course. Closing the old
// interval and opening the new one happen in one transaction so the course
// never observes zero or two active homeroom teachers.
func (s *AccessService) AssignHomeroom(ctx context.Context, req AssignHomeroomRequest) (*models.HomeroomGrant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homeroom payload")
	}
	grant, err := s.grants.ReassignHomeroom(ctx, req.CourseID, req.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign homeroom")
	}
	s.logger.Info("homeroom reassigned",
		zap.String("course_id", req.CourseID),
		zap.String("teacher_id", req.TeacherID),
	)
	return grant, nil
}
