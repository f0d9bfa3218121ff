package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type attendanceRepository interface {
	InsertSession(ctx context.Context, session *models.AttendanceSession) (bool, error)
	FindSession(ctx context.Context, courseID, subjectID string, date time.Time, block string) (*models.AttendanceSession, error)
	FindSessionByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	UpsertMarks(ctx context.Context, marks []models.AttendanceMark) error
	ListMarks(ctx context.Context, sessionID string) ([]models.AttendanceMark, error)
	StudentSummary(ctx context.Context, courseID, subjectID, studentID string) (*models.AttendanceSummary, error)
}

type attendanceAccessChecker interface {
	RequireView(ctx context.Context, teacherID, courseID, subjectID string) error
	RequireEditMarks(ctx context.Context, teacherID, courseID, subjectID string) error
}

// SessionRequest names one (course, subject, date, block) meeting. Date uses
// the calendar-day form without a time component.
type SessionRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Block     string `json:"block" validate:"required"`
}

// AttendanceMarkUpdate carries one student's status in a RecordMarks batch.
type AttendanceMarkUpdate struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// AttendanceService manages meeting sessions and presence marks.
type AttendanceService struct {
	sessions  attendanceRepository
	roster    rosterProvider
	access    attendanceAccessChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(sessions attendanceRepository, roster rosterProvider, access attendanceAccessChecker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		sessions:  sessions,
		roster:    roster,
		access:    access,
		validator: validate,
		logger:    logger,
	}
}

// GetOrCreateSession resolves the session for a meeting key, creating it when
// absent. The insert is conditional on the unique key and a losing writer
// re-reads, so concurrent callers for the same meeting converge on one row.
func (s *AttendanceService) GetOrCreateSession(ctx context.Context, teacherID string, req SessionRequest) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if err := s.access.RequireEditMarks(ctx, teacherID, req.CourseID, req.SubjectID); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session date")
	}
	session := &models.AttendanceSession{
		CourseID:  req.CourseID,
		SubjectID: req.SubjectID,
		Date:      date,
		Block:     req.Block,
	}
	created, err := s.sessions.InsertSession(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	if created {
		s.logger.Info("attendance session created",
			zap.String("session_id", session.ID),
			zap.String("course_id", req.CourseID),
			zap.String("subject_id", req.SubjectID),
			zap.String("date", req.Date),
			zap.String("block", req.Block),
		)
		return session, nil
	}
	existing, err := s.sessions.FindSession(ctx, req.CourseID, req.SubjectID, date, req.Block)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return existing, nil
}

// RecordMarks validates the whole batch before any write: unknown statuses,
// duplicate students in the payload and students outside the roster all
// reject the batch untouched.
func (s *AttendanceService) RecordMarks(ctx context.Context, teacherID, sessionID string, updates []AttendanceMarkUpdate) error {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.access.RequireEditMarks(ctx, teacherID, session.CourseID, session.SubjectID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no attendance marks provided")
	}
	roster, err := s.roster.Ordered(ctx, session.CourseID)
	if err != nil {
		return err
	}
	enrolled := make(map[string]struct{}, len(roster))
	for _, entry := range roster {
		enrolled[entry.StudentID] = struct{}{}
	}
	marks := make([]models.AttendanceMark, len(updates))
	seen := make(map[string]struct{}, len(updates))
	for i, update := range updates {
		if err := s.validator.Struct(update); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance mark")
		}
		status := models.AttendanceStatus(strings.ToUpper(update.Status))
		if !status.Valid() {
			return appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown attendance status %q", update.Status))
		}
		if _, ok := seen[update.StudentID]; ok {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s appears twice in payload", update.StudentID))
		}
		seen[update.StudentID] = struct{}{}
		if _, ok := enrolled[update.StudentID]; !ok {
			return appErrors.Clone(appErrors.ErrStudentNotInCourse, fmt.Sprintf("student %s is not enrolled in course %s", update.StudentID, session.CourseID))
		}
		marks[i] = models.AttendanceMark{
			SessionID: sessionID,
			StudentID: update.StudentID,
			Status:    status,
		}
	}
	if err := s.sessions.UpsertMarks(ctx, marks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.logger.Info("attendance recorded",
		zap.String("session_id", sessionID),
		zap.Int("marks", len(marks)),
	)
	return nil
}

// GetSession composes the session with its ordered roster; students with no
// mark carry the unset sentinel rather than a default status.
func (s *AttendanceService) GetSession(ctx context.Context, teacherID, sessionID string) (*models.SessionView, error) {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.access.RequireView(ctx, teacherID, session.CourseID, session.SubjectID); err != nil {
		return nil, err
	}
	roster, err := s.roster.Ordered(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}
	marks, err := s.sessions.ListMarks(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance marks")
	}
	statusOf := make(map[string]models.AttendanceStatus, len(marks))
	for _, mark := range marks {
		statusOf[mark.StudentID] = mark.Status
	}
	view := &models.SessionView{
		Session: *session,
		Roster:  make([]models.SessionRosterRow, len(roster)),
	}
	for i, entry := range roster {
		status, ok := statusOf[entry.StudentID]
		if !ok {
			status = models.AttendanceStatusUnset
		}
		view.Roster[i] = models.SessionRosterRow{
			StudentID:  entry.StudentID,
			FirstName:  entry.FirstName,
			LastName:   entry.LastName,
			ListNumber: entry.ListNumber,
			Status:     status,
		}
	}
	return view, nil
}

// StudentSummary counts one student's statuses across every session of a
// (course, subject).
func (s *AttendanceService) StudentSummary(ctx context.Context, teacherID, courseID, subjectID, studentID string) (*models.AttendanceSummary, error) {
	if err := s.access.RequireView(ctx, teacherID, courseID, subjectID); err != nil {
		return nil, err
	}
	summary, err := s.sessions.StudentSummary(ctx, courseID, subjectID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance summary")
	}
	return summary, nil
}
