package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type assessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByCourseSubject(ctx context.Context, courseID, subjectID string) ([]models.Assessment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	CountByScope(ctx context.Context, courseID, subjectID string, term models.Term) (int, error)
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error
}

type markRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) error
	ListForScope(ctx context.Context, courseID, subjectID string) ([]models.Mark, error)
	ListForCourse(ctx context.Context, courseID string) ([]models.Mark, error)
}

type rosterProvider interface {
	Ordered(ctx context.Context, courseID string) ([]models.RosterEntry, error)
}

type gradeAccessChecker interface {
	RequireView(ctx context.Context, teacherID, courseID, subjectID string) error
	RequireEditMarks(ctx context.Context, teacherID, courseID, subjectID string) error
	RequireCreateAssessment(ctx context.Context, teacherID, courseID, subjectID string) error
	RequireViewCourse(ctx context.Context, teacherID, courseID string) error
}

// CreateAssessmentRequest is the payload for creating an evaluation. Title
// is optional; an empty title becomes "Evaluation {n}" within the scope.
type CreateAssessmentRequest struct {
	CourseID  string     `json:"course_id" validate:"required"`
	SubjectID string     `json:"subject_id" validate:"required"`
	Term      string     `json:"term" validate:"required,term"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date"`
	Weight    *float64   `json:"weight" validate:"omitempty,gte=0"`
}

// UpdateAssessmentRequest rewrites the mutable assessment fields.
type UpdateAssessmentRequest struct {
	Term    string     `json:"term" validate:"required,term"`
	Title   string     `json:"title" validate:"required"`
	DueDate *time.Time `json:"due_date"`
	Weight  *float64   `json:"weight" validate:"omitempty,gte=0"`
}

// RecordMarkRequest upserts one student's score on an assessment.
type RecordMarkRequest struct {
	AssessmentID string  `json:"assessment_id" validate:"required"`
	StudentID    string  `json:"student_id" validate:"required"`
	Value        float64 `json:"value"`
}

// GradeService owns assessments, marks and the average computations. The
// averaging contract is strictly unweighted; assessment weight is stored
// metadata only.
type GradeService struct {
	assessments assessmentRepository
	marks       markRepository
	roster      rosterProvider
	access      gradeAccessChecker
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(assessments assessmentRepository, marks markRepository, roster rosterProvider, access gradeAccessChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &GradeService{
		assessments: assessments,
		marks:       marks,
		roster:      roster,
		access:      access,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
	svc.validator.RegisterValidation("term", func(fl validator.FieldLevel) bool {
		return models.Term(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// CreateAssessment creates an evaluation in a (course, subject, term) scope.
// Subject grant required; homeroom status alone does not qualify.
func (s *GradeService) CreateAssessment(ctx context.Context, teacherID string, req CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if err := s.access.RequireCreateAssessment(ctx, teacherID, req.CourseID, req.SubjectID); err != nil {
		return nil, err
	}
	term := models.Term(strings.ToUpper(req.Term))
	title := strings.TrimSpace(req.Title)
	if title == "" {
		count, err := s.assessments.CountByScope(ctx, req.CourseID, req.SubjectID, term)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assessments")
		}
		title = fmt.Sprintf("Evaluation %d", count+1)
	}
	assessment := &models.Assessment{
		CourseID:  req.CourseID,
		SubjectID: req.SubjectID,
		Term:      term,
		Title:     title,
		DueDate:   req.DueDate,
		Weight:    req.Weight,
		CreatedBy: teacherID,
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrDuplicateTitle.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	s.invalidateCourse(ctx, req.CourseID)
	return assessment, nil
}

// UpdateAssessment rewrites title, date, weight and term; owning teacher
// only.
func (s *GradeService) UpdateAssessment(ctx context.Context, teacherID, assessmentID string, req UpdateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	assessment, err := s.loadOwnedAssessment(ctx, teacherID, assessmentID)
	if err != nil {
		return nil, err
	}
	assessment.Term = models.Term(strings.ToUpper(req.Term))
	assessment.Title = strings.TrimSpace(req.Title)
	assessment.DueDate = req.DueDate
	assessment.Weight = req.Weight
	if err := s.assessments.Update(ctx, assessment); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrDuplicateTitle.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}
	s.invalidateCourse(ctx, assessment.CourseID)
	return assessment, nil
}

// DeleteAssessment removes an evaluation; owning teacher only.
func (s *GradeService) DeleteAssessment(ctx context.Context, teacherID, assessmentID string) error {
	assessment, err := s.loadOwnedAssessment(ctx, teacherID, assessmentID)
	if err != nil {
		return err
	}
	if err := s.assessments.Delete(ctx, assessmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessment")
	}
	s.invalidateCourse(ctx, assessment.CourseID)
	return nil
}

// ListAssessments returns the evaluations of a (course, subject) for an
// authorized teacher.
func (s *GradeService) ListAssessments(ctx context.Context, teacherID, courseID, subjectID string) ([]models.Assessment, error) {
	if err := s.access.RequireView(ctx, teacherID, courseID, subjectID); err != nil {
		return nil, err
	}
	assessments, err := s.assessments.ListByCourseSubject(ctx, courseID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// RecordMark validates and upserts one score. Re-recording replaces the
// previous value for (assessment, student).
func (s *GradeService) RecordMark(ctx context.Context, teacherID string, req RecordMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if req.Value < models.MinMarkValue || req.Value > models.MaxMarkValue {
		return nil, appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("mark %.2f outside [%.1f, %.1f]", req.Value, models.MinMarkValue, models.MaxMarkValue))
	}
	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if err := s.access.RequireEditMarks(ctx, teacherID, assessment.CourseID, assessment.SubjectID); err != nil {
		return nil, err
	}
	roster, err := s.roster.Ordered(ctx, assessment.CourseID)
	if err != nil {
		return nil, err
	}
	if !rosterContains(roster, req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrStudentNotInCourse, fmt.Sprintf("student %s is not enrolled in course %s", req.StudentID, assessment.CourseID))
	}
	mark := &models.Mark{AssessmentID: req.AssessmentID, StudentID: req.StudentID, Value: req.Value}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record mark")
	}
	s.invalidateCourse(ctx, assessment.CourseID)
	return mark, nil
}

// StudentAverages computes one student's term and final averages for a
// subject.
func (s *GradeService) StudentAverages(ctx context.Context, teacherID, courseID, subjectID, studentID string) (*models.TermAverages, error) {
	if err := s.access.RequireView(ctx, teacherID, courseID, subjectID); err != nil {
		return nil, err
	}
	assessments, marks, err := s.loadScope(ctx, courseID, subjectID)
	if err != nil {
		return nil, err
	}
	averages := computeTermAverages(termIndex(assessments), marksOf(marks, studentID))
	return &averages, nil
}

// SubjectSheet composes the ordered roster with every student's averages
// for a (course, subject): the grade-sheet view.
func (s *GradeService) SubjectSheet(ctx context.Context, teacherID, courseID, subjectID string) (*models.SubjectSheet, error) {
	if err := s.access.RequireView(ctx, teacherID, courseID, subjectID); err != nil {
		return nil, err
	}
	assessments, marks, err := s.loadScope(ctx, courseID, subjectID)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.Ordered(ctx, courseID)
	if err != nil {
		return nil, err
	}
	terms := termIndex(assessments)
	byStudent := groupMarks(marks)
	sheet := &models.SubjectSheet{
		CourseID:    courseID,
		SubjectID:   subjectID,
		Assessments: assessments,
		Students:    make([]models.StudentSubjectAverages, len(roster)),
	}
	for i, entry := range roster {
		sheet.Students[i] = models.StudentSubjectAverages{
			StudentID:  entry.StudentID,
			FirstName:  entry.FirstName,
			LastName:   entry.LastName,
			ListNumber: entry.ListNumber,
			Averages:   computeTermAverages(terms, byStudent[entry.StudentID]),
		}
	}
	return sheet, nil
}

// CourseAverages produces the cohort rollup per subject: the mean of
// students' known values, unset students excluded from numerator and
// denominator alike. Results are cached when a cache service is wired.
func (s *GradeService) CourseAverages(ctx context.Context, teacherID, courseID string) (*models.CourseAverages, error) {
	if err := s.access.RequireViewCourse(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	cacheKey := courseAveragesKey(courseID)
	if s.cache.Enabled() {
		var cached models.CourseAverages
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}
	assessments, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course assessments")
	}
	marks, err := s.marks.ListForCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course marks")
	}
	roster, err := s.roster.Ordered(ctx, courseID)
	if err != nil {
		return nil, err
	}

	bySubject := make(map[string][]models.Assessment)
	subjectOrder := make([]string, 0)
	for _, assessment := range assessments {
		if _, ok := bySubject[assessment.SubjectID]; !ok {
			subjectOrder = append(subjectOrder, assessment.SubjectID)
		}
		bySubject[assessment.SubjectID] = append(bySubject[assessment.SubjectID], assessment)
	}
	byStudent := groupMarks(marks)

	result := &models.CourseAverages{CourseID: courseID}
	for _, subjectID := range subjectOrder {
		terms := termIndex(bySubject[subjectID])
		var term1s, term2s, finals []float64
		for _, entry := range roster {
			averages := computeTermAverages(terms, byStudent[entry.StudentID])
			if averages.Term1 != nil {
				term1s = append(term1s, *averages.Term1)
			}
			if averages.Term2 != nil {
				term2s = append(term2s, *averages.Term2)
			}
			if averages.Final != nil {
				finals = append(finals, *averages.Final)
			}
		}
		result.Subjects = append(result.Subjects, models.CourseSubjectAverages{
			SubjectID: subjectID,
			Students:  len(roster),
			Averages: models.TermAverages{
				Term1: roundedMean(term1s),
				Term2: roundedMean(term2s),
				Final: roundedMean(finals),
			},
		})
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, nil
}

func (s *GradeService) loadScope(ctx context.Context, courseID, subjectID string) ([]models.Assessment, []models.Mark, error) {
	assessments, err := s.assessments.ListByCourseSubject(ctx, courseID, subjectID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	marks, err := s.marks.ListForScope(ctx, courseID, subjectID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return assessments, marks, nil
}

func (s *GradeService) loadOwnedAssessment(ctx context.Context, teacherID, assessmentID string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if assessment.CreatedBy != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return assessment, nil
}

func (s *GradeService) invalidateCourse(ctx context.Context, courseID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, courseAveragesKey(courseID)); err != nil {
		s.logger.Warn("course averages cache invalidation failed", zap.String("course_id", courseID), zap.Error(err))
	}
}

func courseAveragesKey(courseID string) string {
	return "averages:course:" + courseID
}

// roundToTenth rounds half away from zero at the 0.1 granularity:
// 6.25 -> 6.3, 6.24 -> 6.2.
func roundToTenth(v float64) float64 {
	if v < 0 {
		return math.Ceil(v*10-0.5) / 10
	}
	return math.Floor(v*10+0.5) / 10
}

// computeTermAverages is the core averaging contract: unweighted arithmetic
// mean over present marks per instructional term, diagnostic marks ignored,
// rounding applied once per term. A term with no marks stays unset.
func computeTermAverages(terms map[string]models.Term, marks []models.Mark) models.TermAverages {
	var sum1, sum2 float64
	var n1, n2 int
	for _, mark := range marks {
		switch terms[mark.AssessmentID] {
		case models.TermFirst:
			sum1 += mark.Value
			n1++
		case models.TermSecond:
			sum2 += mark.Value
			n2++
		}
	}
	var averages models.TermAverages
	if n1 > 0 {
		v := roundToTenth(sum1 / float64(n1))
		averages.Term1 = &v
	}
	if n2 > 0 {
		v := roundToTenth(sum2 / float64(n2))
		averages.Term2 = &v
	}
	averages.Final = finalAverage(averages.Term1, averages.Term2)
	return averages
}

// finalAverage combines the already-rounded term values: mean of both when
// both are set, the set one otherwise, unset when neither exists.
func finalAverage(term1, term2 *float64) *float64 {
	switch {
	case term1 != nil && term2 != nil:
		v := roundToTenth((*term1 + *term2) / 2)
		return &v
	case term1 != nil:
		v := *term1
		return &v
	case term2 != nil:
		v := *term2
		return &v
	default:
		return nil
	}
}

func roundedMean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := roundToTenth(sum / float64(len(values)))
	return &mean
}

func termIndex(assessments []models.Assessment) map[string]models.Term {
	terms := make(map[string]models.Term, len(assessments))
	for _, assessment := range assessments {
		terms[assessment.ID] = assessment.Term
	}
	return terms
}

func groupMarks(marks []models.Mark) map[string][]models.Mark {
	grouped := make(map[string][]models.Mark)
	for _, mark := range marks {
		grouped[mark.StudentID] = append(grouped[mark.StudentID], mark)
	}
	return grouped
}

func marksOf(marks []models.Mark, studentID string) []models.Mark {
	var own []models.Mark
	for _, mark := range marks {
		if mark.StudentID == studentID {
			own = append(own, mark)
		}
	}
	return own
}

func rosterContains(roster []models.RosterEntry, studentID string) bool {
	for _, entry := range roster {
		if entry.StudentID == studentID {
			return true
		}
	}
	return false
}
