package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/classfolio/record-api/internal/models"
	appErrors "github.com/classfolio/record-api/pkg/errors"
)

type enrollmentRepository interface {
	ListRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error)
	UpdateListNumbers(ctx context.Context, courseID string, updates []models.ListNumberUpdate) error
}

type rosterAccessChecker interface {
	RequireViewCourse(ctx context.Context, teacherID, courseID string) error
	RequireEditRoster(ctx context.Context, teacherID, courseID string) error
}

// RosterService derives the single display ordering every sheet uses:
// list number ascending, unnumbered students after numbered ones, names
// compared with locale collation. "Row 7" means the same student on the
// grade sheet, the attendance sheet and the roster editor.
type RosterService struct {
	enrollments enrollmentRepository
	access      rosterAccessChecker
	locale      language.Tag
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRosterService constructs the roster service. locale selects the
// collation used for name tie-breaks; it falls back to Spanish when empty
// or unparseable.
func NewRosterService(enrollments enrollmentRepository, access rosterAccessChecker, locale string, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &RosterService{
		enrollments: enrollments,
		access:      access,
		locale:      tag,
		validator:   validate,
		logger:      logger,
	}
}

// Order sorts roster entries in place-independent fashion: numbered entries
// first by list number, then the unnumbered group; ties and the unnumbered
// group order by (last name, first name) under the configured collation.
func (s *RosterService) Order(entries []models.RosterEntry) []models.RosterEntry {
	ordered := make([]models.RosterEntry, len(entries))
	copy(ordered, entries)
	collator := collate.New(s.locale, collate.IgnoreCase)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rosterLess(collator, ordered[i], ordered[j])
	})
	return ordered
}

func rosterLess(collator *collate.Collator, a, b models.RosterEntry) bool {
	switch {
	case a.ListNumber != nil && b.ListNumber != nil:
		if *a.ListNumber != *b.ListNumber {
			return *a.ListNumber < *b.ListNumber
		}
	case a.ListNumber != nil:
		return true
	case b.ListNumber != nil:
		return false
	}
	if cmp := collator.CompareString(a.LastName, b.LastName); cmp != 0 {
		return cmp < 0
	}
	if cmp := collator.CompareString(a.FirstName, b.FirstName); cmp != 0 {
		return cmp < 0
	}
	return a.StudentID < b.StudentID
}

// Ordered returns the course roster in display order without an
// authorization check. It backs the other services, which gate on their own
// operation before composing the roster.
func (s *RosterService) Ordered(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	entries, err := s.enrollments.ListRoster(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return s.Order(entries), nil
}

// Roster returns the ordered roster for an authorized teacher.
func (s *RosterService) Roster(ctx context.Context, teacherID, courseID string) ([]models.RosterEntry, error) {
	if err := s.access.RequireViewCourse(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	return s.Ordered(ctx, courseID)
}

// AutoNumber proposes list numbers 1..N following the current display order.
// It never writes; the candidate list goes through SetListNumbers after
// review.
func (s *RosterService) AutoNumber(ctx context.Context, teacherID, courseID string) ([]models.ListNumberUpdate, error) {
	if err := s.access.RequireEditRoster(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	entries, err := s.Ordered(ctx, courseID)
	if err != nil {
		return nil, err
	}
	updates := make([]models.ListNumberUpdate, len(entries))
	for i, entry := range entries {
		number := i + 1
		updates[i] = models.ListNumberUpdate{StudentID: entry.StudentID, Number: &number}
	}
	return updates, nil
}

// SetListNumbers applies a batch of list-number edits. Every row is
// validated before any write so a rejected batch leaves the roster
// untouched, and the repository applies the batch in one transaction.
// Homeroom teachers only.
func (s *RosterService) SetListNumbers(ctx context.Context, teacherID, courseID string, updates []models.ListNumberUpdate) error {
	if err := s.access.RequireEditRoster(ctx, teacherID, courseID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no list number updates provided")
	}
	for _, update := range updates {
		if err := s.validator.Struct(update); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list number update")
		}
	}
	entries, err := s.enrollments.ListRoster(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	enrolled := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		enrolled[entry.StudentID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(updates))
	for _, update := range updates {
		if _, ok := seen[update.StudentID]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s appears twice in payload", update.StudentID))
		}
		seen[update.StudentID] = struct{}{}
		if _, ok := enrolled[update.StudentID]; !ok {
			return appErrors.Clone(appErrors.ErrNotInRoster, fmt.Sprintf("student %s is not enrolled in course %s", update.StudentID, courseID))
		}
		if update.Number != nil && (*update.Number < models.MinListNumber || *update.Number > models.MaxListNumber) {
			return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("list number %d outside [%d, %d]", *update.Number, models.MinListNumber, models.MaxListNumber))
		}
	}
	if err := s.enrollments.UpdateListNumbers(ctx, courseID, updates); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update list numbers")
	}
	s.logger.Info("roster renumbered", zap.String("course_id", courseID), zap.Int("updates", len(updates)))
	return nil
}
