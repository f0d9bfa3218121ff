package models

// List numbers live in a fixed range; null means "not yet numbered".
const (
	MinListNumber = 1
	MaxListNumber = 999
)

// Student mirrors a row from the external student registry. The engine never
// mutates it.
type Student struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// Enrollment registers a student in a course for a school year.
type Enrollment struct {
	ID         string `db:"id" json:"id"`
	CourseID   string `db:"course_id" json:"course_id"`
	StudentID  string `db:"student_id" json:"student_id"`
	SchoolYear int    `db:"school_year" json:"school_year"`
	ListNumber *int   `db:"list_number" json:"list_number,omitempty"`
}

// RosterEntry is an enrollment joined with student identity, the unit the
// ordering works on.
type RosterEntry struct {
	StudentID  string `db:"student_id" json:"student_id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	ListNumber *int   `db:"list_number" json:"list_number,omitempty"`
}

// ListNumberUpdate assigns (or clears, when Number is nil) a student's list
// number within a course roster.
type ListNumberUpdate struct {
	StudentID string `json:"student_id" validate:"required"`
	Number    *int   `json:"number"`
}
