package models

// TermAverages carries the three-state per-term results for one scope. A nil
// pointer means "unset" (no marks present), never zero.
type TermAverages struct {
	Term1 *float64 `json:"term1"`
	Term2 *float64 `json:"term2"`
	Final *float64 `json:"final"`
}

// StudentSubjectAverages is one grade-sheet row: a student's term averages
// for a subject.
type StudentSubjectAverages struct {
	StudentID  string       `json:"student_id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	ListNumber *int         `json:"list_number,omitempty"`
	Averages   TermAverages `json:"averages"`
}

// SubjectSheet is the computed grade view for a (course, subject): the
// ordered roster with marks and averages per student.
type SubjectSheet struct {
	CourseID    string                   `json:"course_id"`
	SubjectID   string                   `json:"subject_id"`
	Assessments []Assessment             `json:"assessments"`
	Students    []StudentSubjectAverages `json:"students"`
}

// CourseSubjectAverages is the cohort rollup of one subject across a course.
type CourseSubjectAverages struct {
	SubjectID string       `json:"subject_id"`
	Students  int          `json:"students"`
	Averages  TermAverages `json:"averages"`
}

// CourseAverages aggregates every subject of a course for cohort reporting.
type CourseAverages struct {
	CourseID string                  `json:"course_id"`
	Subjects []CourseSubjectAverages `json:"subjects"`
}
