package models

import "time"

// Marks use a fixed 7-point scale.
const (
	MinMarkValue = 1.0
	MaxMarkValue = 7.0
)

// Assessment is a scored evaluation within a (course, subject, term) scope.
// Weight is advisory metadata: stored and returned, never applied to the
// average formula.
type Assessment struct {
	ID        string     `db:"id" json:"id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	SubjectID string     `db:"subject_id" json:"subject_id"`
	Term      Term       `db:"term" json:"term"`
	Title     string     `db:"title" json:"title"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
	Weight    *float64   `db:"weight" json:"weight,omitempty"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Mark is one student's score on one assessment; upserted last-write-wins.
type Mark struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Value        float64   `db:"value" json:"value"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
