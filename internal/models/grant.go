package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectGrant assigns a teacher to a specific (course, subject) pair.
type SubjectGrant struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HomeroomGrant makes a teacher the homeroom teacher of a course for a
// time interval. At most one row per course has Until IS NULL; reassignment
// closes the old row and opens the new one in the same transaction.
type HomeroomGrant struct {
	ID        string     `db:"id" json:"id"`
	TeacherID string     `db:"teacher_id" json:"teacher_id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	Since     time.Time  `db:"since" json:"since"`
	Until     *time.Time `db:"until" json:"until,omitempty"`
}

// Active reports whether the grant is open at the given instant.
func (g HomeroomGrant) Active(at time.Time) bool {
	if at.Before(g.Since) {
		return false
	}
	return g.Until == nil || at.Before(*g.Until)
}

// TeacherClaims is the JWT payload resolved by the transport layer. The
// engine only ever consumes the opaque teacher id.
type TeacherClaims struct {
	TeacherID string `json:"teacher_id"`
	FullName  string `json:"full_name"`
	jwt.RegisteredClaims
}
