package models

import "time"

// AttendanceStatus is the recorded presence state for a student in a session.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent    AttendanceStatus = "ABSENT"
	AttendanceStatusJustified AttendanceStatus = "JUSTIFIED"

	// AttendanceStatusUnset is the report sentinel for roster students with
	// no mark in a session. It is never written to storage.
	AttendanceStatusUnset AttendanceStatus = "UNSET"
)

// Valid returns true when the status may be written.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusJustified:
		return true
	default:
		return false
	}
}

// AttendanceSession is one (course, subject, date, block) meeting instance.
// Exactly one row exists per key; it is the join target for all marks of
// that meeting.
type AttendanceSession struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Date      time.Time `db:"date" json:"date"`
	Block     string    `db:"block" json:"block"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceMark records one student's status in a session; upserted.
type AttendanceMark struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"session_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionRosterRow joins the ordered roster with whatever marks exist;
// unmarked students carry AttendanceStatusUnset.
type SessionRosterRow struct {
	StudentID  string           `json:"student_id"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	ListNumber *int             `json:"list_number,omitempty"`
	Status     AttendanceStatus `json:"status"`
}

// SessionView is the read-only composition returned by GetSession.
type SessionView struct {
	Session AttendanceSession  `json:"session"`
	Roster  []SessionRosterRow `json:"roster"`
}

// AttendanceSummary counts a student's statuses for a (course, subject).
type AttendanceSummary struct {
	StudentID string  `json:"student_id"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Justified int     `json:"justified"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}
