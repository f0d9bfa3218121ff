package models

// Term identifies an instructional period within a school year.
type Term string

const (
	// TermDiagnostic holds placement assessments; its marks never count
	// toward term or final averages.
	TermDiagnostic Term = "DIAGNOSTIC"
	TermFirst      Term = "FIRST"
	TermSecond     Term = "SECOND"
)

// Valid returns true when the term is a supported value.
func (t Term) Valid() bool {
	switch t {
	case TermDiagnostic, TermFirst, TermSecond:
		return true
	default:
		return false
	}
}

// Instructional reports whether the term contributes to promotion averages.
func (t Term) Instructional() bool {
	return t == TermFirst || t == TermSecond
}
