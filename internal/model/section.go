package model

import "time"

// Modality describes how a section is delivered.
type Modality string

const (
	ModalityOnCampus   Modality = "ONCAMPUS"
	ModalityOnline     Modality = "ONLINE"
	ModalityHybrid     Modality = "HYBRID"
	ModalityTelecourse Modality = "TELECOURSE"
)

// Meeting is one scheduled meeting pattern of a section.  Days uses the
// catalog's compact form ("MWF", "TTh", "ARR").
type Meeting struct {
	Days       string    `json:"days"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Room       string    `json:"room,omitempty"`
	Instructor string    `json:"instructor,omitempty"`
}

// Section is a catalog record for one offered class.  It is owned by the
// catalog provider and treated as read only.
//
// Fields:
//
//	ID                – ClassID (item number + quarter code).
//	CourseID          – catalog course this section belongs to.
//	Subject           – course subject without the common course marker.
//	CourseNumber      – catalog number, compared as text.
//	CourseTitle       – catalog title.
//	Credits           – credit value; the maximum when IsVariableCredits.
//	YearQuarter       – quarter the section is offered in.
//	StartDate         – first day of instruction.
//	IsLateStart       – starts after the regular quarter start.
//	Footnotes         – catalog footnotes.
type Section struct {
	ID                ClassID     `json:"id"`
	CourseID          CourseID    `json:"course_id"`
	Subject           string      `json:"subject"`
	CourseNumber      string      `json:"course_number"`
	CourseTitle       string      `json:"course_title"`
	Credits           float64     `json:"credits"`
	IsVariableCredits bool        `json:"is_variable_credits"`
	YearQuarter       YearQuarter `json:"year_quarter"`
	Modality          Modality    `json:"modality"`
	Meetings          []Meeting   `json:"meetings"`
	StartDate         time.Time   `json:"start_date"`
	IsLateStart       bool        `json:"is_late_start"`
	Footnotes         []string    `json:"footnotes"`
	IsCommonCourse    bool        `json:"is_common_course"`
}

// Course is a catalog course, independent of any section.
type Course struct {
	ID                CourseID `json:"id"`
	Title             string   `json:"title"`
	Credits           float64  `json:"credits"`
	IsVariableCredits bool     `json:"is_variable_credits"`
	IsCommonCourse    bool     `json:"is_common_course"`
	Description       string   `json:"description,omitempty"`
	Footnotes         []string `json:"footnotes,omitempty"`
}

// CrossListedCourse is one member of a cross-listed group as returned to
// clients.
type CrossListedCourse struct {
	CourseID          CourseID `json:"id"`
	SectionID         ClassID  `json:"section_id"`
	IsCommonCourse    bool     `json:"is_common_course"`
	Credits           float64  `json:"credits"`
	IsVariableCredits bool     `json:"is_variable_credits"`
	Title             string   `json:"title"`
}

// Subject is a schedule subject (e.g. "English") and the course prefix it
// covers.
type Subject struct {
	Slug   string `json:"slug"`
	Prefix string `json:"subject"`
	Title  string `json:"title"`
}
