package child

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Genders
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

var AllGenders = []string{GenderMale, GenderFemale, GenderOther}

// Child is a child profile tracked for early care and development.
// It is owned by exactly one parent; the teacher assignment is optional and
// only an admin may reassign it. The child may additionally be linked to
// their own login account (UserID) for the child portal.
type Child struct {
	ID                string      `json:"id"`
	FirstName         string      `json:"first_name"`
	LastName          string      `json:"last_name"`
	DateOfBirth       time.Time   `json:"date_of_birth"`
	Gender            string      `json:"gender"`
	ParentID          string      `json:"parent_id"`
	TeacherID         null.String `json:"teacher_id"`
	UserID            null.String `json:"user_id"`
	MedicalConditions string      `json:"medical_conditions"`
	EmergencyContact  string      `json:"emergency_contact"`
	EmergencyPhone    string      `json:"emergency_phone"`
	IsActive          bool        `json:"is_active"`
	CreatedAt         time.Time   `json:"created_at"` // UTC
	UpdatedAt         time.Time   `json:"updated_at"` // UTC
}

func (c *Child) FullName() string { return c.FirstName + " " + c.LastName }

// AgeInMonths derives the child's age in whole months at time t.
func (c *Child) AgeInMonths(t time.Time) int {
	return (t.Year()-c.DateOfBirth.Year())*12 + int(t.Month()) - int(c.DateOfBirth.Month())
}

// HasTeacher reports whether a teacher is currently assigned.
func (c *Child) HasTeacher() bool { return c.TeacherID.Valid && c.TeacherID.String != "" }

// NewChild contains information needed to create a new Child.
type NewChild struct {
	FirstName         string    `json:"first_name" validate:"required,max=100"`
	LastName          string    `json:"last_name" validate:"required,max=100"`
	DateOfBirth       time.Time `json:"date_of_birth" validate:"required"`
	Gender            string    `json:"gender" validate:"required,gender"`
	ParentID          string    `json:"parent_id" validate:"omitempty,uuid4"`
	TeacherID         string    `json:"teacher_id" validate:"omitempty,uuid4"`
	MedicalConditions string    `json:"medical_conditions"`
	EmergencyContact  string    `json:"emergency_contact" validate:"omitempty,max=100"`
	EmergencyPhone    string    `json:"emergency_phone" validate:"omitempty,max=15"`
}

func (nc *NewChild) Validate() error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	return core.Validate.Struct(nc)
}

// UpdateChild defines what information may be provided to modify an existing Child.
// TeacherID may only be changed by an admin; the API layer enforces that.
type UpdateChild struct {
	FirstName         string     `json:"first_name" validate:"omitempty,max=100"`
	LastName          string     `json:"last_name" validate:"omitempty,max=100"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	Gender            string     `json:"gender" validate:"omitempty,gender"`
	TeacherID         *string    `json:"teacher_id" validate:"omitempty,uuid4|eq="`
	MedicalConditions *string    `json:"medical_conditions"`
	EmergencyContact  *string    `json:"emergency_contact" validate:"omitempty,max=100"`
	EmergencyPhone    *string    `json:"emergency_phone" validate:"omitempty,max=15"`
	IsActive          *bool      `json:"is_active"`
}

func (uc *UpdateChild) Validate() error {
	uc.FirstName = core.CleanString(uc.FirstName)
	uc.LastName = core.CleanString(uc.LastName)
	return core.Validate.Struct(uc)
}

// AccessFilter is the accessible-children primitive produced by the
// authorization engine and consumed by repositories: it narrows any
// child-scoped query to the set of children the actor may see.
// Exactly one of All, ParentID, TeacherID or None is effective.
type AccessFilter struct {
	All       bool
	ParentID  string
	TeacherID string
	None      bool
}

// Allows reports whether an already-loaded child falls within the filter.
func (af AccessFilter) Allows(c Child) bool {
	switch {
	case af.None:
		return false
	case af.All:
		return true
	case af.ParentID != "":
		return c.ParentID == af.ParentID
	case af.TeacherID != "":
		return c.TeacherID.Valid && c.TeacherID.String == af.TeacherID
	}
	return false
}

// Age range buckets (in months) supported by QueryFilter.AgeRange.
const (
	AgeRange0To12  = "0-12"
	AgeRange13To24 = "13-24"
	AgeRange25To36 = "25-36"
	AgeRange37Plus = "37+"
)

type QueryFilter struct {
	Search   string `query:"search"` // case-insensitive match on first/last name
	AgeRange string `query:"age_range"`
	IsActive *bool  `query:"is_active"`

	// Access is not bound from the request; handlers set it from the
	// authorization engine before querying.
	Access AccessFilter `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AgeRange = core.CleanString(qf.AgeRange)
}
