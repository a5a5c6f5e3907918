package learning

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
)

// Activity types
const (
	ActivityReading   = "reading"
	ActivityWriting   = "writing"
	ActivityMath      = "math"
	ActivityScience   = "science"
	ActivityArt       = "art"
	ActivityMusic     = "music"
	ActivityPhysical  = "physical"
	ActivitySocial    = "social"
	ActivityCognitive = "cognitive"
	ActivityLanguage  = "language"
)

var AllActivityTypes = []string{
	ActivityReading, ActivityWriting, ActivityMath, ActivityScience, ActivityArt,
	ActivityMusic, ActivityPhysical, ActivitySocial, ActivityCognitive, ActivityLanguage,
}

// Activity is a reusable activity template. Age bounds are in months.
type Activity struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Type               string    `json:"type"`
	DifficultyLevel    int       `json:"difficulty_level"` // 1 (beginner) to 5 (expert)
	Instructions       string    `json:"instructions"`
	MaterialsNeeded    string    `json:"materials_needed"`
	EstimatedDuration  int       `json:"estimated_duration"` // minutes
	AgeRangeMin        int       `json:"age_range_min"`
	AgeRangeMax        int       `json:"age_range_max"`
	LearningObjectives string    `json:"learning_objectives"`
	SkillsDeveloped    string    `json:"skills_developed"`
	CreatedBy          string    `json:"created_by"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// SuitableFor reports whether the child's age falls within the activity's
// age range at time t.
func (a *Activity) SuitableFor(c child.Child, t time.Time) bool {
	months := c.AgeInMonths(t)
	return months >= a.AgeRangeMin && months <= a.AgeRangeMax
}

type NewActivity struct {
	Title              string `json:"title" validate:"required,max=200"`
	Description        string `json:"description" validate:"required"`
	Type               string `json:"type" validate:"required,activity_type"`
	DifficultyLevel    int    `json:"difficulty_level" validate:"required,min=1,max=5"`
	Instructions       string `json:"instructions" validate:"required"`
	MaterialsNeeded    string `json:"materials_needed"`
	EstimatedDuration  int    `json:"estimated_duration" validate:"required,min=1"`
	AgeRangeMin        int    `json:"age_range_min" validate:"min=0"`
	AgeRangeMax        int    `json:"age_range_max" validate:"required,gtefield=AgeRangeMin"`
	LearningObjectives string `json:"learning_objectives"`
	SkillsDeveloped    string `json:"skills_developed"`
}

func (na *NewActivity) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

type UpdateActivity struct {
	Title              string  `json:"title" validate:"omitempty,max=200"`
	Description        string  `json:"description"`
	Type               string  `json:"type" validate:"omitempty,activity_type"`
	DifficultyLevel    *int    `json:"difficulty_level" validate:"omitempty,min=1,max=5"`
	Instructions       string  `json:"instructions"`
	MaterialsNeeded    *string `json:"materials_needed"`
	EstimatedDuration  *int    `json:"estimated_duration" validate:"omitempty,min=1"`
	AgeRangeMin        *int    `json:"age_range_min" validate:"omitempty,min=0"`
	AgeRangeMax        *int    `json:"age_range_max" validate:"omitempty,min=0"`
	LearningObjectives *string `json:"learning_objectives"`
	SkillsDeveloped    *string `json:"skills_developed"`
}

func (ua *UpdateActivity) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	return core.Validate.Struct(ua)
}

// Assignment statuses
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
	StatusCancelled  = "cancelled"
)

var AllAssignmentStatuses = []string{
	StatusAssigned, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled,
}

var (
	ErrNotStartable  = errors.New("activity can only be started from the assigned state")
	ErrNotInProgress = errors.New("activity is not in progress")
)

// Assignment binds one Activity to one Child. At most one assignment exists
// per (child, activity) pair.
type Assignment struct {
	ID              string    `json:"id"`
	ChildID         string    `json:"child_id"`
	ActivityID      string    `json:"activity_id"`
	AssignedBy      string    `json:"assigned_by"`
	AssignedDate    time.Time `json:"assigned_date"`
	DueDate         null.Time `json:"due_date"`
	Status          string    `json:"status"`
	StartedAt       null.Time `json:"started_at"`
	CompletedAt     null.Time `json:"completed_at"`
	CompletionNotes string    `json:"completion_notes"`
}

// Start moves the assignment from assigned to in_progress, stamping the start
// time. Any other starting state is an error, including a repeated Start.
func (asg *Assignment) Start(now time.Time) error {
	if asg.Status != StatusAssigned {
		return ErrNotStartable
	}
	asg.Status = StatusInProgress
	asg.StartedAt = null.TimeFrom(now)
	return nil
}

// Continue verifies the assignment can be resumed. It changes nothing: only
// an in_progress assignment may be continued.
func (asg *Assignment) Continue() error {
	if asg.Status != StatusInProgress {
		return ErrNotInProgress
	}
	return nil
}

type NewAssignment struct {
	ChildID    string     `json:"child_id" validate:"required,uuid4"`
	ActivityID string     `json:"activity_id" validate:"required,uuid4"`
	DueDate    *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate() error { return core.Validate.Struct(na) }

// Badge types
const (
	BadgeAchievement   = "achievement"
	BadgeParticipation = "participation"
	BadgeImprovement   = "improvement"
	BadgeMilestone     = "milestone"
	BadgeSpecial       = "special"
)

var AllBadgeTypes = []string{
	BadgeAchievement, BadgeParticipation, BadgeImprovement, BadgeMilestone, BadgeSpecial,
}

// Badge is a reusable achievement definition.
type Badge struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Type               string    `json:"type"`
	Icon               string    `json:"icon"`
	Color              string    `json:"color"` // hex, e.g. #FFD700
	PointsRequired     int       `json:"points_required"`
	ActivitiesRequired int       `json:"activities_required"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"` // UTC
}

type NewBadge struct {
	Name               string `json:"name" validate:"required,max=100"`
	Description        string `json:"description" validate:"required"`
	Type               string `json:"type" validate:"required,badge_type"`
	Icon               string `json:"icon" validate:"omitempty,max=50"`
	Color              string `json:"color" validate:"omitempty,hexcolor"`
	PointsRequired     int    `json:"points_required" validate:"min=0"`
	ActivitiesRequired int    `json:"activities_required" validate:"min=0"`
}

func (nb *NewBadge) Validate() error {
	nb.Name = core.CleanString(nb.Name)
	return core.Validate.Struct(nb)
}

// ChildBadge records a child earning a badge, at most once per (child, badge)
// pair, optionally tied to the assignment that earned it.
type ChildBadge struct {
	ID           string      `json:"id"`
	ChildID      string      `json:"child_id"`
	BadgeID      string      `json:"badge_id"`
	EarnedDate   time.Time   `json:"earned_date"`
	AssignmentID null.String `json:"assignment_id"`
}

// DashboardStats is the set of counters shown on the learning dashboard,
// scoped to the children the actor may see.
type DashboardStats struct {
	TotalActivities      int `json:"total_activities"`
	ActiveAssignments    int `json:"active_assignments"`
	CompletedAssignments int `json:"completed_assignments"`
	BadgesEarned         int `json:"badges_earned"`
	ChildrenTracked      int `json:"children_tracked"`
}

// QueryFilter narrows activity and assignment list queries.
type QueryFilter struct {
	Search     string `query:"search"`
	Type       string `query:"type"`
	Difficulty int    `query:"difficulty"`
	Status     string `query:"status"` // assignments only
	ChildID    string `query:"child_id"`
	IsActive   *bool  `query:"is_active"`

	// Access is set by handlers from the authorization engine; activity
	// templates themselves are unscoped but assignments and badges are not.
	Access child.AccessFilter `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
