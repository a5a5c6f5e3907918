package care

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
)

// Assessment types
const (
	AssessmentMotor         = "motor"
	AssessmentCognitive     = "cognitive"
	AssessmentLanguage      = "language"
	AssessmentSocial        = "social"
	AssessmentAdaptive      = "adaptive"
	AssessmentComprehensive = "comprehensive"
)

var AllAssessmentTypes = []string{
	AssessmentMotor, AssessmentCognitive, AssessmentLanguage,
	AssessmentSocial, AssessmentAdaptive, AssessmentComprehensive,
}

// Assessment is a developmental assessment of a child. Sub-scores are on a
// 1-5 scale and may be left unset; OverallScore is derived, never set by
// callers.
type Assessment struct {
	ID              string       `json:"id"`
	ChildID         string       `json:"child_id"`
	AssessorID      string       `json:"assessor_id"`
	Type            string       `json:"type"`
	Date            time.Time    `json:"date"`
	MotorScore      null.Int     `json:"motor_score"`
	CognitiveScore  null.Int     `json:"cognitive_score"`
	LanguageScore   null.Int     `json:"language_score"`
	SocialScore     null.Int     `json:"social_score"`
	AdaptiveScore   null.Int     `json:"adaptive_score"`
	OverallScore    null.Float64 `json:"overall_score"`
	Notes           string       `json:"notes"`
	Recommendations string       `json:"recommendations"`
	CreatedAt       time.Time    `json:"created_at"` // UTC
	UpdatedAt       time.Time    `json:"updated_at"` // UTC
}

func (a *Assessment) subScores() []null.Int {
	return []null.Int{a.MotorScore, a.CognitiveScore, a.LanguageScore, a.SocialScore, a.AdaptiveScore}
}

// ComputeOverallScore recomputes the derived overall score as the arithmetic
// mean of the non-null sub-scores, or unsets it when no sub-score is set.
// It must be called on every mutation of any sub-score; the overall score is
// never computed lazily at read time.
func (a *Assessment) ComputeOverallScore() {
	var sum, n int
	for _, s := range a.subScores() {
		if s.Valid {
			sum += s.Int
			n++
		}
	}
	if n == 0 {
		a.OverallScore = null.Float64{}
		return
	}
	a.OverallScore = null.Float64From(float64(sum) / float64(n))
}

// NewAssessment contains information needed to create a new Assessment.
type NewAssessment struct {
	ChildID         string    `json:"child_id" validate:"required,uuid4"`
	Type            string    `json:"type" validate:"required,assessment_type"`
	Date            time.Time `json:"date" validate:"required"`
	MotorScore      *int      `json:"motor_score" validate:"omitempty,min=1,max=5"`
	CognitiveScore  *int      `json:"cognitive_score" validate:"omitempty,min=1,max=5"`
	LanguageScore   *int      `json:"language_score" validate:"omitempty,min=1,max=5"`
	SocialScore     *int      `json:"social_score" validate:"omitempty,min=1,max=5"`
	AdaptiveScore   *int      `json:"adaptive_score" validate:"omitempty,min=1,max=5"`
	Notes           string    `json:"notes"`
	Recommendations string    `json:"recommendations"`
}

func (na *NewAssessment) Validate() error { return core.Validate.Struct(na) }

// UpdateAssessment defines what may be modified on an existing Assessment.
// The child and assessor bindings are immutable.
type UpdateAssessment struct {
	Type            string     `json:"type" validate:"omitempty,assessment_type"`
	Date            *time.Time `json:"date"`
	MotorScore      *int       `json:"motor_score" validate:"omitempty,min=1,max=5"`
	CognitiveScore  *int       `json:"cognitive_score" validate:"omitempty,min=1,max=5"`
	LanguageScore   *int       `json:"language_score" validate:"omitempty,min=1,max=5"`
	SocialScore     *int       `json:"social_score" validate:"omitempty,min=1,max=5"`
	AdaptiveScore   *int       `json:"adaptive_score" validate:"omitempty,min=1,max=5"`
	Notes           *string    `json:"notes"`
	Recommendations *string    `json:"recommendations"`
}

func (ua *UpdateAssessment) Validate() error { return core.Validate.Struct(ua) }

// SupportPlan statuses. Membership is validated but transitions are
// deliberately unconstrained: any actor with edit rights may set any status.
const (
	PlanDraft     = "draft"
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanSuspended = "suspended"
)

var AllPlanStatuses = []string{PlanDraft, PlanActive, PlanCompleted, PlanSuspended}

// SupportPlan is an individualized support plan; at most one exists per child.
type SupportPlan struct {
	ID              string    `json:"id"`
	ChildID         string    `json:"child_id"`
	CreatedBy       string    `json:"created_by"`
	Status          string    `json:"status"`
	Goals           string    `json:"goals"`
	Strategies      string    `json:"strategies"`
	ResourcesNeeded string    `json:"resources_needed"`
	Timeline        string    `json:"timeline"`
	ReviewDate      null.Time `json:"review_date"`
	NextReview      null.Time `json:"next_review"`
	ProgressNotes   string    `json:"progress_notes"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

type NewSupportPlan struct {
	ChildID         string     `json:"child_id" validate:"required,uuid4"`
	Goals           string     `json:"goals" validate:"required"`
	Strategies      string     `json:"strategies" validate:"required"`
	ResourcesNeeded string     `json:"resources_needed"`
	Timeline        string     `json:"timeline" validate:"omitempty,max=200"`
	ReviewDate      *time.Time `json:"review_date"`
	NextReview      *time.Time `json:"next_review"`
}

func (np *NewSupportPlan) Validate() error { return core.Validate.Struct(np) }

type UpdateSupportPlan struct {
	Status          string     `json:"status" validate:"omitempty,plan_status"`
	Goals           string     `json:"goals"`
	Strategies      string     `json:"strategies"`
	ResourcesNeeded *string    `json:"resources_needed"`
	Timeline        *string    `json:"timeline" validate:"omitempty,max=200"`
	ReviewDate      *time.Time `json:"review_date"`
	NextReview      *time.Time `json:"next_review"`
	ProgressNotes   *string    `json:"progress_notes"`
}

func (up *UpdateSupportPlan) Validate() error { return core.Validate.Struct(up) }

// Progress report types
const (
	ReportWeekly    = "weekly"
	ReportMonthly   = "monthly"
	ReportQuarterly = "quarterly"
	ReportAnnual    = "annual"
	ReportCustom    = "custom"
)

var AllReportTypes = []string{ReportWeekly, ReportMonthly, ReportQuarterly, ReportAnnual, ReportCustom}

// ProgressReport tracks a child's progress over a period; many may exist per
// child with no uniqueness constraint.
type ProgressReport struct {
	ID                  string    `json:"id"`
	ChildID             string    `json:"child_id"`
	CreatedBy           string    `json:"created_by"`
	Title               string    `json:"title"`
	Type                string    `json:"type"`
	Date                time.Time `json:"date"`
	Summary             string    `json:"summary"`
	DetailedReport      string    `json:"detailed_report"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Recommendations     string    `json:"recommendations"`
	TeacherNotes        string    `json:"teacher_notes"`
	ParentFeedback      string    `json:"parent_feedback"`
	CreatedAt           time.Time `json:"created_at"` // UTC
	UpdatedAt           time.Time `json:"updated_at"` // UTC
}

type NewProgressReport struct {
	ChildID             string    `json:"child_id" validate:"required,uuid4"`
	Title               string    `json:"title" validate:"required,max=200"`
	Type                string    `json:"type" validate:"required,report_type"`
	Date                time.Time `json:"date" validate:"required"`
	Summary             string    `json:"summary" validate:"required"`
	DetailedReport      string    `json:"detailed_report"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Recommendations     string    `json:"recommendations"`
	TeacherNotes        string    `json:"teacher_notes"`
}

func (nr *NewProgressReport) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	return core.Validate.Struct(nr)
}

type UpdateProgressReport struct {
	Title               string     `json:"title" validate:"omitempty,max=200"`
	Type                string     `json:"type" validate:"omitempty,report_type"`
	Date                *time.Time `json:"date"`
	Summary             string     `json:"summary"`
	DetailedReport      *string    `json:"detailed_report"`
	Strengths           *string    `json:"strengths"`
	AreasForImprovement *string    `json:"areas_for_improvement"`
	Recommendations     *string    `json:"recommendations"`
	TeacherNotes        *string    `json:"teacher_notes"`
	ParentFeedback      *string    `json:"parent_feedback"`
}

func (ur *UpdateProgressReport) Validate() error {
	ur.Title = core.CleanString(ur.Title)
	return core.Validate.Struct(ur)
}

// QueryFilter narrows assessment/plan/report list queries. Access always
// applies: dependent records are only visible through the owning child.
type QueryFilter struct {
	Search  string `query:"search"` // matches child names and the type field
	Type    string `query:"type"`
	Status  string `query:"status"` // support plans only
	ChildID string `query:"child_id"`

	Access child.AccessFilter `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
