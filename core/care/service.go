package care

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrPlanNotFound       = errors.New("support plan not found")
	ErrReportNotFound     = errors.New("progress report not found")
	ErrPlanExists         = core.NewValidationError(errors.New("a support plan already exists for this child"))
)

type Repository interface {
	CreateAssessment(ctx context.Context, a Assessment, exec ...core.DBExecutor) error
	GetAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assessment, error)
	QueryAssessments(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Assessment, error)
	UpdateAssessment(ctx context.Context, a Assessment, exec ...core.DBExecutor) error
	DeleteAssessmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

	CreateSupportPlan(ctx context.Context, p SupportPlan, exec ...core.DBExecutor) error
	GetSupportPlanByID(ctx context.Context, id string, exec ...core.DBExecutor) (SupportPlan, error)
	GetSupportPlanByChildID(ctx context.Context, childID string, exec ...core.DBExecutor) (SupportPlan, error)
	QuerySupportPlans(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]SupportPlan, error)
	UpdateSupportPlan(ctx context.Context, p SupportPlan, exec ...core.DBExecutor) error
	DeleteSupportPlansByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

	CreateProgressReport(ctx context.Context, r ProgressReport, exec ...core.DBExecutor) error
	GetProgressReportByID(ctx context.Context, id string, exec ...core.DBExecutor) (ProgressReport, error)
	QueryProgressReports(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ProgressReport, error)
	UpdateProgressReport(ctx context.Context, r ProgressReport, exec ...core.DBExecutor) error
	DeleteProgressReportsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func nullIntPtr(p *int) null.Int {
	if p == nil {
		return null.Int{}
	}
	return null.IntFrom(*p)
}

func (svc *Service) CreateAssessment(ctx context.Context, na NewAssessment, assessorID string) (Assessment, error) {
	if err := na.Validate(); err != nil {
		return Assessment{}, err
	}

	now := time.Now().UTC()
	a := Assessment{
		ID:              uuid.New().String(),
		ChildID:         na.ChildID,
		AssessorID:      assessorID,
		Type:            na.Type,
		Date:            na.Date,
		MotorScore:      nullIntPtr(na.MotorScore),
		CognitiveScore:  nullIntPtr(na.CognitiveScore),
		LanguageScore:   nullIntPtr(na.LanguageScore),
		SocialScore:     nullIntPtr(na.SocialScore),
		AdaptiveScore:   nullIntPtr(na.AdaptiveScore),
		Notes:           na.Notes,
		Recommendations: na.Recommendations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	a.ComputeOverallScore()

	if err := svc.repo.CreateAssessment(ctx, a); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

func (svc *Service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessmentByID(ctx, id)
}

func (svc *Service) QueryAssessments(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assessment, error) {
	filter.Clean()
	return svc.repo.QueryAssessments(ctx, filter, ordering)
}

func (svc *Service) UpdateAssessment(ctx context.Context, orig Assessment, ua UpdateAssessment) (Assessment, error) {
	if err := ua.Validate(); err != nil {
		return Assessment{}, err
	}

	if ua.Type != "" {
		orig.Type = ua.Type
	}
	if ua.Date != nil {
		orig.Date = *ua.Date
	}
	if ua.MotorScore != nil {
		orig.MotorScore = null.IntFrom(*ua.MotorScore)
	}
	if ua.CognitiveScore != nil {
		orig.CognitiveScore = null.IntFrom(*ua.CognitiveScore)
	}
	if ua.LanguageScore != nil {
		orig.LanguageScore = null.IntFrom(*ua.LanguageScore)
	}
	if ua.SocialScore != nil {
		orig.SocialScore = null.IntFrom(*ua.SocialScore)
	}
	if ua.AdaptiveScore != nil {
		orig.AdaptiveScore = null.IntFrom(*ua.AdaptiveScore)
	}
	if ua.Notes != nil {
		orig.Notes = *ua.Notes
	}
	if ua.Recommendations != nil {
		orig.Recommendations = *ua.Recommendations
	}
	orig.ComputeOverallScore()
	orig.UpdatedAt = time.Now().UTC()

	if err := svc.repo.UpdateAssessment(ctx, orig); err != nil {
		return Assessment{}, err
	}
	return orig, nil
}

func (svc *Service) DeleteAssessment(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAssessmentsByID(ctx, ids)
}

func (svc *Service) CreateSupportPlan(ctx context.Context, np NewSupportPlan, creatorID string) (SupportPlan, error) {
	if err := np.Validate(); err != nil {
		return SupportPlan{}, err
	}

	// one plan per child
	if _, err := svc.repo.GetSupportPlanByChildID(ctx, np.ChildID); err == nil {
		return SupportPlan{}, ErrPlanExists
	} else if !errors.Is(err, ErrPlanNotFound) {
		return SupportPlan{}, err
	}

	now := time.Now().UTC()
	p := SupportPlan{
		ID:              uuid.New().String(),
		ChildID:         np.ChildID,
		CreatedBy:       creatorID,
		Status:          PlanDraft,
		Goals:           np.Goals,
		Strategies:      np.Strategies,
		ResourcesNeeded: np.ResourcesNeeded,
		Timeline:        np.Timeline,
		ReviewDate:      null.TimeFromPtr(np.ReviewDate),
		NextReview:      null.TimeFromPtr(np.NextReview),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := svc.repo.CreateSupportPlan(ctx, p); err != nil {
		return SupportPlan{}, err
	}
	return p, nil
}

func (svc *Service) GetSupportPlan(ctx context.Context, id string) (SupportPlan, error) {
	return svc.repo.GetSupportPlanByID(ctx, id)
}

func (svc *Service) GetSupportPlanForChild(ctx context.Context, childID string) (SupportPlan, error) {
	return svc.repo.GetSupportPlanByChildID(ctx, childID)
}

func (svc *Service) QuerySupportPlans(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]SupportPlan, error) {
	filter.Clean()
	return svc.repo.QuerySupportPlans(ctx, filter, ordering)
}

func (svc *Service) UpdateSupportPlan(ctx context.Context, orig SupportPlan, up UpdateSupportPlan) (SupportPlan, error) {
	if err := up.Validate(); err != nil {
		return SupportPlan{}, err
	}

	if up.Status != "" {
		orig.Status = up.Status
	}
	if up.Goals != "" {
		orig.Goals = up.Goals
	}
	if up.Strategies != "" {
		orig.Strategies = up.Strategies
	}
	if up.ResourcesNeeded != nil {
		orig.ResourcesNeeded = *up.ResourcesNeeded
	}
	if up.Timeline != nil {
		orig.Timeline = *up.Timeline
	}
	if up.ReviewDate != nil {
		orig.ReviewDate = null.TimeFrom(*up.ReviewDate)
	}
	if up.NextReview != nil {
		orig.NextReview = null.TimeFrom(*up.NextReview)
	}
	if up.ProgressNotes != nil {
		orig.ProgressNotes = *up.ProgressNotes
	}
	orig.UpdatedAt = time.Now().UTC()

	if err := svc.repo.UpdateSupportPlan(ctx, orig); err != nil {
		return SupportPlan{}, err
	}
	return orig, nil
}

func (svc *Service) DeleteSupportPlan(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSupportPlansByID(ctx, ids)
}

func (svc *Service) CreateProgressReport(ctx context.Context, nr NewProgressReport, creatorID string) (ProgressReport, error) {
	if err := nr.Validate(); err != nil {
		return ProgressReport{}, err
	}

	now := time.Now().UTC()
	r := ProgressReport{
		ID:                  uuid.New().String(),
		ChildID:             nr.ChildID,
		CreatedBy:           creatorID,
		Title:               nr.Title,
		Type:                nr.Type,
		Date:                nr.Date,
		Summary:             nr.Summary,
		DetailedReport:      nr.DetailedReport,
		Strengths:           nr.Strengths,
		AreasForImprovement: nr.AreasForImprovement,
		Recommendations:     nr.Recommendations,
		TeacherNotes:        nr.TeacherNotes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := svc.repo.CreateProgressReport(ctx, r); err != nil {
		return ProgressReport{}, err
	}
	return r, nil
}

func (svc *Service) GetProgressReport(ctx context.Context, id string) (ProgressReport, error) {
	return svc.repo.GetProgressReportByID(ctx, id)
}

func (svc *Service) QueryProgressReports(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]ProgressReport, error) {
	filter.Clean()
	return svc.repo.QueryProgressReports(ctx, filter, ordering)
}

func (svc *Service) UpdateProgressReport(ctx context.Context, orig ProgressReport, ur UpdateProgressReport) (ProgressReport, error) {
	if err := ur.Validate(); err != nil {
		return ProgressReport{}, err
	}

	if ur.Title != "" {
		orig.Title = ur.Title
	}
	if ur.Type != "" {
		orig.Type = ur.Type
	}
	if ur.Date != nil {
		orig.Date = *ur.Date
	}
	if ur.Summary != "" {
		orig.Summary = ur.Summary
	}
	if ur.DetailedReport != nil {
		orig.DetailedReport = *ur.DetailedReport
	}
	if ur.Strengths != nil {
		orig.Strengths = *ur.Strengths
	}
	if ur.AreasForImprovement != nil {
		orig.AreasForImprovement = *ur.AreasForImprovement
	}
	if ur.Recommendations != nil {
		orig.Recommendations = *ur.Recommendations
	}
	if ur.TeacherNotes != nil {
		orig.TeacherNotes = *ur.TeacherNotes
	}
	if ur.ParentFeedback != nil {
		orig.ParentFeedback = *ur.ParentFeedback
	}
	orig.UpdatedAt = time.Now().UTC()

	if err := svc.repo.UpdateProgressReport(ctx, orig); err != nil {
		return ProgressReport{}, err
	}
	return orig, nil
}

func (svc *Service) DeleteProgressReport(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteProgressReportsByID(ctx, ids)
}
