package learning

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
)

var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrBadgeNotFound      = errors.New("badge not found")
	ErrAlreadyAssigned    = core.NewValidationError(errors.New("this activity is already assigned to this child"))
	ErrBadgeAlreadyEarned = core.NewValidationError(errors.New("this badge has already been awarded to this child"))
)

type Repository interface {
	CreateActivity(ctx context.Context, a Activity, exec ...core.DBExecutor) error
	GetActivityByID(ctx context.Context, id string, exec ...core.DBExecutor) (Activity, error)
	QueryActivities(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Activity, error)
	CountActivities(ctx context.Context, exec ...core.DBExecutor) (int, error)
	UpdateActivity(ctx context.Context, a Activity, exec ...core.DBExecutor) error
	DeleteActivitiesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

	CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) error
	GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
	GetAssignment(ctx context.Context, childID, activityID string, exec ...core.DBExecutor) (Assignment, error)
	QueryAssignments(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Assignment, error)
	CountAssignments(ctx context.Context, status string, access child.AccessFilter, exec ...core.DBExecutor) (int, error)
	UpdateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) error
	DeleteAssignmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

	CreateBadge(ctx context.Context, b Badge, exec ...core.DBExecutor) error
	GetBadgeByID(ctx context.Context, id string, exec ...core.DBExecutor) (Badge, error)
	QueryBadges(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Badge, error)

	CreateChildBadge(ctx context.Context, cb ChildBadge, exec ...core.DBExecutor) error
	GetChildBadge(ctx context.Context, childID, badgeID string, exec ...core.DBExecutor) (ChildBadge, error)
	QueryChildBadges(ctx context.Context, access child.AccessFilter, exec ...core.DBExecutor) ([]ChildBadge, error)
	CountChildBadges(ctx context.Context, access child.AccessFilter, exec ...core.DBExecutor) (int, error)
}

type Service struct {
	repo      Repository
	childRepo child.Repository
}

func NewService(repo Repository, childRepo child.Repository) *Service {
	return &Service{repo: repo, childRepo: childRepo}
}

func (svc *Service) CreateActivity(ctx context.Context, na NewActivity, creatorID string) (Activity, error) {
	if err := na.Validate(); err != nil {
		return Activity{}, err
	}

	now := time.Now().UTC()
	a := Activity{
		ID:                 uuid.New().String(),
		Title:              na.Title,
		Description:        na.Description,
		Type:               na.Type,
		DifficultyLevel:    na.DifficultyLevel,
		Instructions:       na.Instructions,
		MaterialsNeeded:    na.MaterialsNeeded,
		EstimatedDuration:  na.EstimatedDuration,
		AgeRangeMin:        na.AgeRangeMin,
		AgeRangeMax:        na.AgeRangeMax,
		LearningObjectives: na.LearningObjectives,
		SkillsDeveloped:    na.SkillsDeveloped,
		CreatedBy:          creatorID,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := svc.repo.CreateActivity(ctx, a); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (svc *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, id)
}

func (svc *Service) QueryActivities(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Activity, error) {
	filter.Clean()
	return svc.repo.QueryActivities(ctx, filter, ordering)
}

func (svc *Service) UpdateActivity(ctx context.Context, orig Activity, ua UpdateActivity) (Activity, error) {
	if err := ua.Validate(); err != nil {
		return Activity{}, err
	}

	if ua.Title != "" {
		orig.Title = ua.Title
	}
	if ua.Description != "" {
		orig.Description = ua.Description
	}
	if ua.Type != "" {
		orig.Type = ua.Type
	}
	if ua.DifficultyLevel != nil {
		orig.DifficultyLevel = *ua.DifficultyLevel
	}
	if ua.Instructions != "" {
		orig.Instructions = ua.Instructions
	}
	if ua.MaterialsNeeded != nil {
		orig.MaterialsNeeded = *ua.MaterialsNeeded
	}
	if ua.EstimatedDuration != nil {
		orig.EstimatedDuration = *ua.EstimatedDuration
	}
	if ua.AgeRangeMin != nil {
		orig.AgeRangeMin = *ua.AgeRangeMin
	}
	if ua.AgeRangeMax != nil {
		orig.AgeRangeMax = *ua.AgeRangeMax
	}
	if orig.AgeRangeMax < orig.AgeRangeMin {
		return Activity{}, core.NewValidationError(nil, core.FieldError{Field: "age_range_max", Error: "cannot be lower than age_range_min"})
	}
	if ua.LearningObjectives != nil {
		orig.LearningObjectives = *ua.LearningObjectives
	}
	if ua.SkillsDeveloped != nil {
		orig.SkillsDeveloped = *ua.SkillsDeveloped
	}
	orig.UpdatedAt = time.Now().UTC()

	if err := svc.repo.UpdateActivity(ctx, orig); err != nil {
		return Activity{}, err
	}
	return orig, nil
}

func (svc *Service) DeleteActivity(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteActivitiesByID(ctx, ids)
}

// Assign binds an activity to a child. The (child, activity) pair is unique;
// a second assignment of the same activity fails validation.
func (svc *Service) Assign(ctx context.Context, na NewAssignment, assignerID string) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}

	if _, err := svc.repo.GetAssignment(ctx, na.ChildID, na.ActivityID); err == nil {
		return Assignment{}, ErrAlreadyAssigned
	} else if !errors.Is(err, ErrAssignmentNotFound) {
		return Assignment{}, err
	}

	asg := Assignment{
		ID:           uuid.New().String(),
		ChildID:      na.ChildID,
		ActivityID:   na.ActivityID,
		AssignedBy:   assignerID,
		AssignedDate: time.Now().UTC(),
		DueDate:      null.TimeFromPtr(na.DueDate),
		Status:       StatusAssigned,
	}
	if err := svc.repo.CreateAssignment(ctx, asg); err != nil {
		return Assignment{}, err
	}
	return asg, nil
}

func (svc *Service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryAssignments(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error) {
	filter.Clean()
	return svc.repo.QueryAssignments(ctx, filter, ordering)
}

// StartAssignment transitions the assignment to in_progress and persists it.
func (svc *Service) StartAssignment(ctx context.Context, asg Assignment) (Assignment, error) {
	if err := asg.Start(time.Now().UTC()); err != nil {
		return Assignment{}, core.NewValidationError(err)
	}
	if err := svc.repo.UpdateAssignment(ctx, asg); err != nil {
		return Assignment{}, err
	}
	return asg, nil
}

// ContinueAssignment checks the assignment is resumable. Nothing is persisted.
func (svc *Service) ContinueAssignment(ctx context.Context, asg Assignment) error {
	if err := asg.Continue(); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func (svc *Service) CancelAssignment(ctx context.Context, asg Assignment) (Assignment, error) {
	asg.Status = StatusCancelled
	if err := svc.repo.UpdateAssignment(ctx, asg); err != nil {
		return Assignment{}, err
	}
	return asg, nil
}

func (svc *Service) CreateBadge(ctx context.Context, nb NewBadge) (Badge, error) {
	if err := nb.Validate(); err != nil {
		return Badge{}, err
	}

	b := Badge{
		ID:                 uuid.New().String(),
		Name:               nb.Name,
		Description:        nb.Description,
		Type:               nb.Type,
		Icon:               nb.Icon,
		Color:              nb.Color,
		PointsRequired:     nb.PointsRequired,
		ActivitiesRequired: nb.ActivitiesRequired,
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}
	if b.Color == "" {
		b.Color = "#FFD700"
	}
	if err := svc.repo.CreateBadge(ctx, b); err != nil {
		return Badge{}, err
	}
	return b, nil
}

func (svc *Service) QueryBadges(ctx context.Context, ordering ...core.DBOrdering) ([]Badge, error) {
	return svc.repo.QueryBadges(ctx, ordering)
}

// AwardBadge records a child earning a badge. The (child, badge) pair is
// unique; repeat awards fail validation.
func (svc *Service) AwardBadge(ctx context.Context, childID, badgeID string, assignmentID *string) (ChildBadge, error) {
	if _, err := svc.repo.GetBadgeByID(ctx, badgeID); err != nil {
		return ChildBadge{}, err
	}
	if _, err := svc.repo.GetChildBadge(ctx, childID, badgeID); err == nil {
		return ChildBadge{}, ErrBadgeAlreadyEarned
	} else if !errors.Is(err, ErrBadgeNotFound) {
		return ChildBadge{}, err
	}

	cb := ChildBadge{
		ID:           uuid.New().String(),
		ChildID:      childID,
		BadgeID:      badgeID,
		EarnedDate:   time.Now().UTC(),
		AssignmentID: null.StringFromPtr(assignmentID),
	}
	if err := svc.repo.CreateChildBadge(ctx, cb); err != nil {
		return ChildBadge{}, err
	}
	return cb, nil
}

func (svc *Service) QueryChildBadges(ctx context.Context, access child.AccessFilter) ([]ChildBadge, error) {
	return svc.repo.QueryChildBadges(ctx, access)
}

// DashboardStats aggregates the learning counters for the given access scope.
func (svc *Service) DashboardStats(ctx context.Context, access child.AccessFilter) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalActivities, err = svc.repo.CountActivities(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.ActiveAssignments, err = svc.repo.CountAssignments(ctx, StatusInProgress, access); err != nil {
		return DashboardStats{}, err
	}
	if stats.CompletedAssignments, err = svc.repo.CountAssignments(ctx, StatusCompleted, access); err != nil {
		return DashboardStats{}, err
	}
	if stats.BadgesEarned, err = svc.repo.CountChildBadges(ctx, access); err != nil {
		return DashboardStats{}, err
	}
	if stats.ChildrenTracked, err = svc.childRepo.CountChildren(ctx, access); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
