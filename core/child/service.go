package child

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

var ErrNotFound = errors.New("child not found")

type (
	Repository interface {
		CreateChild(ctx context.Context, c Child, exec ...core.DBExecutor) (Child, error)
		GetChildByID(ctx context.Context, id string, exec ...core.DBExecutor) (Child, error)
		GetChildByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Child, error)
		// QueryChildren applies AND operation on available QueryFilter fields;
		// QueryFilter.Access always narrows the result set.
		QueryChildren(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Child, error)
		CountChildren(ctx context.Context, access AccessFilter, exec ...core.DBExecutor) (int, error)
		UpdateChild(ctx context.Context, c Child, isActive *bool, exec ...core.DBExecutor) (Child, error)
		DeleteChildrenByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewChild) (Child, error) {
	now := time.Now().UTC()
	c := Child{
		FirstName:         nc.FirstName,
		LastName:          nc.LastName,
		DateOfBirth:       nc.DateOfBirth,
		Gender:            nc.Gender,
		ParentID:          nc.ParentID,
		TeacherID:         null.NewString(nc.TeacherID, nc.TeacherID != ""),
		MedicalConditions: nc.MedicalConditions,
		EmergencyContact:  nc.EmergencyContact,
		EmergencyPhone:    nc.EmergencyPhone,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return svc.repo.CreateChild(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Child, error) {
	return svc.repo.GetChildByID(ctx, id)
}

// GetByUserID finds the child profile linked to a child-role login account.
func (svc *Service) GetByUserID(ctx context.Context, userID string) (Child, error) {
	return svc.repo.GetChildByUserID(ctx, userID)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error) {
	return svc.repo.QueryChildren(ctx, filter, ordering)
}

func (svc *Service) Count(ctx context.Context, access AccessFilter) (int, error) {
	return svc.repo.CountChildren(ctx, access)
}

func (svc *Service) Update(ctx context.Context, orig Child, uc UpdateChild) (Child, error) {
	c := orig
	if uc.FirstName != "" {
		c.FirstName = uc.FirstName
	}
	if uc.LastName != "" {
		c.LastName = uc.LastName
	}
	if uc.DateOfBirth != nil {
		c.DateOfBirth = *uc.DateOfBirth
	}
	if uc.Gender != "" {
		c.Gender = uc.Gender
	}
	if uc.TeacherID != nil {
		c.TeacherID = null.NewString(*uc.TeacherID, *uc.TeacherID != "")
	}
	if uc.MedicalConditions != nil {
		c.MedicalConditions = *uc.MedicalConditions
	}
	if uc.EmergencyContact != nil {
		c.EmergencyContact = *uc.EmergencyContact
	}
	if uc.EmergencyPhone != nil {
		c.EmergencyPhone = *uc.EmergencyPhone
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, c, uc.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteChildrenByID(ctx, ids)
	return err
}
