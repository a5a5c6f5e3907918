package dummydb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
)

type childRepository struct {
	db *table[child.Child]
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *DB) *childRepository {
	return &childRepository{db: db.child}
}

func (repo *childRepository) CreateChild(_ context.Context, c child.Child, _ ...core.DBExecutor) (child.Child, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *childRepository) GetChildByID(_ context.Context, id string, _ ...core.DBExecutor) (child.Child, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.rows[id]; ok {
		return *c, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) GetChildByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (child.Child, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.all() {
		if c.UserID.Valid && c.UserID.String == userID {
			return c, nil
		}
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) QueryChildren(_ context.Context, filter *child.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]child.Child, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	children := repo.db.all()
	if filter == nil {
		return children, nil
	}

	filtered := make([]child.Child, 0, len(children))
	now := time.Now().UTC()
	search := strings.ToLower(filter.Search)
	for _, c := range children {
		if !filter.Access.Allows(c) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.FirstName), search) &&
			!strings.Contains(strings.ToLower(c.LastName), search) {
			continue
		}
		if filter.AgeRange != "" && !inAgeRange(c.AgeInMonths(now), filter.AgeRange) {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

func (repo *childRepository) CountChildren(_ context.Context, access child.AccessFilter, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	for _, c := range repo.db.all() {
		if access.Allows(c) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *childRepository) UpdateChild(_ context.Context, c child.Child, isActive *bool, _ ...core.DBExecutor) (child.Child, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.rows[c.ID]
	if !ok {
		return child.Child{}, child.ErrNotFound
	}
	if isActive != nil {
		c.IsActive = *isActive
	} else {
		c.IsActive = orig.IsActive
	}
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *childRepository) DeleteChildrenByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.rows[id]; ok {
			delete(repo.db.rows, id)
			cnt++
		}
	}
	return cnt, nil
}

func inAgeRange(months int, bucket string) bool {
	switch bucket {
	case child.AgeRange0To12:
		return months <= 12
	case child.AgeRange13To24:
		return months >= 13 && months <= 24
	case child.AgeRange25To36:
		return months >= 25 && months <= 36
	case child.AgeRange37Plus:
		return months >= 37
	}
	return true
}
