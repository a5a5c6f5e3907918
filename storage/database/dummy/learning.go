package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/learning"
)

type learningRepository struct {
	activity *table[learning.Activity]
	asg      *table[learning.Assignment]
	badge    *table[learning.Badge]
	earned   *table[learning.ChildBadge]
	children *table[child.Child]
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *DB) *learningRepository {
	return &learningRepository{
		activity: db.activity,
		asg:      db.asg,
		badge:    db.badge,
		earned:   db.earned,
		children: db.child,
	}
}

func (repo *learningRepository) childAllowed(childID string, access child.AccessFilter) bool {
	repo.children.RLock()
	defer repo.children.RUnlock()

	c, ok := repo.children.rows[childID]
	if !ok {
		return false
	}
	return access.Allows(*c)
}

func (repo *learningRepository) CreateActivity(_ context.Context, a learning.Activity, _ ...core.DBExecutor) error {
	repo.activity.Lock()
	defer repo.activity.Unlock()
	repo.activity.rows[a.ID] = &a
	return nil
}

func (repo *learningRepository) GetActivityByID(_ context.Context, id string, _ ...core.DBExecutor) (learning.Activity, error) {
	repo.activity.RLock()
	defer repo.activity.RUnlock()

	if a, ok := repo.activity.rows[id]; ok {
		return *a, nil
	}
	return learning.Activity{}, learning.ErrActivityNotFound
}

func (repo *learningRepository) QueryActivities(_ context.Context, filter learning.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]learning.Activity, error) {
	repo.activity.RLock()
	defer repo.activity.RUnlock()

	res := make([]learning.Activity, 0)
	search := strings.ToLower(filter.Search)
	for _, a := range repo.activity.all() {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Difficulty > 0 && a.DifficultyLevel != filter.Difficulty {
			continue
		}
		if filter.IsActive != nil && a.IsActive != *filter.IsActive {
			continue
		}
		res = append(res, a)
	}
	return res, nil
}

func (repo *learningRepository) CountActivities(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.activity.RLock()
	defer repo.activity.RUnlock()

	var cnt int
	for _, a := range repo.activity.all() {
		if a.IsActive {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *learningRepository) UpdateActivity(_ context.Context, a learning.Activity, _ ...core.DBExecutor) error {
	repo.activity.Lock()
	defer repo.activity.Unlock()

	if _, ok := repo.activity.rows[a.ID]; !ok {
		return learning.ErrActivityNotFound
	}
	repo.activity.rows[a.ID] = &a
	return nil
}

func (repo *learningRepository) DeleteActivitiesByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.activity.Lock()
	defer repo.activity.Unlock()
	for _, id := range ids {
		delete(repo.activity.rows, id)
	}
	return nil
}

func (repo *learningRepository) CreateAssignment(_ context.Context, asg learning.Assignment, _ ...core.DBExecutor) error {
	repo.asg.Lock()
	defer repo.asg.Unlock()
	repo.asg.rows[asg.ID] = &asg
	return nil
}

func (repo *learningRepository) GetAssignmentByID(_ context.Context, id string, _ ...core.DBExecutor) (learning.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	if asg, ok := repo.asg.rows[id]; ok {
		return *asg, nil
	}
	return learning.Assignment{}, learning.ErrAssignmentNotFound
}

func (repo *learningRepository) GetAssignment(_ context.Context, childID, activityID string, _ ...core.DBExecutor) (learning.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	for _, asg := range repo.asg.all() {
		if asg.ChildID == childID && asg.ActivityID == activityID {
			return asg, nil
		}
	}
	return learning.Assignment{}, learning.ErrAssignmentNotFound
}

func (repo *learningRepository) QueryAssignments(_ context.Context, filter learning.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]learning.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	res := make([]learning.Assignment, 0)
	for _, asg := range repo.asg.all() {
		if !repo.childAllowed(asg.ChildID, filter.Access) {
			continue
		}
		if filter.Status != "" && asg.Status != filter.Status {
			continue
		}
		if filter.ChildID != "" && asg.ChildID != filter.ChildID {
			continue
		}
		res = append(res, asg)
	}
	return res, nil
}

func (repo *learningRepository) CountAssignments(_ context.Context, status string, access child.AccessFilter, _ ...core.DBExecutor) (int, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	var cnt int
	for _, asg := range repo.asg.all() {
		if asg.Status == status && repo.childAllowed(asg.ChildID, access) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *learningRepository) UpdateAssignment(_ context.Context, asg learning.Assignment, _ ...core.DBExecutor) error {
	repo.asg.Lock()
	defer repo.asg.Unlock()

	if _, ok := repo.asg.rows[asg.ID]; !ok {
		return learning.ErrAssignmentNotFound
	}
	repo.asg.rows[asg.ID] = &asg
	return nil
}

func (repo *learningRepository) DeleteAssignmentsByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.asg.Lock()
	defer repo.asg.Unlock()
	for _, id := range ids {
		delete(repo.asg.rows, id)
	}
	return nil
}

func (repo *learningRepository) CreateBadge(_ context.Context, b learning.Badge, _ ...core.DBExecutor) error {
	repo.badge.Lock()
	defer repo.badge.Unlock()
	repo.badge.rows[b.ID] = &b
	return nil
}

func (repo *learningRepository) GetBadgeByID(_ context.Context, id string, _ ...core.DBExecutor) (learning.Badge, error) {
	repo.badge.RLock()
	defer repo.badge.RUnlock()

	if b, ok := repo.badge.rows[id]; ok {
		return *b, nil
	}
	return learning.Badge{}, learning.ErrBadgeNotFound
}

func (repo *learningRepository) QueryBadges(_ context.Context, _ []core.DBOrdering, _ ...core.DBExecutor) ([]learning.Badge, error) {
	repo.badge.RLock()
	defer repo.badge.RUnlock()

	res := make([]learning.Badge, 0)
	for _, b := range repo.badge.all() {
		if b.IsActive {
			res = append(res, b)
		}
	}
	return res, nil
}

func (repo *learningRepository) CreateChildBadge(_ context.Context, cb learning.ChildBadge, _ ...core.DBExecutor) error {
	repo.earned.Lock()
	defer repo.earned.Unlock()
	repo.earned.rows[cb.ID] = &cb
	return nil
}

func (repo *learningRepository) GetChildBadge(_ context.Context, childID, badgeID string, _ ...core.DBExecutor) (learning.ChildBadge, error) {
	repo.earned.RLock()
	defer repo.earned.RUnlock()

	for _, cb := range repo.earned.all() {
		if cb.ChildID == childID && cb.BadgeID == badgeID {
			return cb, nil
		}
	}
	return learning.ChildBadge{}, learning.ErrBadgeNotFound
}

func (repo *learningRepository) QueryChildBadges(_ context.Context, access child.AccessFilter, _ ...core.DBExecutor) ([]learning.ChildBadge, error) {
	repo.earned.RLock()
	defer repo.earned.RUnlock()

	res := make([]learning.ChildBadge, 0)
	for _, cb := range repo.earned.all() {
		if repo.childAllowed(cb.ChildID, access) {
			res = append(res, cb)
		}
	}
	return res, nil
}

func (repo *learningRepository) CountChildBadges(_ context.Context, access child.AccessFilter, _ ...core.DBExecutor) (int, error) {
	repo.earned.RLock()
	defer repo.earned.RUnlock()

	var cnt int
	for _, cb := range repo.earned.all() {
		if repo.childAllowed(cb.ChildID, access) {
			cnt++
		}
	}
	return cnt, nil
}
