package dummydb

import (
	"context"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
)

type careRepository struct {
	asmt     *table[care.Assessment]
	plan     *table[care.SupportPlan]
	report   *table[care.ProgressReport]
	children *table[child.Child]
}

var _ care.Repository = (*careRepository)(nil) // interface compliance check

func NewCareRepository(db *DB) *careRepository {
	return &careRepository{asmt: db.asmt, plan: db.plan, report: db.report, children: db.child}
}

// childAllowed resolves the owning child and applies the access filter.
func (repo *careRepository) childAllowed(childID string, access child.AccessFilter) bool {
	repo.children.RLock()
	defer repo.children.RUnlock()

	c, ok := repo.children.rows[childID]
	if !ok {
		return false
	}
	return access.Allows(*c)
}

func (repo *careRepository) CreateAssessment(_ context.Context, a care.Assessment, _ ...core.DBExecutor) error {
	repo.asmt.Lock()
	defer repo.asmt.Unlock()
	repo.asmt.rows[a.ID] = &a
	return nil
}

func (repo *careRepository) GetAssessmentByID(_ context.Context, id string, _ ...core.DBExecutor) (care.Assessment, error) {
	repo.asmt.RLock()
	defer repo.asmt.RUnlock()

	if a, ok := repo.asmt.rows[id]; ok {
		return *a, nil
	}
	return care.Assessment{}, care.ErrAssessmentNotFound
}

func (repo *careRepository) QueryAssessments(_ context.Context, filter care.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]care.Assessment, error) {
	repo.asmt.RLock()
	defer repo.asmt.RUnlock()

	res := make([]care.Assessment, 0)
	for _, a := range repo.asmt.all() {
		if !repo.childAllowed(a.ChildID, filter.Access) {
			continue
		}
		if filter.ChildID != "" && a.ChildID != filter.ChildID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		res = append(res, a)
	}
	return res, nil
}

func (repo *careRepository) UpdateAssessment(_ context.Context, a care.Assessment, _ ...core.DBExecutor) error {
	repo.asmt.Lock()
	defer repo.asmt.Unlock()

	if _, ok := repo.asmt.rows[a.ID]; !ok {
		return care.ErrAssessmentNotFound
	}
	repo.asmt.rows[a.ID] = &a
	return nil
}

func (repo *careRepository) DeleteAssessmentsByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.asmt.Lock()
	defer repo.asmt.Unlock()
	for _, id := range ids {
		delete(repo.asmt.rows, id)
	}
	return nil
}

func (repo *careRepository) CreateSupportPlan(_ context.Context, p care.SupportPlan, _ ...core.DBExecutor) error {
	repo.plan.Lock()
	defer repo.plan.Unlock()
	repo.plan.rows[p.ID] = &p
	return nil
}

func (repo *careRepository) GetSupportPlanByID(_ context.Context, id string, _ ...core.DBExecutor) (care.SupportPlan, error) {
	repo.plan.RLock()
	defer repo.plan.RUnlock()

	if p, ok := repo.plan.rows[id]; ok {
		return *p, nil
	}
	return care.SupportPlan{}, care.ErrPlanNotFound
}

func (repo *careRepository) GetSupportPlanByChildID(_ context.Context, childID string, _ ...core.DBExecutor) (care.SupportPlan, error) {
	repo.plan.RLock()
	defer repo.plan.RUnlock()

	for _, p := range repo.plan.all() {
		if p.ChildID == childID {
			return p, nil
		}
	}
	return care.SupportPlan{}, care.ErrPlanNotFound
}

func (repo *careRepository) QuerySupportPlans(_ context.Context, filter care.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]care.SupportPlan, error) {
	repo.plan.RLock()
	defer repo.plan.RUnlock()

	res := make([]care.SupportPlan, 0)
	for _, p := range repo.plan.all() {
		if !repo.childAllowed(p.ChildID, filter.Access) {
			continue
		}
		if filter.ChildID != "" && p.ChildID != filter.ChildID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

func (repo *careRepository) UpdateSupportPlan(_ context.Context, p care.SupportPlan, _ ...core.DBExecutor) error {
	repo.plan.Lock()
	defer repo.plan.Unlock()

	if _, ok := repo.plan.rows[p.ID]; !ok {
		return care.ErrPlanNotFound
	}
	repo.plan.rows[p.ID] = &p
	return nil
}

func (repo *careRepository) DeleteSupportPlansByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.plan.Lock()
	defer repo.plan.Unlock()
	for _, id := range ids {
		delete(repo.plan.rows, id)
	}
	return nil
}

func (repo *careRepository) CreateProgressReport(_ context.Context, r care.ProgressReport, _ ...core.DBExecutor) error {
	repo.report.Lock()
	defer repo.report.Unlock()
	repo.report.rows[r.ID] = &r
	return nil
}

func (repo *careRepository) GetProgressReportByID(_ context.Context, id string, _ ...core.DBExecutor) (care.ProgressReport, error) {
	repo.report.RLock()
	defer repo.report.RUnlock()

	if r, ok := repo.report.rows[id]; ok {
		return *r, nil
	}
	return care.ProgressReport{}, care.ErrReportNotFound
}

func (repo *careRepository) QueryProgressReports(_ context.Context, filter care.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]care.ProgressReport, error) {
	repo.report.RLock()
	defer repo.report.RUnlock()

	res := make([]care.ProgressReport, 0)
	for _, r := range repo.report.all() {
		if !repo.childAllowed(r.ChildID, filter.Access) {
			continue
		}
		if filter.ChildID != "" && r.ChildID != filter.ChildID {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (repo *careRepository) UpdateProgressReport(_ context.Context, r care.ProgressReport, _ ...core.DBExecutor) error {
	repo.report.Lock()
	defer repo.report.Unlock()

	if _, ok := repo.report.rows[r.ID]; !ok {
		return care.ErrReportNotFound
	}
	repo.report.rows[r.ID] = &r
	return nil
}

func (repo *careRepository) DeleteProgressReportsByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.report.Lock()
	defer repo.report.Unlock()
	for _, id := range ids {
		delete(repo.report.rows, id)
	}
	return nil
}
