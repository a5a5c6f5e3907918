package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/learning"
)

const (
	activityColumns = `id, title, description, type, difficulty_level, instructions, materials_needed,
estimated_duration, age_range_min, age_range_max, learning_objectives, skills_developed,
created_by, is_active, created_at, updated_at`
	assignmentColumns = `id, child_id, activity_id, assigned_by, assigned_date, due_date, status,
started_at, completed_at, completion_notes`
	badgeColumns      = `id, name, description, type, icon, color, points_required, activities_required, is_active, created_at`
	childBadgeColumns = `id, child_id, badge_id, earned_date, assignment_id`
)

type learningRepository struct {
	db *sqlx.DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *sqlx.DB) *learningRepository {
	return &learningRepository{db: db}
}

func (repo learningRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	return getExec(repo.db, svcExec)
}

// ---------------------------------------------------------------------------
// Activities

func (repo learningRepository) CreateActivity(ctx context.Context, a learning.Activity, exec ...core.DBExecutor) error {
	q := `
INSERT INTO activity (` + activityColumns + `)
VALUES (:id, :title, :description, :type, :difficulty_level, :instructions, :materials_needed,
:estimated_duration, :age_range_min, :age_range_max, :learning_objectives, :skills_developed,
:created_by, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, a); err != nil {
		return errors.Wrap(err, "inserting activity")
	}
	return nil
}

func (repo learningRepository) GetActivityByID(ctx context.Context, id string, exec ...core.DBExecutor) (learning.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return learning.Activity{}, learning.ErrActivityNotFound
	}

	exe := repo.getExec(exec)
	var a learning.Activity
	q := `SELECT ` + activityColumns + ` FROM activity WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &a, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return learning.Activity{}, learning.ErrActivityNotFound
		}
		return learning.Activity{}, errors.Wrap(err, "finding activity")
	}
	return a, nil
}

func (repo learningRepository) QueryActivities(ctx context.Context, filter learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Activity, error) {
	exe := repo.getExec(exec)

	where := []string{"TRUE"}
	var args []interface{}

	if filter.Search != "" {
		where = append(where, "(title ILIKE ? OR description ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Difficulty > 0 {
		where = append(where, "difficulty_level = ?")
		args = append(args, filter.Difficulty)
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	q := `SELECT ` + activityColumns + ` FROM activity WHERE ` + strings.Join(where, " AND ") + orderBy(ordering)

	res := make([]learning.Activity, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	return res, nil
}

func (repo learningRepository) CountActivities(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	var cnt int
	if err := sqlx.GetContext(ctx, exe, &cnt, `SELECT COUNT(*) FROM activity WHERE is_active`); err != nil {
		return 0, errors.Wrap(err, "counting activities")
	}
	return cnt, nil
}

func (repo learningRepository) UpdateActivity(ctx context.Context, a learning.Activity, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `
UPDATE activity SET title = :title, description = :description, type = :type,
difficulty_level = :difficulty_level, instructions = :instructions, materials_needed = :materials_needed,
estimated_duration = :estimated_duration, age_range_min = :age_range_min, age_range_max = :age_range_max,
learning_objectives = :learning_objectives, skills_developed = :skills_developed,
is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, a)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.ErrActivityNotFound
	}
	return nil
}

func (repo learningRepository) DeleteActivitiesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q, args, err := sqlx.In(`DELETE FROM activity WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting activities")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting activities")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Assignments

func (repo learningRepository) CreateAssignment(ctx context.Context, asg learning.Assignment, exec ...core.DBExecutor) error {
	q := `
INSERT INTO activity_assignment (` + assignmentColumns + `)
VALUES (:id, :child_id, :activity_id, :assigned_by, :assigned_date, :due_date, :status,
:started_at, :completed_at, :completion_notes)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, asg); err != nil {
		return errors.Wrap(err, "inserting assignment")
	}
	return nil
}

func (repo learningRepository) GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (learning.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return learning.Assignment{}, learning.ErrAssignmentNotFound
	}

	exe := repo.getExec(exec)
	var asg learning.Assignment
	q := `SELECT ` + assignmentColumns + ` FROM activity_assignment WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &asg, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return learning.Assignment{}, learning.ErrAssignmentNotFound
		}
		return learning.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return asg, nil
}

func (repo learningRepository) GetAssignment(ctx context.Context, childID, activityID string, exec ...core.DBExecutor) (learning.Assignment, error) {
	exe := repo.getExec(exec)
	var asg learning.Assignment
	q := `SELECT ` + assignmentColumns + ` FROM activity_assignment WHERE child_id = ? AND activity_id = ?`
	if err := sqlx.GetContext(ctx, exe, &asg, exe.Rebind(q), childID, activityID); err != nil {
		if err == sql.ErrNoRows {
			return learning.Assignment{}, learning.ErrAssignmentNotFound
		}
		return learning.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return asg, nil
}

func (repo learningRepository) QueryAssignments(ctx context.Context, filter learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Assignment, error) {
	exe := repo.getExec(exec)

	where := []string{"TRUE"}
	var args []interface{}

	clause, cArgs := accessClause(filter.Access, "c")
	where = append(where, clause)
	args = append(args, cArgs...)

	if filter.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.ChildID != "" {
		where = append(where, "t.child_id = ?")
		args = append(args, filter.ChildID)
	}

	q := `SELECT ` + prefixColumns(assignmentColumns) + `
FROM activity_assignment t JOIN child c ON c.id = t.child_id
WHERE ` + strings.Join(where, " AND ") + orderBy(ordering)

	res := make([]learning.Assignment, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return res, nil
}

func (repo learningRepository) CountAssignments(ctx context.Context, status string, access child.AccessFilter, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	clause, args := accessClause(access, "c")
	q := `
SELECT COUNT(*) FROM activity_assignment t JOIN child c ON c.id = t.child_id
WHERE ` + clause + ` AND t.status = ?`
	args = append(args, status)

	var cnt int
	if err := sqlx.GetContext(ctx, exe, &cnt, exe.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting assignments")
	}
	return cnt, nil
}

func (repo learningRepository) UpdateAssignment(ctx context.Context, asg learning.Assignment, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `
UPDATE activity_assignment SET due_date = :due_date, status = :status, started_at = :started_at,
completed_at = :completed_at, completion_notes = :completion_notes
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, asg)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.ErrAssignmentNotFound
	}
	return nil
}

func (repo learningRepository) DeleteAssignmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q, args, err := sqlx.In(`DELETE FROM activity_assignment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Badges

func (repo learningRepository) CreateBadge(ctx context.Context, b learning.Badge, exec ...core.DBExecutor) error {
	q := `
INSERT INTO badge (` + badgeColumns + `)
VALUES (:id, :name, :description, :type, :icon, :color, :points_required, :activities_required, :is_active, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, b); err != nil {
		return errors.Wrap(err, "inserting badge")
	}
	return nil
}

func (repo learningRepository) GetBadgeByID(ctx context.Context, id string, exec ...core.DBExecutor) (learning.Badge, error) {
	if _, err := uuid.Parse(id); err != nil {
		return learning.Badge{}, learning.ErrBadgeNotFound
	}

	exe := repo.getExec(exec)
	var b learning.Badge
	q := `SELECT ` + badgeColumns + ` FROM badge WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &b, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return learning.Badge{}, learning.ErrBadgeNotFound
		}
		return learning.Badge{}, errors.Wrap(err, "finding badge")
	}
	return b, nil
}

func (repo learningRepository) QueryBadges(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Badge, error) {
	exe := repo.getExec(exec)

	order := orderBy(ordering)
	if order == "" {
		order = " ORDER BY points_required ASC, name ASC"
	}
	q := `SELECT ` + badgeColumns + ` FROM badge WHERE is_active` + order

	res := make([]learning.Badge, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, q); err != nil {
		return nil, errors.Wrap(err, "querying badges")
	}
	return res, nil
}

func (repo learningRepository) CreateChildBadge(ctx context.Context, cb learning.ChildBadge, exec ...core.DBExecutor) error {
	q := `
INSERT INTO child_badge (` + childBadgeColumns + `)
VALUES (:id, :child_id, :badge_id, :earned_date, :assignment_id)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, cb); err != nil {
		return errors.Wrap(err, "inserting child badge")
	}
	return nil
}

func (repo learningRepository) GetChildBadge(ctx context.Context, childID, badgeID string, exec ...core.DBExecutor) (learning.ChildBadge, error) {
	exe := repo.getExec(exec)
	var cb learning.ChildBadge
	q := `SELECT ` + childBadgeColumns + ` FROM child_badge WHERE child_id = ? AND badge_id = ?`
	if err := sqlx.GetContext(ctx, exe, &cb, exe.Rebind(q), childID, badgeID); err != nil {
		if err == sql.ErrNoRows {
			return learning.ChildBadge{}, learning.ErrBadgeNotFound
		}
		return learning.ChildBadge{}, errors.Wrap(err, "finding child badge")
	}
	return cb, nil
}

func (repo learningRepository) QueryChildBadges(ctx context.Context, access child.AccessFilter, exec ...core.DBExecutor) ([]learning.ChildBadge, error) {
	exe := repo.getExec(exec)

	clause, args := accessClause(access, "c")
	q := `SELECT ` + prefixColumns(childBadgeColumns) + `
FROM child_badge t JOIN child c ON c.id = t.child_id
WHERE ` + clause + ` ORDER BY t.earned_date DESC`

	res := make([]learning.ChildBadge, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying child badges")
	}
	return res, nil
}

func (repo learningRepository) CountChildBadges(ctx context.Context, access child.AccessFilter, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	clause, args := accessClause(access, "c")
	q := `SELECT COUNT(*) FROM child_badge t JOIN child c ON c.id = t.child_id WHERE ` + clause

	var cnt int
	if err := sqlx.GetContext(ctx, exe, &cnt, exe.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting child badges")
	}
	return cnt, nil
}
