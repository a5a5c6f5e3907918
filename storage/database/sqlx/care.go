package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/care"
)

const (
	assessmentColumns = `id, child_id, assessor_id, type, date, motor_score, cognitive_score, language_score,
social_score, adaptive_score, overall_score, notes, recommendations, created_at, updated_at`
	planColumns = `id, child_id, created_by, status, goals, strategies, resources_needed, timeline,
review_date, next_review, progress_notes, created_at, updated_at`
	reportColumns = `id, child_id, created_by, title, type, date, summary, detailed_report, strengths,
areas_for_improvement, recommendations, teacher_notes, parent_feedback, created_at, updated_at`
)

type careRepository struct {
	db *sqlx.DB
}

var _ care.Repository = (*careRepository)(nil) // interface compliance check

func NewCareRepository(db *sqlx.DB) *careRepository {
	return &careRepository{db: db}
}

func (repo careRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	return getExec(repo.db, svcExec)
}

// careWhere builds the WHERE fragment shared by the three dependent-record
// queries: access through the owning child, free-text search on the child's
// name and the record's type column, and optional per-column equality.
func careWhere(filter care.QueryFilter, withStatus bool) (string, []interface{}) {
	where := []string{"TRUE"}
	var args []interface{}

	clause, cArgs := accessClause(filter.Access, "c")
	where = append(where, clause)
	args = append(args, cArgs...)

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		cond := "(c.first_name ILIKE ? OR c.last_name ILIKE ?"
		args = append(args, val, val)
		if !withStatus {
			cond += " OR t.type ILIKE ?"
			args = append(args, val)
		}
		where = append(where, cond+")")
	}
	if filter.Type != "" && !withStatus {
		where = append(where, "t.type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" && withStatus {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.ChildID != "" {
		where = append(where, "t.child_id = ?")
		args = append(args, filter.ChildID)
	}

	return strings.Join(where, " AND "), args
}

func prefixColumns(cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = "t." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// Assessments

func (repo careRepository) CreateAssessment(ctx context.Context, a care.Assessment, exec ...core.DBExecutor) error {
	q := `
INSERT INTO assessment (` + assessmentColumns + `)
VALUES (:id, :child_id, :assessor_id, :type, :date, :motor_score, :cognitive_score, :language_score,
:social_score, :adaptive_score, :overall_score, :notes, :recommendations, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, a); err != nil {
		return errors.Wrap(err, "inserting assessment")
	}
	return nil
}

func (repo careRepository) GetAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (care.Assessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return care.Assessment{}, care.ErrAssessmentNotFound
	}

	exe := repo.getExec(exec)
	var a care.Assessment
	q := `SELECT ` + assessmentColumns + ` FROM assessment WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &a, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return care.Assessment{}, care.ErrAssessmentNotFound
		}
		return care.Assessment{}, errors.Wrap(err, "finding assessment")
	}
	return a, nil
}

func (repo careRepository) QueryAssessments(ctx context.Context, filter care.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]care.Assessment, error) {
	exe := repo.getExec(exec)

	where, args := careWhere(filter, false)
	q := `SELECT ` + prefixColumns(assessmentColumns) + `
FROM assessment t JOIN child c ON c.id = t.child_id
WHERE ` + where + orderBy(ordering)

	res := make([]care.Assessment, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}
	return res, nil
}

func (repo careRepository) UpdateAssessment(ctx context.Context, a care.Assessment, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `
UPDATE assessment SET type = :type, date = :date, motor_score = :motor_score, cognitive_score = :cognitive_score,
language_score = :language_score, social_score = :social_score, adaptive_score = :adaptive_score,
overall_score = :overall_score, notes = :notes, recommendations = :recommendations, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, a)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return care.ErrAssessmentNotFound
	}
	return nil
}

func (repo careRepository) DeleteAssessmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "assessment", ids, exec)
}

// ---------------------------------------------------------------------------
// Support plans

func (repo careRepository) CreateSupportPlan(ctx context.Context, p care.SupportPlan, exec ...core.DBExecutor) error {
	q := `
INSERT INTO support_plan (` + planColumns + `)
VALUES (:id, :child_id, :created_by, :status, :goals, :strategies, :resources_needed, :timeline,
:review_date, :next_review, :progress_notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, p); err != nil {
		return errors.Wrap(err, "inserting support plan")
	}
	return nil
}

func (repo careRepository) GetSupportPlanByID(ctx context.Context, id string, exec ...core.DBExecutor) (care.SupportPlan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return care.SupportPlan{}, care.ErrPlanNotFound
	}
	return repo.getPlan(ctx, "id", id, exec)
}

func (repo careRepository) GetSupportPlanByChildID(ctx context.Context, childID string, exec ...core.DBExecutor) (care.SupportPlan, error) {
	return repo.getPlan(ctx, "child_id", childID, exec)
}

func (repo careRepository) getPlan(ctx context.Context, col, val string, exec []core.DBExecutor) (care.SupportPlan, error) {
	exe := repo.getExec(exec)
	var p care.SupportPlan
	q := `SELECT ` + planColumns + ` FROM support_plan WHERE ` + col + ` = ?`
	if err := sqlx.GetContext(ctx, exe, &p, exe.Rebind(q), val); err != nil {
		if err == sql.ErrNoRows {
			return care.SupportPlan{}, care.ErrPlanNotFound
		}
		return care.SupportPlan{}, errors.Wrap(err, "finding support plan")
	}
	return p, nil
}

func (repo careRepository) QuerySupportPlans(ctx context.Context, filter care.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]care.SupportPlan, error) {
	exe := repo.getExec(exec)

	where, args := careWhere(filter, true)
	q := `SELECT ` + prefixColumns(planColumns) + `
FROM support_plan t JOIN child c ON c.id = t.child_id
WHERE ` + where + orderBy(ordering)

	res := make([]care.SupportPlan, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying support plans")
	}
	return res, nil
}

func (repo careRepository) UpdateSupportPlan(ctx context.Context, p care.SupportPlan, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `
UPDATE support_plan SET status = :status, goals = :goals, strategies = :strategies,
resources_needed = :resources_needed, timeline = :timeline, review_date = :review_date,
next_review = :next_review, progress_notes = :progress_notes, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, p)
	if err != nil {
		return errors.Wrap(err, "updating support plan")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return care.ErrPlanNotFound
	}
	return nil
}

func (repo careRepository) DeleteSupportPlansByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "support_plan", ids, exec)
}

// ---------------------------------------------------------------------------
// Progress reports

func (repo careRepository) CreateProgressReport(ctx context.Context, r care.ProgressReport, exec ...core.DBExecutor) error {
	q := `
INSERT INTO progress_report (` + reportColumns + `)
VALUES (:id, :child_id, :created_by, :title, :type, :date, :summary, :detailed_report, :strengths,
:areas_for_improvement, :recommendations, :teacher_notes, :parent_feedback, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, r); err != nil {
		return errors.Wrap(err, "inserting progress report")
	}
	return nil
}

func (repo careRepository) GetProgressReportByID(ctx context.Context, id string, exec ...core.DBExecutor) (care.ProgressReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return care.ProgressReport{}, care.ErrReportNotFound
	}

	exe := repo.getExec(exec)
	var r care.ProgressReport
	q := `SELECT ` + reportColumns + ` FROM progress_report WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &r, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return care.ProgressReport{}, care.ErrReportNotFound
		}
		return care.ProgressReport{}, errors.Wrap(err, "finding progress report")
	}
	return r, nil
}

func (repo careRepository) QueryProgressReports(ctx context.Context, filter care.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]care.ProgressReport, error) {
	exe := repo.getExec(exec)

	where, args := careWhere(filter, false)
	q := `SELECT ` + prefixColumns(reportColumns) + `
FROM progress_report t JOIN child c ON c.id = t.child_id
WHERE ` + where + orderBy(ordering)

	res := make([]care.ProgressReport, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying progress reports")
	}
	return res, nil
}

func (repo careRepository) UpdateProgressReport(ctx context.Context, r care.ProgressReport, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `
UPDATE progress_report SET title = :title, type = :type, date = :date, summary = :summary,
detailed_report = :detailed_report, strengths = :strengths, areas_for_improvement = :areas_for_improvement,
recommendations = :recommendations, teacher_notes = :teacher_notes, parent_feedback = :parent_feedback,
updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, r)
	if err != nil {
		return errors.Wrap(err, "updating progress report")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return care.ErrReportNotFound
	}
	return nil
}

func (repo careRepository) DeleteProgressReportsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "progress_report", ids, exec)
}

func (repo careRepository) deleteByID(ctx context.Context, table string, ids []string, exec []core.DBExecutor) error {
	exe := repo.getExec(exec)
	q, args, err := sqlx.In(`DELETE FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	if _, err = exe.ExecContext(ctx, exe.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	return nil
}
