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
)

const childColumns = `id, first_name, last_name, date_of_birth, gender, parent_id, teacher_id, user_id,
medical_conditions, emergency_contact, emergency_phone, is_active, created_at, updated_at`

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{db: db}
}

func (repo childRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	return getExec(repo.db, svcExec)
}

func (repo childRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return child.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo childRepository) CreateChild(ctx context.Context, c child.Child, exec ...core.DBExecutor) (child.Child, error) {
	c.ID = uuid.New().String()
	q := `
INSERT INTO child (` + childColumns + `)
VALUES (:id, :first_name, :last_name, :date_of_birth, :gender, :parent_id, :teacher_id, :user_id,
:medical_conditions, :emergency_contact, :emergency_phone, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, c); err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return c, nil
}

func (repo childRepository) GetChildByID(ctx context.Context, id string, exec ...core.DBExecutor) (child.Child, error) {
	if _, err := uuid.Parse(id); err != nil {
		return child.Child{}, child.ErrNotFound
	}

	exe := repo.getExec(exec)
	var c child.Child
	q := `SELECT ` + childColumns + ` FROM child WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &c, exe.Rebind(q), id); err != nil {
		return child.Child{}, repo.trapNoRowsErr(err, "finding child by ID")
	}
	return c, nil
}

func (repo childRepository) GetChildByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (child.Child, error) {
	exe := repo.getExec(exec)
	var c child.Child
	q := `SELECT ` + childColumns + ` FROM child WHERE user_id = ?`
	if err := sqlx.GetContext(ctx, exe, &c, exe.Rebind(q), userID); err != nil {
		return child.Child{}, repo.trapNoRowsErr(err, "finding child by user ID")
	}
	return c, nil
}

func (repo childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]child.Child, error) {
	exe := repo.getExec(exec)

	where := []string{"TRUE"}
	var args []interface{}

	if filter != nil {
		clause, cArgs := accessClause(filter.Access, "child")
		where = append(where, clause)
		args = append(args, cArgs...)

		if filter.Search != "" {
			where = append(where, "(first_name ILIKE ? OR last_name ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if clause, cArgs := ageRangeClause(filter.AgeRange); clause != "" {
			where = append(where, clause)
			args = append(args, cArgs...)
		}
		if filter.IsActive != nil {
			where = append(where, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
	}

	q := `SELECT ` + childColumns + ` FROM child WHERE ` + strings.Join(where, " AND ") + orderBy(ordering)

	children := make([]child.Child, 0)
	if err := sqlx.SelectContext(ctx, exe, &children, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	return children, nil
}

func (repo childRepository) CountChildren(ctx context.Context, access child.AccessFilter, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	clause, args := accessClause(access, "child")
	q := `SELECT COUNT(*) FROM child WHERE ` + clause

	var cnt int
	if err := sqlx.GetContext(ctx, exe, &cnt, exe.Rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "counting children")
	}
	return cnt, nil
}

func (repo childRepository) UpdateChild(ctx context.Context, c child.Child, isActive *bool, exec ...core.DBExecutor) (child.Child, error) {
	exe := repo.getExec(exec)

	set := []string{
		"first_name = ?", "last_name = ?", "date_of_birth = ?", "gender = ?",
		"teacher_id = ?", "user_id = ?", "medical_conditions = ?",
		"emergency_contact = ?", "emergency_phone = ?", "updated_at = ?",
	}
	args := []interface{}{
		c.FirstName, c.LastName, c.DateOfBirth, c.Gender,
		c.TeacherID, c.UserID, c.MedicalConditions,
		c.EmergencyContact, c.EmergencyPhone, c.UpdatedAt.UTC(),
	}
	if isActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *isActive)
	}
	args = append(args, c.ID)

	q := `UPDATE child SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	res, err := exe.ExecContext(ctx, exe.Rebind(q), args...)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return repo.GetChildByID(ctx, c.ID, exec...)
}

func (repo childRepository) DeleteChildrenByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	q, args, err := sqlx.In(`DELETE FROM child WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	res, err := exe.ExecContext(ctx, exe.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting children")
	}
	return int(cnt), nil
}

// ageRangeClause turns an age bucket into a date_of_birth range predicate
// evaluated by the database.
func ageRangeClause(bucket string) (string, []interface{}) {
	switch bucket {
	case child.AgeRange0To12:
		return "date_of_birth > (CURRENT_DATE - INTERVAL '12 months')", nil
	case child.AgeRange13To24:
		return "date_of_birth <= (CURRENT_DATE - INTERVAL '12 months') AND date_of_birth > (CURRENT_DATE - INTERVAL '24 months')", nil
	case child.AgeRange25To36:
		return "date_of_birth <= (CURRENT_DATE - INTERVAL '24 months') AND date_of_birth > (CURRENT_DATE - INTERVAL '36 months')", nil
	case child.AgeRange37Plus:
		return "date_of_birth <= (CURRENT_DATE - INTERVAL '36 months')", nil
	}
	return "", nil
}
