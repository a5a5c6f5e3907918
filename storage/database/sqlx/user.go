package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/user"
)

const userColumns = `id, name, username, email, phone, role, is_superuser, is_active, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	return getExec(repo.db, svcExec)
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	q := `SELECT username, email FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		q, args, err = sqlx.In(q+" AND id NOT IN (?)", username, email, ids)
		if err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
	}

	var matches []struct {
		Username string
		Email    string
	}
	if err := sqlx.SelectContext(ctx, exe, &matches, exe.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var unameTaken, emailTaken bool
	for _, m := range matches {
		if m.Username == username {
			unameTaken = true
		}
		if m.Email == email {
			emailTaken = true
		}
	}
	switch {
	case unameTaken && emailTaken:
		return user.ErrUserExists
	case unameTaken:
		return user.ErrUnameTaken
	case emailTaken:
		return user.ErrEmailTaken
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `
INSERT INTO "user" (` + userColumns + `)
VALUES (:id, :name, :username, :email, :phone, :role, :is_superuser, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, usr); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	var usr user.User

	q := `SELECT ` + userColumns + ` FROM "user" WHERE `
	var arg []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		q += "id = ?"
		arg = []interface{}{filter.ID}
	case filter.Username != "":
		q += "username = ?"
		arg = []interface{}{filter.Username}
	case filter.Email != "":
		q += "email = ?"
		arg = []interface{}{filter.Email}
	case len(filter.UsernameOrEmail) > 0:
		uname := filter.UsernameOrEmail[0]
		email := uname
		if len(filter.UsernameOrEmail) == 2 && filter.UsernameOrEmail[1] != "" {
			email = filter.UsernameOrEmail[1]
		}
		q += "(username = ? OR email = ?)"
		arg = []interface{}{uname, email}
	default:
		return user.User{}, user.ErrNotFound
	}

	if err := sqlx.GetContext(ctx, exe, &usr, exe.Rebind(q), arg...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	exe := repo.getExec(exec)

	where := []string{"TRUE"}
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			where = append(where, "(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		if filter.Role != "" {
			where = append(where, "role = ?")
			args = append(args, filter.Role)
		}
		if filter.IsActive != nil {
			where = append(where, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			where = append(where, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			where = append(where, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	q := `SELECT ` + userColumns + ` FROM "user" WHERE ` + strings.Join(where, " AND ") + orderBy(ordering)

	users := make([]user.User, 0)
	if err := sqlx.SelectContext(ctx, exe, &users, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)

	// only save set fields
	set := []string{"updated_at = ?"}
	args := []interface{}{usr.UpdatedAt.UTC()}
	if usr.Name != "" {
		set = append(set, "name = ?")
		args = append(args, usr.Name)
	}
	if usr.Username != "" {
		set = append(set, "username = ?")
		args = append(args, usr.Username)
	}
	if usr.Email != "" {
		set = append(set, "email = ?")
		args = append(args, usr.Email)
	}
	if usr.Phone != "" {
		set = append(set, "phone = ?")
		args = append(args, usr.Phone)
	}
	if usr.Role != user.NoRole {
		set = append(set, "role = ?")
		args = append(args, usr.Role)
	}
	if usr.PasswordHash != nil {
		set = append(set, "password_hash = ?")
		args = append(args, usr.PasswordHash)
	}
	if !usr.LastLogin.IsZero() {
		set = append(set, "last_login = ?")
		args = append(args, usr.LastLogin.UTC())
	}
	if isActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *isActive)
	}
	args = append(args, usr.ID)

	q := `UPDATE "user" SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	res, err := exe.ExecContext(ctx, exe.Rebind(q), args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}

	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, nil, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	res, err := exe.ExecContext(ctx, exe.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
