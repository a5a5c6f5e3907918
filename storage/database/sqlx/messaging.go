package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/messaging"
)

const (
	messageColumns      = `id, sender_id, recipient_id, subject, content, is_read, parent_id, created_at, updated_at`
	notificationColumns = `id, user_id, title, message, type, is_read, related_url, created_at, expires_at`
)

type messagingRepository struct {
	db *sqlx.DB
}

var _ messaging.Repository = (*messagingRepository)(nil) // interface compliance check

func NewMessagingRepository(db *sqlx.DB) *messagingRepository {
	return &messagingRepository{db: db}
}

func (repo messagingRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	return getExec(repo.db, svcExec)
}

func (repo messagingRepository) CreateMessage(ctx context.Context, m messaging.Message, exec ...core.DBExecutor) error {
	q := `
INSERT INTO message (` + messageColumns + `)
VALUES (:id, :sender_id, :recipient_id, :subject, :content, :is_read, :parent_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, m); err != nil {
		return errors.Wrap(err, "inserting message")
	}
	return nil
}

func (repo messagingRepository) GetMessageByID(ctx context.Context, id string, exec ...core.DBExecutor) (messaging.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return messaging.Message{}, messaging.ErrMessageNotFound
	}

	exe := repo.getExec(exec)
	var m messaging.Message
	q := `SELECT ` + messageColumns + ` FROM message WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &m, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return messaging.Message{}, messaging.ErrMessageNotFound
		}
		return messaging.Message{}, errors.Wrap(err, "finding message")
	}
	return m, nil
}

func (repo messagingRepository) QueryInbox(ctx context.Context, filter messaging.InboxFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]messaging.Message, error) {
	exe := repo.getExec(exec)

	where := []string{"recipient_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.Search != "" {
		where = append(where, "(subject ILIKE ? OR content ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val)
	}
	if filter.Unread != nil {
		where = append(where, "is_read = ?")
		args = append(args, !*filter.Unread)
	}

	order := orderBy(ordering)
	if order == "" {
		order = " ORDER BY created_at DESC"
	}
	q := `SELECT ` + messageColumns + ` FROM message WHERE ` + strings.Join(where, " AND ") + order

	res := make([]messaging.Message, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying inbox")
	}
	return res, nil
}

func (repo messagingRepository) QuerySent(ctx context.Context, senderID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]messaging.Message, error) {
	exe := repo.getExec(exec)

	order := orderBy(ordering)
	if order == "" {
		order = " ORDER BY created_at DESC"
	}
	q := `SELECT ` + messageColumns + ` FROM message WHERE sender_id = ?` + order

	res := make([]messaging.Message, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), senderID); err != nil {
		return nil, errors.Wrap(err, "querying sent messages")
	}
	return res, nil
}

func (repo messagingRepository) QueryThread(ctx context.Context, rootID string, exec ...core.DBExecutor) ([]messaging.Message, error) {
	exe := repo.getExec(exec)

	q := `SELECT ` + messageColumns + ` FROM message WHERE id = ? OR parent_id = ? ORDER BY created_at ASC`

	res := make([]messaging.Message, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), rootID, rootID); err != nil {
		return nil, errors.Wrap(err, "querying thread")
	}
	return res, nil
}

func (repo messagingRepository) CountUnreadMessages(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	var cnt int
	q := `SELECT COUNT(*) FROM message WHERE recipient_id = ? AND NOT is_read`
	if err := sqlx.GetContext(ctx, exe, &cnt, exe.Rebind(q), userID); err != nil {
		return 0, errors.Wrap(err, "counting unread messages")
	}
	return cnt, nil
}

func (repo messagingRepository) UpdateMessage(ctx context.Context, m messaging.Message, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `UPDATE message SET subject = :subject, content = :content, is_read = :is_read, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, m)
	if err != nil {
		return errors.Wrap(err, "updating message")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

func (repo messagingRepository) CreateNotification(ctx context.Context, n messaging.Notification, exec ...core.DBExecutor) error {
	q := `
INSERT INTO notification (` + notificationColumns + `)
VALUES (:id, :user_id, :title, :message, :type, :is_read, :related_url, :created_at, :expires_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, n); err != nil {
		return errors.Wrap(err, "inserting notification")
	}
	return nil
}

func (repo messagingRepository) GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (messaging.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return messaging.Notification{}, messaging.ErrNotificationNotFound
	}

	exe := repo.getExec(exec)
	var n messaging.Notification
	q := `SELECT ` + notificationColumns + ` FROM notification WHERE id = ?`
	if err := sqlx.GetContext(ctx, exe, &n, exe.Rebind(q), id); err != nil {
		if err == sql.ErrNoRows {
			return messaging.Notification{}, messaging.ErrNotificationNotFound
		}
		return messaging.Notification{}, errors.Wrap(err, "finding notification")
	}
	return n, nil
}

func (repo messagingRepository) QueryNotifications(ctx context.Context, userID string, unreadOnly bool, exec ...core.DBExecutor) ([]messaging.Notification, error) {
	exe := repo.getExec(exec)

	q := `SELECT ` + notificationColumns + ` FROM notification
WHERE user_id = ? AND (expires_at IS NULL OR expires_at > NOW())`
	if unreadOnly {
		q += " AND NOT is_read"
	}
	q += " ORDER BY created_at DESC"

	res := make([]messaging.Notification, 0)
	if err := sqlx.SelectContext(ctx, exe, &res, exe.Rebind(q), userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return res, nil
}

func (repo messagingRepository) CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)

	var cnt int
	q := `SELECT COUNT(*) FROM notification
WHERE user_id = ? AND NOT is_read AND (expires_at IS NULL OR expires_at > NOW())`
	if err := sqlx.GetContext(ctx, exe, &cnt, exe.Rebind(q), userID); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return cnt, nil
}

func (repo messagingRepository) UpdateNotification(ctx context.Context, n messaging.Notification, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `UPDATE notification SET is_read = :is_read WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exe, q, n)
	if err != nil {
		return errors.Wrap(err, "updating notification")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return messaging.ErrNotificationNotFound
	}
	return nil
}

func (repo messagingRepository) MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `UPDATE notification SET is_read = true WHERE user_id = ? AND NOT is_read`
	if _, err := exe.ExecContext(ctx, exe.Rebind(q), userID); err != nil {
		return errors.Wrap(err, "marking all notifications read")
	}
	return nil
}

func (repo messagingRepository) DeleteExpiredNotifications(ctx context.Context, before time.Time, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := `DELETE FROM notification WHERE expires_at IS NOT NULL AND expires_at <= ?`
	if _, err := exe.ExecContext(ctx, exe.Rebind(q), before); err != nil {
		return errors.Wrap(err, "deleting expired notifications")
	}
	return nil
}
