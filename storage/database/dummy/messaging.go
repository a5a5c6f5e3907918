package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/messaging"
)

type messagingRepository struct {
	message *table[messaging.Message]
	notif   *table[messaging.Notification]
}

var _ messaging.Repository = (*messagingRepository)(nil) // interface compliance check

func NewMessagingRepository(db *DB) *messagingRepository {
	return &messagingRepository{message: db.message, notif: db.notif}
}

func (repo *messagingRepository) CreateMessage(_ context.Context, m messaging.Message, _ ...core.DBExecutor) error {
	repo.message.Lock()
	defer repo.message.Unlock()
	repo.message.rows[m.ID] = &m
	return nil
}

func (repo *messagingRepository) GetMessageByID(_ context.Context, id string, _ ...core.DBExecutor) (messaging.Message, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	if m, ok := repo.message.rows[id]; ok {
		return *m, nil
	}
	return messaging.Message{}, messaging.ErrMessageNotFound
}

func (repo *messagingRepository) QueryInbox(_ context.Context, filter messaging.InboxFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]messaging.Message, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	res := make([]messaging.Message, 0)
	search := strings.ToLower(filter.Search)
	for _, m := range repo.message.all() {
		if m.RecipientID != filter.UserID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Subject), search) &&
			!strings.Contains(strings.ToLower(m.Content), search) {
			continue
		}
		if filter.Unread != nil && m.IsRead == *filter.Unread {
			continue
		}
		res = append(res, m)
	}
	sortMessages(res)
	return res, nil
}

func (repo *messagingRepository) QuerySent(_ context.Context, senderID string, _ []core.DBOrdering, _ ...core.DBExecutor) ([]messaging.Message, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	res := make([]messaging.Message, 0)
	for _, m := range repo.message.all() {
		if m.SenderID == senderID {
			res = append(res, m)
		}
	}
	sortMessages(res)
	return res, nil
}

func (repo *messagingRepository) QueryThread(_ context.Context, rootID string, _ ...core.DBExecutor) ([]messaging.Message, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	res := make([]messaging.Message, 0)
	for _, m := range repo.message.all() {
		if m.ID == rootID || (m.ParentID.Valid && m.ParentID.String == rootID) {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (repo *messagingRepository) CountUnreadMessages(_ context.Context, userID string, _ ...core.DBExecutor) (int, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	var cnt int
	for _, m := range repo.message.all() {
		if m.RecipientID == userID && !m.IsRead {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *messagingRepository) UpdateMessage(_ context.Context, m messaging.Message, _ ...core.DBExecutor) error {
	repo.message.Lock()
	defer repo.message.Unlock()

	if _, ok := repo.message.rows[m.ID]; !ok {
		return messaging.ErrMessageNotFound
	}
	repo.message.rows[m.ID] = &m
	return nil
}

func (repo *messagingRepository) CreateNotification(_ context.Context, n messaging.Notification, _ ...core.DBExecutor) error {
	repo.notif.Lock()
	defer repo.notif.Unlock()
	repo.notif.rows[n.ID] = &n
	return nil
}

func (repo *messagingRepository) GetNotificationByID(_ context.Context, id string, _ ...core.DBExecutor) (messaging.Notification, error) {
	repo.notif.RLock()
	defer repo.notif.RUnlock()

	if n, ok := repo.notif.rows[id]; ok {
		return *n, nil
	}
	return messaging.Notification{}, messaging.ErrNotificationNotFound
}

func (repo *messagingRepository) QueryNotifications(_ context.Context, userID string, unreadOnly bool, _ ...core.DBExecutor) ([]messaging.Notification, error) {
	repo.notif.RLock()
	defer repo.notif.RUnlock()

	now := time.Now().UTC()
	res := make([]messaging.Notification, 0)
	for _, n := range repo.notif.all() {
		if n.UserID != userID || n.IsExpired(now) {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (repo *messagingRepository) CountUnreadNotifications(_ context.Context, userID string, _ ...core.DBExecutor) (int, error) {
	repo.notif.RLock()
	defer repo.notif.RUnlock()

	now := time.Now().UTC()
	var cnt int
	for _, n := range repo.notif.all() {
		if n.UserID == userID && !n.IsRead && !n.IsExpired(now) {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *messagingRepository) UpdateNotification(_ context.Context, n messaging.Notification, _ ...core.DBExecutor) error {
	repo.notif.Lock()
	defer repo.notif.Unlock()

	if _, ok := repo.notif.rows[n.ID]; !ok {
		return messaging.ErrNotificationNotFound
	}
	repo.notif.rows[n.ID] = &n
	return nil
}

func (repo *messagingRepository) MarkAllNotificationsRead(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.notif.Lock()
	defer repo.notif.Unlock()

	for _, n := range repo.notif.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (repo *messagingRepository) DeleteExpiredNotifications(_ context.Context, before time.Time, _ ...core.DBExecutor) error {
	repo.notif.Lock()
	defer repo.notif.Unlock()

	for id, n := range repo.notif.rows {
		if n.ExpiresAt.Valid && !n.ExpiresAt.Time.After(before) {
			delete(repo.notif.rows, id)
		}
	}
	return nil
}

func sortMessages(msgs []messaging.Message) {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
}
