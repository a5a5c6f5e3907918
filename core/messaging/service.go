package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

type Repository interface {
	CreateMessage(ctx context.Context, m Message, exec ...core.DBExecutor) error
	GetMessageByID(ctx context.Context, id string, exec ...core.DBExecutor) (Message, error)
	QueryInbox(ctx context.Context, filter InboxFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Message, error)
	QuerySent(ctx context.Context, senderID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Message, error)
	QueryThread(ctx context.Context, rootID string, exec ...core.DBExecutor) ([]Message, error)
	CountUnreadMessages(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error)
	UpdateMessage(ctx context.Context, m Message, exec ...core.DBExecutor) error

	CreateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) error
	GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Notification, error)
	QueryNotifications(ctx context.Context, userID string, unreadOnly bool, exec ...core.DBExecutor) ([]Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error)
	UpdateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) error
	MarkAllNotificationsRead(ctx context.Context, userID string, exec ...core.DBExecutor) error
	DeleteExpiredNotifications(ctx context.Context, before time.Time, exec ...core.DBExecutor) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Send delivers a message and raises a "new message" notification for the
// recipient. Replies collapse onto the thread root so threading stays single
// level.
func (svc *Service) Send(ctx context.Context, nm NewMessage, senderID string) (Message, error) {
	if err := nm.Validate(); err != nil {
		return Message{}, err
	}

	parentID := null.String{}
	if nm.ParentID != "" {
		parent, err := svc.repo.GetMessageByID(ctx, nm.ParentID)
		if err != nil {
			return Message{}, err
		}
		rootID := parent.ID
		if parent.ParentID.Valid {
			rootID = parent.ParentID.String
		}
		parentID = null.StringFrom(rootID)
	}

	now := time.Now().UTC()
	m := Message{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: nm.RecipientID,
		Subject:     nm.Subject,
		Content:     nm.Content,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.repo.CreateMessage(ctx, m); err != nil {
		return Message{}, err
	}

	n := Notification{
		ID:        uuid.New().String(),
		UserID:    nm.RecipientID,
		Title:     "New message",
		Message:   nm.Subject,
		Type:      NotifMessage,
		CreatedAt: now,
	}
	if err := svc.repo.CreateNotification(ctx, n); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (svc *Service) GetMessage(ctx context.Context, id string) (Message, error) {
	return svc.repo.GetMessageByID(ctx, id)
}

func (svc *Service) Inbox(ctx context.Context, filter InboxFilter, ordering ...core.DBOrdering) ([]Message, error) {
	filter.Clean()
	return svc.repo.QueryInbox(ctx, filter, ordering)
}

func (svc *Service) Sent(ctx context.Context, senderID string, ordering ...core.DBOrdering) ([]Message, error) {
	return svc.repo.QuerySent(ctx, senderID, ordering)
}

func (svc *Service) Thread(ctx context.Context, rootID string) ([]Message, error) {
	return svc.repo.QueryThread(ctx, rootID)
}

// MarkMessageRead flips the read flag. Only the recipient's read state
// exists; the caller checks the actor is the recipient.
func (svc *Service) MarkMessageRead(ctx context.Context, m Message) (Message, error) {
	if m.IsRead {
		return m, nil
	}
	m.IsRead = true
	m.UpdatedAt = time.Now().UTC()
	if err := svc.repo.UpdateMessage(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// EditMessage applies a sender's corrections. Blank fields are left as is.
func (svc *Service) EditMessage(ctx context.Context, m Message, um UpdateMessage) (Message, error) {
	if err := um.Validate(); err != nil {
		return Message{}, err
	}

	if um.Subject != "" {
		m.Subject = um.Subject
	}
	if um.Content != "" {
		m.Content = um.Content
	}
	m.UpdatedAt = time.Now().UTC()
	if err := svc.repo.UpdateMessage(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (svc *Service) UnreadMessageCount(ctx context.Context, userID string) (int, error) {
	return svc.repo.CountUnreadMessages(ctx, userID)
}

func (svc *Service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	if err := nn.Validate(); err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:         uuid.New().String(),
		UserID:     nn.UserID,
		Title:      nn.Title,
		Message:    nn.Message,
		Type:       nn.Type,
		RelatedURL: nn.RelatedURL,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  null.TimeFromPtr(nn.ExpiresAt),
	}
	if n.Type == "" {
		n.Type = NotifInfo
	}
	if err := svc.repo.CreateNotification(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (svc *Service) GetNotification(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, userID, unreadOnly)
}

func (svc *Service) MarkNotificationRead(ctx context.Context, n Notification) (Notification, error) {
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	if err := svc.repo.UpdateNotification(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (svc *Service) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return svc.repo.MarkAllNotificationsRead(ctx, userID)
}

func (svc *Service) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	return svc.repo.CountUnreadNotifications(ctx, userID)
}

// PurgeExpiredNotifications removes notifications whose expiry has lapsed.
func (svc *Service) PurgeExpiredNotifications(ctx context.Context) error {
	return svc.repo.DeleteExpiredNotifications(ctx, time.Now().UTC())
}
