package messaging

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
)

// Message is a directed in-app message between two users. ParentID supports
// single-level threading: replies reference the thread root, never another
// reply.
type Message struct {
	ID          string      `json:"id"`
	SenderID    string      `json:"sender_id"`
	RecipientID string      `json:"recipient_id"`
	Subject     string      `json:"subject"`
	Content     string      `json:"content"`
	IsRead      bool        `json:"is_read"`
	ParentID    null.String `json:"parent_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

type NewMessage struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid4"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	ParentID    string `json:"parent_id" validate:"omitempty,uuid4"`
}

func (nm *NewMessage) Validate() error {
	nm.Subject = core.CleanString(nm.Subject)
	return core.Validate.Struct(nm)
}

type UpdateMessage struct {
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Content string `json:"content"`
}

func (um *UpdateMessage) Validate() error {
	um.Subject = core.CleanString(um.Subject)
	return core.Validate.Struct(um)
}

// Notification types
const (
	NotifInfo       = "info"
	NotifWarning    = "warning"
	NotifSuccess    = "success"
	NotifError      = "error"
	NotifAssessment = "assessment"
	NotifProgress   = "progress"
	NotifMessage    = "message"
)

var AllNotificationTypes = []string{
	NotifInfo, NotifWarning, NotifSuccess, NotifError, NotifAssessment, NotifProgress, NotifMessage,
}

// Notification is a system-to-user alert, optionally expiring.
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	IsRead     bool      `json:"is_read"`
	RelatedURL string    `json:"related_url"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	ExpiresAt  null.Time `json:"expires_at"`
}

// IsExpired reports whether the notification has lapsed at time t. A
// notification without an expiry never expires.
func (n *Notification) IsExpired(t time.Time) bool {
	return n.ExpiresAt.Valid && t.After(n.ExpiresAt.Time)
}

type NewNotification struct {
	UserID     string     `json:"user_id" validate:"required,uuid4"`
	Title      string     `json:"title" validate:"required,max=200"`
	Message    string     `json:"message" validate:"required"`
	Type       string     `json:"type" validate:"omitempty,notification_type"`
	RelatedURL string     `json:"related_url" validate:"omitempty,url"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func (nn *NewNotification) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	return core.Validate.Struct(nn)
}

// InboxFilter narrows a user's message list.
type InboxFilter struct {
	Search string `query:"search"` // matches subject and content
	Unread *bool  `query:"unread"`

	// UserID is set by handlers from the authenticated actor.
	UserID string `query:"-"`
}

func (f *InboxFilter) Clean() {
	f.Search = core.CleanString(f.Search)
}
