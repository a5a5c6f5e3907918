package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/messaging"
	"github.com/trezcool/malezi/core/user"
)

type messagingApi struct {
	svc     *messaging.Service
	userSvc user.Service
}

func registerMessagingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *messaging.Service, userSvc user.Service) {
	api := messagingApi{svc: svc, userSvc: userSvc}

	mg := g.Group("/messages", jwt)
	mg.POST("", api.send)
	mg.GET("", api.inbox)
	mg.GET("/sent", api.sent)
	mg.GET("/unread-count", api.unreadCount)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.GET("/:id/thread", api.thread)
	mg.POST("/:id/read", api.markRead)

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.notify, adminMiddleware())
	ng.GET("", api.notifications)
	ng.GET("/unread-count", api.unreadNotificationCount)
	ng.POST("/:id/read", api.markNotificationRead)
	ng.POST("/read-all", api.markAllNotificationsRead)
}

// Messages

func (api *messagingApi) send(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if data.RecipientID == usr.ID {
		return core.NewValidationError(nil, core.FieldError{Field: "recipient_id", Error: "cannot message yourself"})
	}
	if _, err := api.userSvc.GetByID(ctx.Request().Context(), data.RecipientID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "recipient_id", Error: user.ErrNotFound.Error()})
		}
		return errors.Wrap(err, "finding recipient by ID")
	}

	m, err := api.svc.Send(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messagingApi) inbox(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var filter messaging.InboxFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []messaging.Message{})
	}
	filter.UserID = usr.ID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	msgs, err := api.svc.Inbox(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying inbox")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) sent(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	msgs, err := api.svc.Sent(ctx.Request().Context(), usr.ID, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying sent messages")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) unreadCount(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	count, err := api.svc.UnreadMessageCount(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting unread messages")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": count})
}

// getMessage loads the message and checks the actor is a participant;
// denial reads as absence.
func (api *messagingApi) getMessage(ctx echo.Context, usr user.User) (messaging.Message, error) {
	m, err := api.svc.GetMessage(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == messaging.ErrMessageNotFound {
			return messaging.Message{}, errHttpNotFound
		}
		return messaging.Message{}, errors.Wrap(err, "finding message by ID")
	}
	if m.SenderID != usr.ID && m.RecipientID != usr.ID && !usr.IsStaff() {
		return messaging.Message{}, errHttpNotFound
	}
	return m, nil
}

func (api *messagingApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	m, err := api.getMessage(ctx, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *messagingApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	m, err := api.getMessage(ctx, usr)
	if err != nil {
		return err
	}

	// only the sender edits
	if m.SenderID != usr.ID {
		return errHttpForbidden
	}

	var data messaging.UpdateMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMessage")
	}

	m, err = api.svc.EditMessage(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "editing message")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *messagingApi) thread(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	m, err := api.getMessage(ctx, usr)
	if err != nil {
		return err
	}

	// replies point at the thread root
	rootID := m.ID
	if m.ParentID.Valid {
		rootID = m.ParentID.String
	}

	msgs, err := api.svc.Thread(ctx.Request().Context(), rootID)
	if err != nil {
		return errors.Wrap(err, "querying thread")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	m, err := api.getMessage(ctx, usr)
	if err != nil {
		return err
	}

	// only the recipient's read state exists
	if m.RecipientID != usr.ID {
		return errHttpForbidden
	}

	m, err = api.svc.MarkMessageRead(ctx.Request().Context(), m)
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, m)
}

// Notifications

func (api *messagingApi) notify(ctx echo.Context) error {
	var data messaging.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}

	n, err := api.svc.Notify(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *messagingApi) notifications(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	unreadOnly := ctx.QueryParam("unread") == "true"

	notifs, err := api.svc.Notifications(ctx.Request().Context(), usr.ID, unreadOnly)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []messaging.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *messagingApi) unreadNotificationCount(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	count, err := api.svc.UnreadNotificationCount(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": count})
}

func (api *messagingApi) markAllNotificationsRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.MarkAllNotificationsRead(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "marking all notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *messagingApi) markNotificationRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.GetNotification(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == messaging.ErrNotificationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding notification by ID")
	}
	if n.UserID != usr.ID && !usr.IsStaff() {
		return errHttpNotFound
	}

	n, err = api.svc.MarkNotificationRead(ctx.Request().Context(), n)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, n)
}
