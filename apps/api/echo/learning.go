package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/authz"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/learning"
	"github.com/trezcool/malezi/core/user"
)

type learningApi struct {
	svc      *learning.Service
	childSvc *child.Service
	userSvc  user.Service
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *learning.Service, childSvc *child.Service, userSvc user.Service) {
	api := learningApi{svc: svc, childSvc: childSvc, userSvc: userSvc}

	ag := g.Group("/activities", jwt)
	ag.POST("", api.createActivity, roleMiddleware(user.RoleTeacher))
	ag.GET("", api.queryActivities)
	ag.GET("/:id", api.retrieveActivity)
	ag.PUT("/:id", api.updateActivity, roleMiddleware(user.RoleTeacher))
	ag.DELETE("/:id", api.destroyActivity, adminMiddleware())

	sg := g.Group("/assignments", jwt)
	sg.POST("", api.assign, roleMiddleware(user.RoleTeacher))
	sg.GET("", api.queryAssignments)
	sg.GET("/:id", api.retrieveAssignment)
	sg.POST("/:id/start", api.startAssignment)
	sg.POST("/:id/continue", api.continueAssignment)
	sg.POST("/:id/cancel", api.cancelAssignment, roleMiddleware(user.RoleTeacher))

	bg := g.Group("/badges", jwt)
	bg.POST("", api.createBadge, adminMiddleware())
	bg.GET("", api.queryBadges)
	bg.POST("/award", api.awardBadge, roleMiddleware(user.RoleTeacher))
	bg.GET("/earned", api.queryChildBadges)

	g.GET("/dashboard", api.dashboard, jwt)
}

// Activities

func (api *learningApi) createActivity(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data learning.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}

	act, err := api.svc.CreateActivity(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *learningApi) queryActivities(ctx echo.Context) error {
	var filter learning.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Activity{})
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	acts, err := api.svc.QueryActivities(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if acts == nil {
		acts = []learning.Activity{}
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *learningApi) retrieveActivity(ctx echo.Context) error {
	act, err := api.svc.GetActivity(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == learning.ErrActivityNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity by ID")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *learningApi) updateActivity(ctx echo.Context) error {
	act, err := api.svc.GetActivity(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == learning.ErrActivityNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity by ID")
	}

	var data learning.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}

	act, err = api.svc.UpdateActivity(ctx.Request().Context(), act, data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *learningApi) destroyActivity(ctx echo.Context) error {
	act, err := api.svc.GetActivity(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == learning.ErrActivityNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity by ID")
	}
	if err := api.svc.DeleteActivity(ctx.Request().Context(), act.ID); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *learningApi) assign(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data learning.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	// the assigner needs access to the child
	c, err := api.childSvc.GetByID(ctx.Request().Context(), data.ChildID)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
		}
		return errors.Wrap(err, "finding child by ID")
	}
	if !authz.CanViewChild(actor, c) {
		return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
	}

	asg, err := api.svc.Assign(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "assigning activity")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *learningApi) queryAssignments(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter learning.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Assignment{})
	}
	filter.Access = authz.AccessibleChildren(actor)

	ordering := new(Ordering)
	ordering.Bind(ctx)

	asgs, err := api.svc.QueryAssignments(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []learning.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

// getAssignment loads the assignment and checks access through the owning
// child; denial reads as absence.
func (api *learningApi) getAssignment(ctx echo.Context, actor authz.Actor) (learning.Assignment, error) {
	asg, err := api.svc.GetAssignment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == learning.ErrAssignmentNotFound {
			return learning.Assignment{}, errHttpNotFound
		}
		return learning.Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}
	c, err := api.childSvc.GetByID(ctx.Request().Context(), asg.ChildID)
	if err != nil {
		return learning.Assignment{}, errors.Wrap(err, "finding owning child")
	}
	if !authz.CanViewChild(actor, c) && !api.isOwnAssignment(ctx, actor, c) {
		return learning.Assignment{}, errHttpNotFound
	}
	return asg, nil
}

// isOwnAssignment lets a child-portal account at its own assignments.
func (api *learningApi) isOwnAssignment(_ echo.Context, actor authz.Actor, c child.Child) bool {
	return actor.IsChild() && c.UserID.Valid && c.UserID.String == actor.ID
}

func (api *learningApi) retrieveAssignment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asg, err := api.getAssignment(ctx, actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *learningApi) startAssignment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asg, err := api.getAssignment(ctx, actor)
	if err != nil {
		return err
	}

	asg, err = api.svc.StartAssignment(ctx.Request().Context(), asg)
	if err != nil {
		return errors.Wrap(err, "starting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *learningApi) continueAssignment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asg, err := api.getAssignment(ctx, actor)
	if err != nil {
		return err
	}

	if err := api.svc.ContinueAssignment(ctx.Request().Context(), asg); err != nil {
		return errors.Wrap(err, "continuing assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *learningApi) cancelAssignment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asg, err := api.getAssignment(ctx, actor)
	if err != nil {
		return err
	}

	asg, err = api.svc.CancelAssignment(ctx.Request().Context(), asg)
	if err != nil {
		return errors.Wrap(err, "cancelling assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

// Badges

func (api *learningApi) createBadge(ctx echo.Context) error {
	var data learning.NewBadge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBadge")
	}

	badge, err := api.svc.CreateBadge(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating badge")
	}
	return ctx.JSON(http.StatusCreated, badge)
}

func (api *learningApi) queryBadges(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	badges, err := api.svc.QueryBadges(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying badges")
	}
	if badges == nil {
		badges = []learning.Badge{}
	}
	return ctx.JSON(http.StatusOK, badges)
}

func (api *learningApi) awardBadge(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data AwardBadgeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AwardBadgeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.childSvc.GetByID(ctx.Request().Context(), data.ChildID)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
		}
		return errors.Wrap(err, "finding child by ID")
	}
	if !authz.CanViewChild(actor, c) {
		return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
	}

	var asgID *string
	if data.AssignmentID != "" {
		asgID = &data.AssignmentID
	}

	earned, err := api.svc.AwardBadge(ctx.Request().Context(), data.ChildID, data.BadgeID, asgID)
	if err != nil {
		return errors.Wrap(err, "awarding badge")
	}
	return ctx.JSON(http.StatusCreated, earned)
}

func (api *learningApi) queryChildBadges(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	earned, err := api.svc.QueryChildBadges(ctx.Request().Context(), authz.AccessibleChildren(actor))
	if err != nil {
		return errors.Wrap(err, "querying child badges")
	}
	if earned == nil {
		earned = []learning.ChildBadge{}
	}
	return ctx.JSON(http.StatusOK, earned)
}

// Dashboard

func (api *learningApi) dashboard(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	stats, err := api.svc.DashboardStats(ctx.Request().Context(), authz.AccessibleChildren(actor))
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

type AwardBadgeRequest struct {
	ChildID      string `json:"child_id" validate:"required,uuid4"`
	BadgeID      string `json:"badge_id" validate:"required,uuid4"`
	AssignmentID string `json:"assignment_id" validate:"omitempty,uuid4"`
}

func (ab *AwardBadgeRequest) Validate() error { return core.Validate.Struct(ab) }
