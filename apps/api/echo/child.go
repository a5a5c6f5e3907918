package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/authz"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

var errChildNotFoundInCtx = errors.New("child object not found in echo.Context")

const contextChildKey = "child"

type childApi struct {
	svc     *child.Service
	userSvc user.Service
}

func registerChildAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *child.Service, userSvc user.Service) {
	api := childApi{svc: svc, userSvc: userSvc}

	cg := g.Group("/children", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)

	// detail endpoints; denied access reads as absence
	dg := cg.Group("/:id", childObjectMiddleware(svc, userSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// childObjectMiddleware loads the target child and checks view access.
// An existing record the actor may not see is indistinguishable from a
// missing one.
func childObjectMiddleware(svc *child.Service, userSvc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx, userSvc)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}

			c, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == child.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding child by ID")
			}
			if !authz.CanViewChild(actor, c) {
				return errHttpNotFound
			}
			ctx.Set(contextChildKey, c)
			return next(ctx)
		}
	}
}

func contextChild(ctx echo.Context) (child.Child, error) {
	c, ok := ctx.Get(contextChildKey).(child.Child)
	if !ok {
		return child.Child{}, errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}
	return c, nil
}

// Handlers

func (api *childApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if !authz.CanCreateChild(actor) {
		return errHttpForbidden
	}

	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}

	// a parent always creates their own children; only staff picks the parent
	if !actor.IsStaff() {
		data.ParentID = actor.ID
	} else if data.ParentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "parent_id", Error: "this field is required"})
	}

	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *childApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := new(child.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []child.Child{})
	}
	filter.Clean()
	filter.Access = authz.AccessibleChildren(actor)

	ordering := new(Ordering)
	ordering.Bind(ctx)

	children, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	c, err := contextChild(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *childApi) update(ctx echo.Context) error {
	c, err := contextChild(ctx)
	if err != nil {
		return err
	}

	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if !authz.CanEditChild(actor, c) {
		return errHttpForbidden
	}

	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}

	// teacher reassignment is an admin operation
	if data.TeacherID != nil && !actor.IsStaff() {
		return errHttpForbidden
	}
	if data.IsActive != nil && !actor.IsStaff() {
		return errHttpForbidden
	}

	if err := data.Validate(); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *childApi) destroy(ctx echo.Context) error {
	c, err := contextChild(ctx)
	if err != nil {
		return err
	}

	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if !authz.CanDeleteChild(actor, c) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting child")
	}
	return ctx.NoContent(http.StatusNoContent)
}
