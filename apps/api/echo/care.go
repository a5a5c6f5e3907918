package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/authz"
	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

type careApi struct {
	svc      *care.Service
	childSvc *child.Service
	userSvc  user.Service
}

func registerCareAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *care.Service, childSvc *child.Service, userSvc user.Service) {
	api := careApi{svc: svc, childSvc: childSvc, userSvc: userSvc}

	ag := g.Group("/assessments", jwt)
	ag.POST("", api.createAssessment)
	ag.GET("", api.queryAssessments)
	ag.GET("/:id", api.retrieveAssessment)
	ag.PUT("/:id", api.updateAssessment)
	ag.DELETE("/:id", api.destroyAssessment, adminMiddleware())

	pg := g.Group("/support-plans", jwt)
	pg.POST("", api.createPlan)
	pg.GET("", api.queryPlans)
	pg.GET("/:id", api.retrievePlan)
	pg.PUT("/:id", api.updatePlan)
	pg.DELETE("/:id", api.destroyPlan, adminMiddleware())

	rg := g.Group("/progress-reports", jwt)
	rg.POST("", api.createReport)
	rg.GET("", api.queryReports)
	rg.GET("/:id", api.retrieveReport)
	rg.PUT("/:id", api.updateReport)
	rg.DELETE("/:id", api.destroyReport, adminMiddleware())
}

// getTargetChild loads the child a new record is being attached to. A child
// the actor cannot see reads as absent.
func (api *careApi) getTargetChild(ctx echo.Context, actor authz.Actor, childID string) (child.Child, error) {
	c, err := api.childSvc.GetByID(ctx.Request().Context(), childID)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			return child.Child{}, core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
		}
		return child.Child{}, errors.Wrap(err, "finding child by ID")
	}
	if !authz.CanViewChild(actor, c) {
		return child.Child{}, core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: child.ErrNotFound.Error()})
	}
	return c, nil
}

// Assessments

func (api *careApi) createAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data care.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}

	c, err := api.getTargetChild(ctx, actor, data.ChildID)
	if err != nil {
		return err
	}
	if !authz.CanCreateAssessment(actor, c) {
		return errHttpForbidden
	}

	asmt, err := api.svc.CreateAssessment(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, asmt)
}

func (api *careApi) queryAssessments(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter care.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []care.Assessment{})
	}
	filter.Access = authz.AccessibleChildren(actor)

	ordering := new(Ordering)
	ordering.Bind(ctx)

	asmts, err := api.svc.QueryAssessments(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if asmts == nil {
		asmts = []care.Assessment{}
	}
	return ctx.JSON(http.StatusOK, asmts)
}

// getAssessment loads the assessment and its owning child, checking view
// access; denial reads as absence.
func (api *careApi) getAssessment(ctx echo.Context, actor authz.Actor) (care.Assessment, child.Child, error) {
	asmt, err := api.svc.GetAssessment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == care.ErrAssessmentNotFound {
			return care.Assessment{}, child.Child{}, errHttpNotFound
		}
		return care.Assessment{}, child.Child{}, errors.Wrap(err, "finding assessment by ID")
	}
	c, err := api.childSvc.GetByID(ctx.Request().Context(), asmt.ChildID)
	if err != nil {
		return care.Assessment{}, child.Child{}, errors.Wrap(err, "finding owning child")
	}
	// the author keeps access through the edit override even after losing
	// the child assignment
	if !authz.CanViewAssessment(actor, c) && !authz.CanEditAssessment(actor, asmt) {
		return care.Assessment{}, child.Child{}, errHttpNotFound
	}
	return asmt, c, nil
}

func (api *careApi) retrieveAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asmt, _, err := api.getAssessment(ctx, actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *careApi) updateAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asmt, _, err := api.getAssessment(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanEditAssessment(actor, asmt) {
		return errHttpForbidden
	}

	var data care.UpdateAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssessment")
	}

	asmt, err = api.svc.UpdateAssessment(ctx.Request().Context(), asmt, data)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *careApi) destroyAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	asmt, _, err := api.getAssessment(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanDeleteAssessment(actor) {
		return errHttpForbidden
	}
	if err := api.svc.DeleteAssessment(ctx.Request().Context(), asmt.ID); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Support plans

func (api *careApi) createPlan(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data care.NewSupportPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupportPlan")
	}

	c, err := api.getTargetChild(ctx, actor, data.ChildID)
	if err != nil {
		return err
	}
	if !authz.CanCreateSupportPlan(actor, c) {
		return errHttpForbidden
	}

	plan, err := api.svc.CreateSupportPlan(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating support plan")
	}
	return ctx.JSON(http.StatusCreated, plan)
}

func (api *careApi) queryPlans(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter care.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []care.SupportPlan{})
	}
	filter.Access = authz.AccessibleChildren(actor)

	ordering := new(Ordering)
	ordering.Bind(ctx)

	plans, err := api.svc.QuerySupportPlans(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying support plans")
	}
	if plans == nil {
		plans = []care.SupportPlan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *careApi) getPlan(ctx echo.Context, actor authz.Actor) (care.SupportPlan, child.Child, error) {
	plan, err := api.svc.GetSupportPlan(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == care.ErrPlanNotFound {
			return care.SupportPlan{}, child.Child{}, errHttpNotFound
		}
		return care.SupportPlan{}, child.Child{}, errors.Wrap(err, "finding support plan by ID")
	}
	c, err := api.childSvc.GetByID(ctx.Request().Context(), plan.ChildID)
	if err != nil {
		return care.SupportPlan{}, child.Child{}, errors.Wrap(err, "finding owning child")
	}
	if !authz.CanViewSupportPlan(actor, c) {
		return care.SupportPlan{}, child.Child{}, errHttpNotFound
	}
	return plan, c, nil
}

func (api *careApi) retrievePlan(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	plan, _, err := api.getPlan(ctx, actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *careApi) updatePlan(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	plan, c, err := api.getPlan(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanEditSupportPlan(actor, plan, c) {
		return errHttpForbidden
	}

	var data care.UpdateSupportPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSupportPlan")
	}

	plan, err = api.svc.UpdateSupportPlan(ctx.Request().Context(), plan, data)
	if err != nil {
		return errors.Wrap(err, "updating support plan")
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *careApi) destroyPlan(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	plan, _, err := api.getPlan(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanDeleteSupportPlan(actor) {
		return errHttpForbidden
	}
	if err := api.svc.DeleteSupportPlan(ctx.Request().Context(), plan.ID); err != nil {
		return errors.Wrap(err, "deleting support plan")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Progress reports

func (api *careApi) createReport(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data care.NewProgressReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgressReport")
	}

	c, err := api.getTargetChild(ctx, actor, data.ChildID)
	if err != nil {
		return err
	}
	if !authz.CanCreateProgressReport(actor, c) {
		return errHttpForbidden
	}

	report, err := api.svc.CreateProgressReport(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating progress report")
	}
	return ctx.JSON(http.StatusCreated, report)
}

func (api *careApi) queryReports(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter care.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []care.ProgressReport{})
	}
	filter.Access = authz.AccessibleChildren(actor)

	ordering := new(Ordering)
	ordering.Bind(ctx)

	reports, err := api.svc.QueryProgressReports(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying progress reports")
	}
	if reports == nil {
		reports = []care.ProgressReport{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *careApi) getReport(ctx echo.Context, actor authz.Actor) (care.ProgressReport, child.Child, error) {
	report, err := api.svc.GetProgressReport(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == care.ErrReportNotFound {
			return care.ProgressReport{}, child.Child{}, errHttpNotFound
		}
		return care.ProgressReport{}, child.Child{}, errors.Wrap(err, "finding progress report by ID")
	}
	c, err := api.childSvc.GetByID(ctx.Request().Context(), report.ChildID)
	if err != nil {
		return care.ProgressReport{}, child.Child{}, errors.Wrap(err, "finding owning child")
	}
	if !authz.CanViewProgressReport(actor, report, c) {
		return care.ProgressReport{}, child.Child{}, errHttpNotFound
	}
	return report, c, nil
}

func (api *careApi) retrieveReport(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	report, _, err := api.getReport(ctx, actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *careApi) updateReport(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	report, _, err := api.getReport(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanEditProgressReport(actor, report) {
		return errHttpForbidden
	}

	var data care.UpdateProgressReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgressReport")
	}

	report, err = api.svc.UpdateProgressReport(ctx.Request().Context(), report, data)
	if err != nil {
		return errors.Wrap(err, "updating progress report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *careApi) destroyReport(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	report, _, err := api.getReport(ctx, actor)
	if err != nil {
		return err
	}
	if !authz.CanDeleteProgressReport(actor) {
		return errHttpForbidden
	}
	if err := api.svc.DeleteProgressReport(ctx.Request().Context(), report.ID); err != nil {
		return errors.Wrap(err, "deleting progress report")
	}
	return ctx.NoContent(http.StatusNoContent)
}
