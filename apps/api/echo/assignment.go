package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assignment.Service, validate *validator.Validate) {
	api := assignmentApi{svc: svc, validate: validate}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/complete", api.complete)
	dg.POST("/correct", api.correct)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	asgs, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := bindUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	id, err := bindUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a.ClassID = data.ClassID
	a.Subject = data.Subject
	a.Type = data.Type
	a.Description = data.Description
	a.DueDate = data.DueDate
	a, err = api.svc.Update(ctx.Request().Context(), a)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	id, err := bindUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) complete(ctx echo.Context) error {
	return api.mark(ctx, api.svc.MarkCompleted)
}

func (api *assignmentApi) correct(ctx echo.Context) error {
	return api.mark(ctx, api.svc.MarkCorrected)
}

// bindFilter reads the query params by hand; the date bounds come in as
// "2006-01-02" strings.
func (api *assignmentApi) bindFilter(ctx echo.Context) (assignment.QueryFilter, error) {
	filter := assignment.QueryFilter{
		ClassID: ctx.QueryParam("class_id"),
		Type:    assignment.Type(ctx.QueryParam("type")),
	}
	var err error
	if raw := ctx.QueryParam("from"); raw != "" {
		if filter.From, err = time.ParseInLocation(dateLayout, raw, time.UTC); err != nil {
			return assignment.QueryFilter{}, invalidParam("from", "expected YYYY-MM-DD")
		}
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		if filter.To, err = time.ParseInLocation(dateLayout, raw, time.UTC); err != nil {
			return assignment.QueryFilter{}, invalidParam("to", "expected YYYY-MM-DD")
		}
	}
	filter.Clean()
	return filter, nil
}

func (api *assignmentApi) mark(ctx echo.Context, fn func(context.Context, uuid.UUID, bool) (assignment.Assignment, error)) error {
	id, err := bindUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var data MarkRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}

	a, err := fn(ctx.Request().Context(), id, data.Done)
	if err != nil {
		return errors.Wrap(err, "marking assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

type MarkRequest struct {
	Done bool `json:"done"`
}
