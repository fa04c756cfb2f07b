package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/timetable"
)

type timetableApi struct {
	svc      *timetable.Service
	validate *validator.Validate
}

func registerTimetableAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *timetable.Service, validate *validator.Validate) {
	api := timetableApi{svc: svc, validate: validate}

	tg := g.Group("/timetable", jwt)
	tg.GET("", api.retrieve)

	// cell endpoints; the set is resolved from the `set` or `date` query param
	cg := tg.Group("/:day/:slot")
	cg.PUT("", api.place)
	cg.DELETE("", api.remove)
	cg.POST("/move", api.move)
	cg.POST("/extend", api.extend)
}

// Handlers

func (api *timetableApi) retrieve(ctx echo.Context) error {
	set, err := bindScheduleSet(ctx, api.svc)
	if err != nil {
		return err
	}

	grid, err := api.svc.Grid(ctx.Request().Context(), set.ID)
	if err != nil {
		return errors.Wrap(err, "loading grid")
	}
	return ctx.JSON(http.StatusOK, GridResponse{
		ScheduleSet: set,
		TimeSlots:   grid.TimeSlots(),
		Courses:     grid.Snapshot(),
	})
}

func (api *timetableApi) place(ctx echo.Context) error {
	set, day, slotID, err := api.bindCell(ctx)
	if err != nil {
		return err
	}

	var data timetable.NewCourseSlot
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseSlot")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cs, err := api.svc.Place(ctx.Request().Context(), set.ID, day, slotID, data)
	if err != nil {
		return errors.Wrap(err, "placing course")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *timetableApi) move(ctx echo.Context) error {
	set, day, slotID, err := api.bindCell(ctx)
	if err != nil {
		return err
	}

	var data MoveRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}
	dstDay, ok := timetable.ParseWeekday(data.TargetDay)
	if !ok {
		return invalidParam("target_day", "unknown weekday")
	}

	cs, err := api.svc.Move(ctx.Request().Context(), set.ID, day, slotID, dstDay, data.TargetSlotID)
	if err != nil {
		return errors.Wrap(err, "moving course")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *timetableApi) extend(ctx echo.Context) error {
	set, day, slotID, err := api.bindCell(ctx)
	if err != nil {
		return err
	}

	var data ExtendRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExtendRequest")
	}
	dir, ok := timetable.ParseDirection(data.Direction)
	if !ok {
		return invalidParam("direction", "expected up or down")
	}

	cs, err := api.svc.Extend(ctx.Request().Context(), set.ID, day, slotID, dir)
	if err != nil {
		return errors.Wrap(err, "extending course")
	}
	return ctx.JSON(http.StatusCreated, cs)
}

func (api *timetableApi) remove(ctx echo.Context) error {
	set, day, slotID, err := api.bindCell(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Remove(ctx.Request().Context(), set.ID, day, slotID); err != nil {
		return errors.Wrap(err, "removing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *timetableApi) bindCell(ctx echo.Context) (timetable.ScheduleSet, timetable.Weekday, uuid.UUID, error) {
	set, err := bindScheduleSet(ctx, api.svc)
	if err != nil {
		return timetable.ScheduleSet{}, 0, uuid.Nil, err
	}
	day, err := bindDayParam(ctx)
	if err != nil {
		return timetable.ScheduleSet{}, 0, uuid.Nil, err
	}
	slotID, err := bindUUIDParam(ctx, "slot")
	if err != nil {
		return timetable.ScheduleSet{}, 0, uuid.Nil, err
	}
	return set, day, slotID, nil
}

type (
	GridResponse struct {
		ScheduleSet timetable.ScheduleSet           `json:"schedule_set"`
		TimeSlots   []timetable.TimeSlot            `json:"time_slots"`
		Courses     map[string]timetable.CourseSlot `json:"courses"`
	}

	MoveRequest struct {
		TargetDay    string    `json:"target_day" validate:"required"`
		TargetSlotID uuid.UUID `json:"target_slot_id" validate:"required"`
	}

	ExtendRequest struct {
		Direction string `json:"direction"`
	}
)
