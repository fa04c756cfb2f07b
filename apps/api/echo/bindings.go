package echoapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

const dateLayout = "2006-01-02"

func invalidParam(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}

// bindDateQuery reads the "date" query param ("2006-01-02"); today if absent.
func bindDateQuery(ctx echo.Context) (time.Time, error) {
	raw := ctx.QueryParam("date")
	if raw == "" {
		return core.DateOf(time.Now()), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, invalidParam("date", "expected YYYY-MM-DD")
	}
	return date, nil
}

// bindScheduleSet resolves the schedule set targeted by the request: the "set"
// query param when given, otherwise the set covering the "date" query param.
func bindScheduleSet(ctx echo.Context, svc *timetable.Service) (timetable.ScheduleSet, error) {
	if raw := ctx.QueryParam("set"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return timetable.ScheduleSet{}, invalidParam("set", "invalid schedule set id")
		}
		return svc.Set(ctx.Request().Context(), id)
	}

	date, err := bindDateQuery(ctx)
	if err != nil {
		return timetable.ScheduleSet{}, err
	}
	return svc.ResolveSet(ctx.Request().Context(), date)
}

func bindDayParam(ctx echo.Context) (timetable.Weekday, error) {
	day, ok := timetable.ParseWeekday(ctx.Param("day"))
	if !ok {
		return 0, invalidParam("day", "unknown weekday")
	}
	return day, nil
}

func bindUUIDParam(ctx echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, invalidParam(name, "invalid id")
	}
	return id, nil
}

func bindDateParam(ctx echo.Context) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, ctx.Param("date"), time.UTC)
	if err != nil {
		return time.Time{}, invalidParam("date", "expected YYYY-MM-DD")
	}
	return date, nil
}
