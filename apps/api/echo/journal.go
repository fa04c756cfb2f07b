package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/autosave"
	"github.com/trezcool/ratiba/core/journal"
	"github.com/trezcool/ratiba/core/timetable"
)

type journalApi struct {
	svc      *journal.Service
	ttSvc    *timetable.Service
	autosave *autosave.Pipeline
}

func registerJournalAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *journal.Service, ttSvc *timetable.Service, pipeline *autosave.Pipeline) {
	api := journalApi{svc: svc, ttSvc: ttSvc, autosave: pipeline}

	jg := g.Group("/journal", jwt)
	jg.GET("", api.query)
	jg.DELETE("/entries/:id", api.destroy)

	// entry endpoints, keyed (course slot, date)
	eg := jg.Group("/:slot/:date")
	eg.PUT("", api.edit)
	eg.POST("/flush", api.flush)
	eg.POST("/status", api.setStatus)
	eg.POST("/cancel-day", api.cancelDay)
	eg.POST("/interro", api.setInterro)
}

// Handlers

func (api *journalApi) query(ctx echo.Context) error {
	set, err := bindScheduleSet(ctx, api.ttSvc)
	if err != nil {
		return err
	}

	from, to := set.StartDate, set.EndDate
	if raw := ctx.QueryParam("from"); raw != "" {
		if from, err = time.ParseInLocation(dateLayout, raw, time.UTC); err != nil {
			return invalidParam("from", "expected YYYY-MM-DD")
		}
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		if to, err = time.ParseInLocation(dateLayout, raw, time.UTC); err != nil {
			return invalidParam("to", "expected YYYY-MM-DD")
		}
	}

	entries, err := api.svc.Entries(ctx.Request().Context(), set.ID, from, to)
	if err != nil {
		return errors.Wrap(err, "querying journal entries")
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	if ctx.QueryParam("format") == "legacy" {
		out := make([]LegacyEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, LegacyEntry{
				Entry:    e,
				WorkText: journal.FormatWorkText(e.Status, e.Interro, e.ActualWork),
			})
		}
		return ctx.JSON(http.StatusOK, out)
	}
	return ctx.JSON(http.StatusOK, entries)
}

// edit buffers a text edit; it is persisted after the debounce window elapses,
// not synchronously. Rapid successive edits on the same entry coalesce.
func (api *journalApi) edit(ctx echo.Context) error {
	slotID, date, err := api.bindEntry(ctx)
	if err != nil {
		return err
	}

	var data EditRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditRequest")
	}
	if data.WorkText != nil {
		if !data.UpdateEntry.IsEmpty() {
			return invalidParam("work_text", "cannot be combined with field edits")
		}
		return api.editLegacy(ctx, slotID, date, *data.WorkText)
	}
	if data.UpdateEntry.IsEmpty() {
		return invalidParam("body", "no fields to update")
	}

	api.autosave.Queue(autosave.NewKey(slotID, date), data.UpdateEntry)
	return ctx.JSON(http.StatusAccepted, QueuedResponse{Queued: true})
}

// editLegacy applies a tagged day-book edit: the sentinels carry the status
// and the interro flag, the remaining text becomes the actual work.
func (api *journalApi) editLegacy(ctx echo.Context, slotID uuid.UUID, date time.Time, workText string) error {
	status, interro, text := journal.ParseWorkText(workText)

	if err := api.autosave.Flush(autosave.NewKey(slotID, date)); err != nil {
		return errors.Wrap(err, "flushing journal edit")
	}
	if _, err := api.svc.SetStatus(ctx.Request().Context(), slotID, date, status, ""); err != nil {
		return errors.Wrap(err, "setting journal status")
	}
	if _, err := api.svc.SetInterro(ctx.Request().Context(), slotID, date, interro); err != nil {
		return errors.Wrap(err, "toggling interro")
	}

	api.autosave.Queue(autosave.NewKey(slotID, date), journal.UpdateEntry{ActualWork: &text})
	return ctx.JSON(http.StatusAccepted, QueuedResponse{Queued: true})
}

// flush persists any buffered edit of the entry immediately. This is also the
// resend path after a failed save.
func (api *journalApi) flush(ctx echo.Context) error {
	slotID, date, err := api.bindEntry(ctx)
	if err != nil {
		return err
	}

	if err = api.autosave.Flush(autosave.NewKey(slotID, date)); err != nil {
		return errors.Wrap(err, "flushing journal edit")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *journalApi) setStatus(ctx echo.Context) error {
	slotID, date, err := api.bindEntry(ctx)
	if err != nil {
		return err
	}

	var data StatusRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	data.Note = core.CleanString(data.Note)

	// land any buffered text first so the transition acts on it
	if err = api.autosave.Flush(autosave.NewKey(slotID, date)); err != nil {
		return errors.Wrap(err, "flushing journal edit")
	}

	entry, err := api.svc.SetStatus(ctx.Request().Context(), slotID, date, data.Status, data.Note)
	if err != nil {
		return errors.Wrap(err, "setting journal status")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *journalApi) cancelDay(ctx echo.Context) error {
	slotID, date, err := api.bindEntry(ctx)
	if err != nil {
		return err
	}

	if err = api.autosave.Flush(autosave.NewKey(slotID, date)); err != nil {
		return errors.Wrap(err, "flushing journal edit")
	}

	entry, err := api.svc.CancelWholeDay(ctx.Request().Context(), slotID, date)
	if err != nil {
		return errors.Wrap(err, "cancelling whole day")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *journalApi) setInterro(ctx echo.Context) error {
	slotID, date, err := api.bindEntry(ctx)
	if err != nil {
		return err
	}

	var data InterroRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InterroRequest")
	}

	if err = api.autosave.Flush(autosave.NewKey(slotID, date)); err != nil {
		return errors.Wrap(err, "flushing journal edit")
	}

	entry, err := api.svc.SetInterro(ctx.Request().Context(), slotID, date, data.On)
	if err != nil {
		return errors.Wrap(err, "toggling interro")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *journalApi) destroy(ctx echo.Context) error {
	id, err := bindUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting journal entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *journalApi) bindEntry(ctx echo.Context) (slotID uuid.UUID, date time.Time, err error) {
	if slotID, err = bindUUIDParam(ctx, "slot"); err != nil {
		return
	}
	date, err = bindDateParam(ctx)
	return
}

type (
	QueuedResponse struct {
		Queued bool `json:"queued"`
	}

	// EditRequest is a journal text edit. WorkText carries the legacy tagged
	// day-book form and cannot be combined with the plain fields.
	EditRequest struct {
		journal.UpdateEntry
		WorkText *string `json:"work_text"`
	}

	// LegacyEntry is an Entry with its work text rendered back into the
	// tagged day-book form.
	LegacyEntry struct {
		journal.Entry
		WorkText string `json:"work_text"`
	}

	StatusRequest struct {
		Status journal.Status `json:"status"`
		Note   string         `json:"note"`
	}

	InterroRequest struct {
		On bool `json:"on"`
	}
)
