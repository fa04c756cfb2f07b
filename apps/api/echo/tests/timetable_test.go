package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core/timetable"
	testutil "github.com/trezcool/ratiba/tests"
)

func setupGrid(t *testing.T) (timetable.ScheduleSet, []timetable.TimeSlot) {
	t.Helper()
	db.Reset()
	slots := testutil.CreateTimeSlots(t, db, "08:25-09:15", "09:15-10:05", "10:25-11:15")
	set := testutil.CreateScheduleSet(t, db, "2020-2021",
		time.Now().AddDate(0, -1, 0), time.Now().AddDate(0, 9, 0))
	return set, slots
}

func TestTimetableAPI(t *testing.T) {
	set, slots := setupGrid(t)
	token := getToken(t)

	cellPath := func(day string, slotIdx int) string {
		return fmt.Sprintf("/v1/timetable/%s/%s?set=%s", day, slots[slotIdx].ID, set.ID)
	}
	mathsBody := marchallObj(t, map[string]string{"subject": "Mathématiques", "class_id": "3A", "room": "B12"})

	// auth is required on every endpoint
	tests := []httpTest{
		{name: "GET requires auth", method: http.MethodGet, path: "/v1/timetable", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "PUT requires auth", method: http.MethodPut, path: cellPath("monday", 0), body: mathsBody, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("place", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, cellPath("monday", 0), token, mathsBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var cs timetable.CourseSlot
		if err := json.Unmarshal(rec.Body.Bytes(), &cs); err != nil {
			t.Fatal(err)
		}
		if cs.Subject != "Mathématiques" || cs.Day != timetable.Monday {
			t.Errorf("placed = %+v", cs)
		}
	})

	t.Run("place missing fields", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"subject": "Physique"})
		req, rec := newAuthRequest(http.MethodPut, cellPath("monday", 1), token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("grid snapshot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable?set="+set.ID.String(), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp echoapi.GridResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.ScheduleSet.ID != set.ID || len(resp.TimeSlots) != 3 {
			t.Errorf("resp = %+v", resp)
		}
		if _, ok := resp.Courses["monday-08:25-09:15"]; !ok {
			t.Errorf("missing placed course, courses = %v", resp.Courses)
		}
	})

	t.Run("grid resolves set by date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable", token) // today
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("no set covers date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable?date=2031-01-01", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("move", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"target_day": "tuesday", "target_slot_id": slots[1].ID})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/timetable/monday/%s/move?set=%s", slots[0].ID, set.ID), token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var cs timetable.CourseSlot
		_ = json.Unmarshal(rec.Body.Bytes(), &cs)
		if cs.Day != timetable.Tuesday || cs.TimeSlotID != slots[1].ID {
			t.Errorf("moved = %+v", cs)
		}
	})

	t.Run("move onto occupied cell conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, cellPath("monday", 0), token, mathsBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("re-place failed: %d", rec.Code)
		}

		body := marchallObj(t, map[string]interface{}{"target_day": "tuesday", "target_slot_id": slots[1].ID})
		req, rec = newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/timetable/monday/%s/move?set=%s", slots[0].ID, set.ID), token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("extend", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"direction": "down"})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/timetable/tuesday/%s/extend?set=%s", slots[1].ID, set.ID), token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var cs timetable.CourseSlot
		_ = json.Unmarshal(rec.Body.Bytes(), &cs)
		if cs.TimeSlotID != slots[2].ID {
			t.Errorf("extended = %+v", cs)
		}
	})

	t.Run("extend off the edge conflicts", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"direction": "down"})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/timetable/tuesday/%s/extend?set=%s", slots[2].ID, set.ID), token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown weekday", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, cellPath("sunday", 0), token, mathsBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, cellPath("tuesday", 2), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		// removing an empty cell is a 404
		req, rec = newAuthRequest(http.MethodDelete, cellPath("tuesday", 2), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}
