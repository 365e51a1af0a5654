package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "parish-calendar/internal/adapters/storage/memory"
	"parish-calendar/internal/domain/events"
	"parish-calendar/internal/router"
)

const fixture = `
parishes:
  - id: p1
    name: St. Mary
ministries:
  - id: youth
    parish_id: p1
    owner_user_id: owner-1
    name: Youth Ministry
  - id: choir
    parish_id: p1
    owner_user_id: owner-2
    name: Choir
events:
  - id: "42"
    ministry_id: youth
    title: Bible Study
    location: Hall
    recurring: true
    series_start_date: "2025-06-04"
    start_time: "19:00"
    end_time: "21:00"
    rule: FREQ=WEEKLY;BYDAY=WE
  - id: "5"
    ministry_id: youth
    title: Sunday Rosary
    recurring: true
    series_start_date: "2025-01-05"
    start_time: "10:00"
    end_time: "11:00"
    rule: FREQ=WEEKLY
  - id: "7"
    ministry_id: choir
    title: Fundraiser
    start: "2025-06-10T18:00:00Z"
    end: "2025-06-10T20:00:00Z"
`

type occurrence struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Location string    `json:"location"`
	Ministry string    `json:"ministry"`
	Parish   string    `json:"parish"`
}

type calendar struct {
	Events []occurrence `json:"events"`
}

// El evento "broken" va directo al repo: el service no acepta reglas inválidas.
func newServer(t *testing.T) (*httptest.Server, events.Repository) {
	t.Helper()

	dir := mem.NewMinistryRepo()
	repo := mem.NewEventRepo(dir, time.UTC)
	opts := router.Options{EventRepo: repo, MinistryRepo: dir}
	svc := router.NewServices(opts)

	seed, err := mem.ParseSeed([]byte(fixture))
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), svc.Ministries, svc.Events))

	start := events.TimeOfDay{Hour: 8}
	end := events.TimeOfDay{Hour: 9}
	seriesStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(context.Background(), events.Event{
		ID:              "broken",
		MinistryID:      "youth",
		Title:           "Broken",
		IsRecurring:     true,
		SeriesStartDate: &seriesStart,
		StartTimeOfDay:  &start,
		EndTimeOfDay:    &end,
		RecurrenceRule:  "INVALID_RULE",
	}))

	ts := httptest.NewServer(router.NewRouterWith(opts, svc))
	t.Cleanup(ts.Close)
	return ts, repo
}

func getCalendar(t *testing.T, baseURL, start, end string) calendar {
	t.Helper()
	st, body := doReq(t, baseURL, http.MethodGet, "/api/calendar-events?start="+url.QueryEscape(start)+"&end="+url.QueryEscape(end), "", nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var out calendar
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func juneCalendar(t *testing.T, baseURL string) calendar {
	return getCalendar(t, baseURL, "2025-06-01T00:00:00Z", "2025-06-30T00:00:00Z")
}

func ids(c calendar) []string {
	out := make([]string, 0, len(c.Events))
	for _, o := range c.Events {
		out = append(out, o.ID)
	}
	return out
}

func find(c calendar, id string) (occurrence, bool) {
	for _, o := range c.Events {
		if o.ID == id {
			return o, true
		}
	}
	return occurrence{}, false
}

func TestHTTP_CalendarExpansion(t *testing.T) {
	ts, _ := newServer(t)

	cal := juneCalendar(t, ts.URL)

	// 4 miércoles + 5 domingos + 1 ad-hoc; el evento con regla rota no aparece.
	assert.Len(t, cal.Events, 10)
	for _, id := range ids(cal) {
		assert.NotContains(t, id, "broken")
	}

	wed, ok := find(cal, "recurring_42_2025-06-18")
	require.True(t, ok)
	assert.Equal(t, "Bible Study", wed.Title)
	assert.Equal(t, "Youth Ministry", wed.Ministry)
	assert.Equal(t, "St. Mary", wed.Parish)
	assert.Equal(t, "Hall", wed.Location)
	assert.True(t, wed.Start.Equal(time.Date(2025, 6, 18, 19, 0, 0, 0, time.UTC)))
	assert.True(t, wed.End.Equal(time.Date(2025, 6, 18, 21, 0, 0, 0, time.UTC)))

	ad, ok := find(cal, "adhoc_7")
	require.True(t, ok)
	assert.Equal(t, "Choir", ad.Ministry)
	assert.True(t, ad.Start.Equal(time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)))
}

func TestHTTP_CalendarWindowParams(t *testing.T) {
	ts, _ := newServer(t)

	for _, path := range []string{"/api/calendar-events", "/api/calendar-events?start=2025-06-01", "/api/calendar-events?end=2025-06-30"} {
		st, body := doReq(t, ts.URL, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, st, path)
		assert.JSONEq(t, `{"events":[]}`, string(body), path)
	}

	st, body := doReq(t, ts.URL, http.MethodGet, "/api/calendar-events?start=junio&end=2025-06-30", "", nil)
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Contains(t, string(body), `"error"`)

	// Offset distinto de Z: cuenta la fecha propia del valor.
	cal := getCalendar(t, ts.URL, "2025-06-10T23:30:00-05:00", "2025-06-10T23:30:00-05:00")
	assert.Equal(t, []string{"adhoc_7"}, ids(cal))
}

func TestHTTP_CancelRestoreRoundTrip(t *testing.T) {
	ts, _ := newServer(t)
	before := juneCalendar(t, ts.URL)

	st, body := doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "cancel"})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.JSONEq(t, `{"success":true,"action":"cancelled"}`, string(body))

	cancelled := juneCalendar(t, ts.URL)
	assert.Len(t, cancelled.Events, len(before.Events)-1)
	_, ok := find(cancelled, "recurring_5_2025-06-08")
	assert.False(t, ok)

	st, body = doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "restore"})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.JSONEq(t, `{"success":true,"action":"restored"}`, string(body))

	assert.Equal(t, before, juneCalendar(t, ts.URL))

	st, body = doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "restore"})
	assert.Equal(t, http.StatusNotFound, st)
	assert.JSONEq(t, `{"error":"No exception found to restore"}`, string(body))
}

func TestHTTP_Reschedule(t *testing.T) {
	ts, repo := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-15/action", "owner-1", map[string]any{
		"action":             "reschedule",
		"new_start_datetime": "2025-06-16T14:00:00Z",
		"new_end_datetime":   "2025-06-16T15:00:00Z",
	})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.JSONEq(t, `{"success":true,"action":"rescheduled"}`, string(body))

	cal := juneCalendar(t, ts.URL)
	o, ok := find(cal, "recurring_5_2025-06-15")
	require.True(t, ok)
	assert.Equal(t, "Sunday Rosary (Rescheduled)", o.Title)
	assert.True(t, o.Start.Equal(time.Date(2025, 6, 16, 14, 0, 0, 0, time.UTC)))
	for _, e := range cal.Events {
		assert.False(t, e.Start.Equal(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)), "original slot is empty")
	}

	// Cancelar dos veces: una sola fila, cancelada y sin fechas nuevas.
	for range 2 {
		st, _ = doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-15/action", "owner-1", map[string]any{"action": "cancel"})
		require.Equal(t, http.StatusOK, st)
	}
	x, err := repo.GetException(context.Background(), "5", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, events.StatusCancelled, x.Status)
	assert.Nil(t, x.NewStartDateTime)
}

func TestHTTP_ActionAcceptsForm(t *testing.T) {
	ts, _ := newServer(t)

	form := url.Values{"action": {"cancel"}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/events/42/occurrences/2025-06-11/action", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Debug-User-ID", "owner-1")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	_, ok := find(juneCalendar(t, ts.URL), "recurring_42_2025-06-11")
	assert.False(t, ok)
}

func TestHTTP_ActionErrors(t *testing.T) {
	ts, _ := newServer(t)

	cases := []struct {
		name   string
		path   string
		user   string
		body   any
		status int
		error  string
	}{
		{"no identity", "/events/5/occurrences/2025-06-08/action", "", map[string]any{"action": "cancel"}, http.StatusUnauthorized, ""},
		{"not owner", "/events/5/occurrences/2025-06-08/action", "owner-2", map[string]any{"action": "cancel"}, http.StatusForbidden, ""},
		{"unknown event", "/events/999/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "cancel"}, http.StatusNotFound, "event not found"},
		{"bad date", "/events/5/occurrences/08-06-2025/action", "owner-1", map[string]any{"action": "cancel"}, http.StatusBadRequest, "Invalid date format"},
		{"ad-hoc target", "/events/7/occurrences/2025-06-10/action", "owner-2", map[string]any{"action": "cancel"}, http.StatusBadRequest, "This action is only available for recurring events"},
		{"missing reschedule", "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "reschedule", "new_start_datetime": "2025-06-09T10:00:00Z"}, http.StatusBadRequest, "New start and end times required"},
		{"bad datetime", "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "reschedule", "new_start_datetime": "x", "new_end_datetime": "y"}, http.StatusBadRequest, "Invalid datetime format"},
		{"unknown action", "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "delete"}, http.StatusBadRequest, "Invalid request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, http.MethodPost, tc.path, tc.user, tc.body)
			assert.Equal(t, tc.status, st, string(body))
			if tc.error != "" {
				var e struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(body, &e))
				assert.Equal(t, tc.error, e.Error)
			}
		})
	}
}

func TestHTTP_OccurrenceException(t *testing.T) {
	ts, _ := newServer(t)
	path := "/events/5/occurrences/2025-06-15"

	st, body := doReq(t, ts.URL, http.MethodGet, path, "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, st)
	assert.JSONEq(t, `{"error":"No exception found"}`, string(body))

	st, _ = doReq(t, ts.URL, http.MethodPost, path+"/action", "owner-1", map[string]any{
		"action":             "reschedule",
		"new_start_datetime": "2025-06-16T14:00:00Z",
		"new_end_datetime":   "2025-06-16T15:00:00Z",
	})
	require.Equal(t, http.StatusOK, st)

	st, body = doReq(t, ts.URL, http.MethodGet, path, "owner-1", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var x struct {
		EventID  string     `json:"event_id"`
		Date     string     `json:"date"`
		Status   string     `json:"status"`
		NewStart *time.Time `json:"new_start_datetime"`
	}
	require.NoError(t, json.Unmarshal(body, &x))
	assert.Equal(t, "5", x.EventID)
	assert.Equal(t, "2025-06-15", x.Date)
	assert.Equal(t, "rescheduled", x.Status)
	require.NotNil(t, x.NewStart)
	assert.True(t, x.NewStart.Equal(time.Date(2025, 6, 16, 14, 0, 0, 0, time.UTC)))

	st, _ = doReq(t, ts.URL, http.MethodGet, path, "owner-2", nil)
	assert.Equal(t, http.StatusForbidden, st)
	st, _ = doReq(t, ts.URL, http.MethodGet, "/events/5/occurrences/15-06-2025", "owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, st)
	st, _ = doReq(t, ts.URL, http.MethodGet, "/events/7/occurrences/2025-06-10", "owner-2", nil)
	assert.Equal(t, http.StatusBadRequest, st)
}

func TestHTTP_DeleteEventCascades(t *testing.T) {
	ts, repo := newServer(t)

	st, _ := doReq(t, ts.URL, http.MethodPost, "/events/5/occurrences/2025-06-08/action", "owner-1", map[string]any{"action": "cancel"})
	require.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, http.MethodDelete, "/events/5", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)
	st, _ = doReq(t, ts.URL, http.MethodDelete, "/events/5", "owner-2", nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body := doReq(t, ts.URL, http.MethodDelete, "/events/5", "owner-1", nil)
	require.Equal(t, http.StatusNoContent, st, string(body))

	for _, id := range ids(juneCalendar(t, ts.URL)) {
		assert.False(t, strings.HasPrefix(id, "recurring_5_"), id)
	}
	_, err := repo.GetException(context.Background(), "5", time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, events.ErrNotFound)

	st, body = doReq(t, ts.URL, http.MethodDelete, "/events/5", "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, st)
	assert.JSONEq(t, `{"error":"event not found"}`, string(body))
}

func TestHTTP_ICSFeed(t *testing.T) {
	ts, _ := newServer(t)

	res, err := http.Get(ts.URL + "/api/calendar-events.ics?start=2025-06-01&end=2025-06-07")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/calendar"))
	assert.Contains(t, string(body), "UID:recurring_42_2025-06-04")
	assert.Contains(t, string(body), "UID:recurring_5_2025-06-01")
}

func TestHTTP_StorageFailureIs500(t *testing.T) {
	opts := router.Options{EventRepo: failingRepo{}, MinistryRepo: mem.NewMinistryRepo()}
	ts := httptest.NewServer(router.NewRouter(opts))
	defer ts.Close()

	st, body := doReq(t, ts.URL, http.MethodGet, "/api/calendar-events?start=2025-06-01&end=2025-06-30", "", nil)
	assert.Equal(t, http.StatusInternalServerError, st)
	assert.Equal(t, "internal error\n", string(body))
}

func TestHTTP_HealthAndSwagger(t *testing.T) {
	ts, _ := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	st, body = doReq(t, ts.URL, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), "/api/calendar-events")
}

type failingRepo struct {
	events.Repository
}

func (failingRepo) ListAdHocStartingBetween(context.Context, time.Time, time.Time) ([]events.Event, error) {
	return nil, errors.New("db down")
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
