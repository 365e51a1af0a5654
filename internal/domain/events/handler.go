package events

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"parish-calendar/internal/middleware"
	"parish-calendar/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// OwnerLookup resuelve el dueño de un ministerio (lo implementa ministries.Service).
type OwnerLookup interface {
	OwnerOf(ctx context.Context, ministryID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, owners OwnerLookup, log logger.Logger) {
	if log == nil {
		log = logger.Discard()
	}

	r.Get("/api/calendar-events", calendarEventsHandler(svc, log))
	r.Get("/api/calendar-events.ics", calendarICSHandler(svc, log))

	r.Delete("/events/{eventID}", deleteEventHandler(svc, owners, log))
	r.Get("/events/{eventID}/occurrences/{date}", occurrenceExceptionHandler(svc, owners, log))
	r.Post("/events/{eventID}/occurrences/{date}/action", occurrenceActionHandler(svc, owners, log))
}

// occurrenceResponse es una ocurrencia concreta de un evento en el calendario.
type occurrenceResponse struct {
	ID          string    `json:"id" example:"recurring_42_2025-06-15"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Ministry    string    `json:"ministry"`
	Parish      string    `json:"parish"`
}

// calendarResponse envuelve las ocurrencias de la ventana pedida.
type calendarResponse struct {
	Events []occurrenceResponse `json:"events"`
}

// occurrenceActionRequest es el cuerpo para cancelar, reprogramar o restaurar una ocurrencia.
type occurrenceActionRequest struct {
	Action           Action `json:"action" enums:"cancel,reschedule,restore"`
	NewStartDatetime string `json:"new_start_datetime"` // ISO-8601, solo reschedule
	NewEndDatetime   string `json:"new_end_datetime"`   // ISO-8601, solo reschedule
}

// occurrenceActionResponse confirma la acción aplicada.
type occurrenceActionResponse struct {
	Success bool    `json:"success"`
	Action  Outcome `json:"action" enums:"cancelled,rescheduled,restored"`
}

// occurrenceExceptionResponse es la excepción guardada para una ocurrencia.
type occurrenceExceptionResponse struct {
	EventID          string          `json:"event_id"`
	Date             string          `json:"date" example:"2025-06-15"`
	Status           ExceptionStatus `json:"status" enums:"cancelled,rescheduled"`
	NewStartDatetime *time.Time      `json:"new_start_datetime,omitempty"`
	NewEndDatetime   *time.Time      `json:"new_end_datetime,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// calendarEventsHandler godoc
// @Summary Ocurrencias del calendario
// @Description Expande eventos ad-hoc y recurrentes (con sus excepciones) dentro de la ventana [start, end]. Solo importa la fecha de cada parámetro; se acepta "Z" u offset. Si falta start o end la respuesta es una lista vacía.
// @Tags calendar
// @Produce json
// @Param start query string false "Inicio de la ventana (ISO-8601)"
// @Param end query string false "Fin de la ventana (ISO-8601), inclusivo"
// @Success 200 {object} calendarResponse
// @Failure 400 {object} errorResponse "start/end inválidos"
// @Failure 500 {string} string "internal error"
// @Router /api/calendar-events [get]
func calendarEventsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, ok := expandWindow(w, r, svc, log)
		if !ok {
			return
		}

		out := make([]occurrenceResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOccurrenceResponse(o))
		}
		writeJSON(w, http.StatusOK, calendarResponse{Events: out})
	}
}

// calendarICSHandler godoc
// @Summary Ocurrencias del calendario en formato iCalendar
// @Description Misma expansión que /api/calendar-events, serializada como text/calendar.
// @Tags calendar
// @Produce plain
// @Param start query string false "Inicio de la ventana (ISO-8601)"
// @Param end query string false "Fin de la ventana (ISO-8601), inclusivo"
// @Success 200 {string} string "VCALENDAR"
// @Failure 400 {object} errorResponse "start/end inválidos"
// @Failure 500 {string} string "internal error"
// @Router /api/calendar-events.ics [get]
func calendarICSHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, ok := expandWindow(w, r, svc, log)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := WriteICS(w, "Parish events", items, svc.now()); err != nil {
			requestLogger(log, r).Error("ics write failed", map[string]any{"error": err.Error()})
		}
	}
}

// expandWindow resuelve start/end y expande. Si devuelve ok=false ya respondió.
func expandWindow(w http.ResponseWriter, r *http.Request, svc *Service, log logger.Logger) ([]Occurrence, bool) {
	win, present, err := ParseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start and end must be ISO-8601 dates or datetimes"})
		return nil, false
	}
	if !present {
		return []Occurrence{}, true
	}

	batch, err := svc.Occurrences(r.Context(), win)
	if err != nil {
		requestLogger(log, r).Error("calendar expansion failed", map[string]any{
			"error": err.Error(),
			"start": FormatDate(win.Start),
			"end":   FormatDate(win.End),
		})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return batch.Occurrences, true
}

// occurrenceActionHandler godoc
// @Summary Cancelar, reprogramar o restaurar una ocurrencia
// @Description Aplica una excepción sobre la ocurrencia de un evento recurrente identificada por su fecha original. Solo el dueño del ministerio puede hacerlo. Acepta JSON o form-urlencoded. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags occurrences
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID del evento"
// @Param date path string true "Fecha original de la ocurrencia (YYYY-MM-DD)"
// @Param payload body occurrenceActionRequest true "Acción; new_start_datetime/new_end_datetime solo para reschedule"
// @Success 200 {object} occurrenceActionResponse
// @Failure 400 {object} errorResponse "fecha inválida / evento no recurrente / datos de reprogramación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {object} errorResponse "event not found / nada que restaurar"
// @Failure 500 {string} string "internal error"
// @Router /events/{eventID}/occurrences/{date}/action [post]
func occurrenceActionHandler(svc *Service, owners OwnerLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := ownedEvent(w, r, svc, owners, log)
		if !ok {
			return
		}

		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid date format"})
			return
		}

		req, err := decodeActionRequest(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
			return
		}

		outcome, err := svc.SetOccurrenceAction(r.Context(), ev.ID, date, req.Action, ReschedulePayload{
			NewStart: req.NewStartDatetime,
			NewEnd:   req.NewEndDatetime,
		})
		if err != nil {
			writeActionError(w, r, log, err)
			return
		}
		if outcome == OutcomeNothingToRestore {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "No exception found to restore"})
			return
		}

		writeJSON(w, http.StatusOK, occurrenceActionResponse{Success: true, Action: outcome})
	}
}

// occurrenceExceptionHandler godoc
// @Summary Excepción de una ocurrencia
// @Description Devuelve la cancelación o reprogramación guardada para la ocurrencia (fecha original). Solo el dueño del ministerio.
// @Tags occurrences
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID del evento"
// @Param date path string true "Fecha original de la ocurrencia (YYYY-MM-DD)"
// @Success 200 {object} occurrenceExceptionResponse
// @Failure 400 {object} errorResponse "fecha inválida / evento no recurrente"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {object} errorResponse "event not found / sin excepción"
// @Failure 500 {string} string "internal error"
// @Router /events/{eventID}/occurrences/{date} [get]
func occurrenceExceptionHandler(svc *Service, owners OwnerLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := ownedEvent(w, r, svc, owners, log)
		if !ok {
			return
		}

		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid date format"})
			return
		}

		x, err := svc.OccurrenceException(r.Context(), ev.ID, date)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "No exception found"})
				return
			}
			writeActionError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, occurrenceExceptionResponse{
			EventID:          x.EventID,
			Date:             FormatDate(x.OriginalOccurrenceDate),
			Status:           x.Status,
			NewStartDatetime: x.NewStartDateTime,
			NewEndDatetime:   x.NewEndDateTime,
			UpdatedAt:        x.UpdatedAt,
		})
	}
}

// deleteEventHandler godoc
// @Summary Borrar un evento
// @Description Borra el evento y todas sus excepciones. Solo el dueño del ministerio.
// @Tags events
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID del evento"
// @Success 204 "No Content"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {object} errorResponse "event not found"
// @Failure 500 {string} string "internal error"
// @Router /events/{eventID} [delete]
func deleteEventHandler(svc *Service, owners OwnerLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := ownedEvent(w, r, svc, owners, log)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), ev.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
				return
			}
			requestLogger(log, r).Error("event delete failed", map[string]any{"error": err.Error(), "event_id": ev.ID})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ownedEvent resuelve {eventID} y exige que el usuario sea dueño de su ministerio.
// Si devuelve ok=false ya respondió (401, 404, 403 o 500).
func ownedEvent(w http.ResponseWriter, r *http.Request, svc *Service, owners OwnerLookup, log logger.Logger) (Event, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Event{}, false
	}

	eventID := chi.URLParam(r, "eventID")
	ev, err := svc.GetByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
			return Event{}, false
		}
		requestLogger(log, r).Error("event lookup failed", map[string]any{"error": err.Error(), "event_id": eventID})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return Event{}, false
	}

	owner, err := owners.OwnerOf(r.Context(), ev.MinistryID)
	if err != nil || owner != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Event{}, false
	}
	return ev, true
}

// decodeActionRequest acepta JSON o un formulario con los mismos nombres de campo.
func decodeActionRequest(r *http.Request) (occurrenceActionRequest, error) {
	var req occurrenceActionRequest

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Action = Action(strings.TrimSpace(r.PostForm.Get("action")))
	req.NewStartDatetime = r.PostForm.Get("new_start_datetime")
	req.NewEndDatetime = r.PostForm.Get("new_end_datetime")
	return req, nil
}

func writeActionError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
	case errors.Is(err, ErrNotRecurring):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "This action is only available for recurring events"})
	case errors.Is(err, ErrMissingReschedule):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "New start and end times required"})
	case errors.Is(err, ErrInvalidDatetime):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid datetime format"})
	case errors.Is(err, ErrUnknownAction):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		requestLogger(log, r).Error("occurrence action failed", map[string]any{"error": err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func requestLogger(log logger.Logger, r *http.Request) logger.Logger {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return log.With(map[string]any{"request_id": id})
	}
	return log
}

func toOccurrenceResponse(o Occurrence) occurrenceResponse {
	return occurrenceResponse{
		ID:          o.ID,
		Title:       o.Title,
		Start:       o.Start,
		End:         o.End,
		Description: o.Description,
		Location:    o.Location,
		Ministry:    o.Ministry,
		Parish:      o.Parish,
	}
}

// writeJSON: por ahora solo lo usa este módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
