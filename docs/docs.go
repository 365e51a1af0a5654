// Package docs registra el documento OpenAPI de la API del calendario.
// Mantenerlo alineado con las anotaciones godoc de internal/domain/events/handler.go
// (swag init -g cmd/api/main.go lo regenera).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/calendar-events": {
            "get": {
                "description": "Expande eventos ad-hoc y recurrentes (con sus excepciones) dentro de la ventana [start, end]. Solo importa la fecha de cada parámetro; se acepta \"Z\" u offset. Si falta start o end la respuesta es una lista vacía.",
                "produces": ["application/json"],
                "tags": ["calendar"],
                "summary": "Ocurrencias del calendario",
                "parameters": [
                    {"type": "string", "description": "Inicio de la ventana (ISO-8601)", "name": "start", "in": "query"},
                    {"type": "string", "description": "Fin de la ventana (ISO-8601), inclusivo", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/events.calendarResponse"}},
                    "400": {"description": "start/end inválidos", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/api/calendar-events.ics": {
            "get": {
                "description": "Misma expansión que /api/calendar-events, serializada como text/calendar.",
                "produces": ["text/plain"],
                "tags": ["calendar"],
                "summary": "Ocurrencias del calendario en formato iCalendar",
                "parameters": [
                    {"type": "string", "description": "Inicio de la ventana (ISO-8601)", "name": "start", "in": "query"},
                    {"type": "string", "description": "Fin de la ventana (ISO-8601), inclusivo", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "VCALENDAR", "schema": {"type": "string"}},
                    "400": {"description": "start/end inválidos", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/events/{eventID}": {
            "delete": {
                "description": "Borra el evento y todas sus excepciones. Solo el dueño del ministerio.",
                "tags": ["events"],
                "summary": "Borrar un evento",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "ID del evento", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "event not found", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/events/{eventID}/occurrences/{date}": {
            "get": {
                "description": "Devuelve la cancelación o reprogramación guardada para la ocurrencia (fecha original). Solo el dueño del ministerio.",
                "produces": ["application/json"],
                "tags": ["occurrences"],
                "summary": "Excepción de una ocurrencia",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "ID del evento", "name": "eventID", "in": "path", "required": true},
                    {"type": "string", "description": "Fecha original de la ocurrencia (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/events.occurrenceExceptionResponse"}},
                    "400": {"description": "fecha inválida / evento no recurrente", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "event not found / sin excepción", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/events/{eventID}/occurrences/{date}/action": {
            "post": {
                "description": "Aplica una excepción sobre la ocurrencia de un evento recurrente identificada por su fecha original. Solo el dueño del ministerio puede hacerlo. Acepta JSON o form-urlencoded.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["occurrences"],
                "summary": "Cancelar, reprogramar o restaurar una ocurrencia",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "ID del evento", "name": "eventID", "in": "path", "required": true},
                    {"type": "string", "description": "Fecha original de la ocurrencia (YYYY-MM-DD)", "name": "date", "in": "path", "required": true},
                    {"description": "Acción; new_start_datetime/new_end_datetime solo para reschedule", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/events.occurrenceActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/events.occurrenceActionResponse"}},
                    "400": {"description": "fecha inválida / evento no recurrente / datos de reprogramación", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "event not found / nada que restaurar", "schema": {"$ref": "#/definitions/events.errorResponse"}},
                    "500": {"description": "internal error", "schema": {"type": "string"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["ops"],
                "summary": "Liveness",
                "responses": {"200": {"description": "ok", "schema": {"type": "string"}}}
            }
        }
    },
    "definitions": {
        "events.occurrenceExceptionResponse": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "date": {"type": "string", "example": "2025-06-15"},
                "status": {"type": "string", "enum": ["cancelled", "rescheduled"]},
                "new_start_datetime": {"type": "string"},
                "new_end_datetime": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "events.calendarResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/events.occurrenceResponse"}}
            }
        },
        "events.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "events.occurrenceActionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["cancel", "reschedule", "restore"]},
                "new_start_datetime": {"type": "string"},
                "new_end_datetime": {"type": "string"}
            }
        },
        "events.occurrenceActionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "action": {"type": "string", "enum": ["cancelled", "rescheduled", "restored"]}
            }
        },
        "events.occurrenceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "recurring_42_2025-06-15"},
                "title": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "ministry": {"type": "string"},
                "parish": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Parish Calendar API",
	Description:      "Expansión de eventos recurrentes y ad-hoc de ministerios parroquiales.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
