package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Beauty Booking API",
        "description": "Provider availability, prayer-aware slot grids and conflict-free booking allocation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Availability", "description": "Workable intervals, prayer blackouts and slot grids"},
        {"name": "Bookings", "description": "Slot allocation"},
        {"name": "Fees", "description": "Platform fee and provider earnings"}
    ],
    "paths": {
        "/providers/{id}/slots": {
            "get": {
                "tags": ["Availability"],
                "summary": "List bookable slots for a service",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "serviceId", "in": "query", "required": true, "type": "string"},
                    {"name": "includeInstant", "in": "query", "type": "boolean"},
                    {"name": "gender", "in": "query", "type": "string", "enum": ["women", "men"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SlotsEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Provider not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/providers/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Explain how a provider's free time on a date is derived",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "city", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/providers/{id}/prayer-breaks": {
            "get": {
                "tags": ["Availability"],
                "summary": "Prayer blackout windows for a provider day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "city", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/providers/{id}/availability-settings": {
            "get": {
                "tags": ["Availability"],
                "summary": "Availability settings of a provider",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/BookingEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot taken or busy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/quote": {
            "get": {
                "tags": ["Fees"],
                "summary": "Platform fee and provider earnings for an amount",
                "parameters": [
                    {"name": "amount", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/summary": {
            "post": {
                "tags": ["Fees"],
                "summary": "Total fees for a list of booking amounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeeSummaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AllocateBookingRequest": {
            "type": "object",
            "required": ["providerId", "serviceId", "date", "startTime"],
            "properties": {
                "providerId": {"type": "string"},
                "serviceId": {"type": "string"},
                "date": {"type": "string", "example": "2025-06-15"},
                "startTime": {"type": "string", "example": "16:40"},
                "instant": {"type": "boolean"}
            }
        },
        "FeeSummaryRequest": {
            "type": "object",
            "required": ["amounts"],
            "properties": {
                "amounts": {"type": "array", "items": {"type": "number"}}
            }
        },
        "Slot": {
            "type": "object",
            "properties": {
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:00"}
            }
        },
        "SlotsEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "providerId": {"type": "string"},
                        "serviceId": {"type": "string"},
                        "date": {"type": "string"},
                        "timezone": {"type": "string"},
                        "durationMinutes": {"type": "integer"},
                        "granularityMinutes": {"type": "integer"},
                        "slots": {"type": "array", "items": {"$ref": "#/definitions/Slot"}}
                    }
                },
                "meta": {"type": "object"}
            }
        },
        "BookingEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "providerId": {"type": "string"},
                        "serviceId": {"type": "string"},
                        "customerId": {"type": "string"},
                        "date": {"type": "string"},
                        "startTime": {"type": "string"},
                        "endTime": {"type": "string"},
                        "status": {"type": "string"},
                        "amount": {"type": "number"},
                        "platformFee": {"type": "number"},
                        "providerEarnings": {"type": "number"},
                        "createdAt": {"type": "string", "format": "date-time"}
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
