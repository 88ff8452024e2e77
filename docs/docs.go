// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/reports": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Submit a report",
                "parameters": [
                    {"type": "string", "description": "Idempotency key to prevent duplicate submissions", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Report category", "name": "category", "in": "formData", "required": true},
                    {"type": "string", "description": "What happened", "name": "description", "in": "formData", "required": true},
                    {"type": "string", "description": "Address; defaults to the picked draft location", "name": "location", "in": "formData"},
                    {"type": "number", "description": "Latitude", "name": "latitude", "in": "formData"},
                    {"type": "number", "description": "Longitude", "name": "longitude", "in": "formData"},
                    {"type": "file", "description": "Evidence photo", "name": "photo", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Replay of an earlier submission", "schema": {"$ref": "#/definitions/handler.submitReportResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.submitReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/reports/mine": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "List my reports",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listReportsResponse"}}
                }
            }
        },
        "/v1/reports/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Get a report",
                "parameters": [{"type": "string", "description": "Report id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.reportResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/reports/draft": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["drafts"],
                "summary": "Get report draft",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.draftResponse"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drafts"],
                "summary": "Save report draft fields",
                "parameters": [{"description": "Fields as entered", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.draftFormRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.draftFormResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["drafts"],
                "summary": "Discard report draft",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/v1/reports/draft/location": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drafts"],
                "summary": "Pick draft location",
                "parameters": [{"description": "Coordinate and how it was obtained", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.pickLocationRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.pickedLocationResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/geo/reverse": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["geo"],
                "summary": "Reverse geocode",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.pickedLocationResponse"}}}
            }
        },
        "/v1/admin/reports": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all reports",
                "parameters": [
                    {"type": "string", "description": "pending, proses or selesai", "name": "status", "in": "query"},
                    {"type": "string", "description": "Exact category", "name": "category", "in": "query"},
                    {"type": "integer", "description": "1-based page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size, 0 for all (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listReportsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/reports/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Report statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statsResponse"}}}
            }
        },
        "/v1/admin/reports/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Change report status",
                "parameters": [
                    {"type": "string", "description": "Report id", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.changeStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.reportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/reports/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete a report",
                "parameters": [{"type": "string", "description": "Report id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid or missing fields: category"},
                "fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "example": "user"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.userResponse"}
            }
        },
        "domain.Coordinates": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "handler.reportResponse": {
            "type": "object",
            "properties": {
                "author_name": {"type": "string"},
                "category": {"type": "string", "example": "lingkungan"},
                "coordinates": {"$ref": "#/definitions/domain.Coordinates"},
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "location": {"type": "string"},
                "photo_url": {"type": "string"},
                "status": {"type": "string", "example": "pending"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "handler.submitReportResponse": {
            "type": "object",
            "properties": {
                "already_existed": {"type": "boolean"},
                "created_at": {"type": "string"},
                "photo_url": {"type": "string"},
                "report_id": {"type": "string"},
                "status": {"type": "string", "example": "pending"}
            }
        },
        "handler.listReportsResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "reports": {"type": "array", "items": {"$ref": "#/definitions/handler.reportResponse"}},
                "total": {"type": "integer"}
            }
        },
        "handler.statsResponse": {
            "type": "object",
            "properties": {
                "pending": {"type": "integer"},
                "proses": {"type": "integer"},
                "selesai": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "handler.changeStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "proses"}
            }
        },
        "handler.draftFormRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"}
            }
        },
        "handler.draftFormResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handler.pickLocationRequest": {
            "type": "object",
            "required": ["lat", "lng"],
            "properties": {
                "lat": {"type": "number", "maximum": 90, "minimum": -90},
                "lng": {"type": "number", "maximum": 180, "minimum": -180},
                "source": {"type": "string", "enum": ["device", "manual"], "example": "device"}
            }
        },
        "handler.pickedLocationResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "address_resolved": {"type": "boolean"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "picked_at": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "handler.draftResponse": {
            "type": "object",
            "properties": {
                "form": {"$ref": "#/definitions/handler.draftFormResponse"},
                "location": {"$ref": "#/definitions/handler.pickedLocationResponse"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token as \"Bearer {token}\"; browsers use the session cookie instead.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Lapor Pak! Report API",
	Description:      "Citizen complaint reporting: submission with photo evidence, personal dashboard and admin triage.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
