package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MRTH API",
        "description": "Marathon discovery, registration schedule and running leaderboard API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Races", "description": "Race catalogue and regions"},
        {"name": "Schedule", "description": "Registration-opening calendar"},
        {"name": "Posts", "description": "Published blog posts"},
        {"name": "Ranking", "description": "Run record uploads and leaderboard"},
        {"name": "Auth", "description": "Admin authentication"},
        {"name": "Admin", "description": "Race and post management"}
    ],
    "paths": {
        "/races": {
            "get": {
                "tags": ["Races"],
                "summary": "List races",
                "parameters": [
                    {"name": "region", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["upcoming", "open", "closed"]},
                    {"name": "distance", "in": "query", "type": "string", "enum": ["full", "half", "10km", "5km"]},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["date", "registration", "popular"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/races/featured": {
            "get": {
                "tags": ["Races"],
                "summary": "Featured races",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/races/{id}": {
            "get": {
                "tags": ["Races"],
                "summary": "Race detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/regions": {
            "get": {
                "tags": ["Races"],
                "summary": "Region aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/weekly": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly registration timeline",
                "parameters": [
                    {"name": "week", "in": "query", "type": "string", "description": "Anchor date YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/urgent": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Races closing soon",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "List published posts",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/posts/{slug}": {
            "get": {
                "tags": ["Posts"],
                "summary": "Post detail by slug",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/ranking/upload": {
            "post": {
                "tags": ["Ranking"],
                "summary": "Upload a run screenshot",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "nickname", "in": "formData", "required": true, "type": "string"},
                    {"name": "screenshot", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ranking/records/{id}": {
            "get": {
                "tags": ["Ranking"],
                "summary": "Run record status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ranking/confirm": {
            "post": {
                "tags": ["Ranking"],
                "summary": "Confirm extracted metrics",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmRunRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ranking/leaderboard": {
            "get": {
                "tags": ["Ranking"],
                "summary": "Confirmed-record leaderboard",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/admin/races/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update race",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRaceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete race",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/races/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export race catalogue",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Admin"],
                "summary": "Dashboard counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ConfirmRunRecordRequest": {
            "type": "object",
            "properties": {
                "record_id": {"type": "string"},
                "nickname": {"type": "string"},
                "distance_km": {"type": "number"},
                "pace_seconds": {"type": "integer"},
                "duration_seconds": {"type": "integer"},
                "calories": {"type": "integer"}
            },
            "required": ["record_id", "nickname"]
        },
        "UpdateRaceRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "region": {"type": "string"},
                "city": {"type": "string"},
                "event_at": {"type": "string"},
                "registration_start_at": {"type": "string"},
                "registration_end_at": {"type": "string"},
                "status": {"type": "string"},
                "featured": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
