// Package docs holds the swagger document served at /swagger. Regenerate
// with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/health": {
            "get": {
                "description": "Pings PostgreSQL.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reconciliations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "List reconciliation runs",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.RunListResult"}}
                }
            }
        },
        "/reconciliations/daily": {
            "post": {
                "description": "Uploads a payout transactions export and reconciles the orders created on date.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "Reconcile one day",
                "parameters": [
                    {"type": "file", "description": "Payout transactions CSV", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Day to reconcile (YYYY-MM-DD)", "name": "date", "in": "formData", "required": true},
                    {"type": "string", "description": "utc, shop or an IANA name", "name": "timezone", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Run"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reconciliations/range": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "Reconcile the whole payout export",
                "parameters": [
                    {"type": "file", "description": "Payout transactions CSV", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "utc, shop or an IANA name", "name": "timezone", "in": "formData"},
                    {"type": "string", "description": "order_date or payout_date", "name": "group_by", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Run"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reconciliations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "Get a run with its reports",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Run"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["reconciliations"],
                "summary": "Delete a run and its reports",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reconciliations/{id}/days": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "Daily summaries of a run",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/reconciliations/{id}/mismatches": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reconciliations"],
                "summary": "Mismatch analysis of a run",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/reconciliations/{id}/reports/{kind}": {
            "get": {
                "tags": ["reconciliations"],
                "summary": "Redirect to a presigned report URL",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "orders, summary, transposed, sources, trace or mismatches", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/refunds/analysis": {
            "get": {
                "description": "Compares the four places Shopify records refunds for orders created between start and end.",
                "produces": ["application/json"],
                "tags": ["refunds"],
                "summary": "Compare refund sources",
                "parameters": [
                    {"type": "string", "description": "First day (YYYY-MM-DD)", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "Last day (YYYY-MM-DD)", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "model.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "mode": {"type": "string"},
                "status": {"type": "string"},
                "timezone": {"type": "string"},
                "group_by": {"type": "string"},
                "target_date": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "payout_file": {"type": "string"},
                "order_count": {"type": "integer"},
                "mismatch_count": {"type": "integer"},
                "total_difference": {"type": "string"},
                "error": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "service.RunListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Run"}},
                "total": {"type": "integer"}
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
	Title:            "Payout Reconciliation API",
	Description:      "Reconciles Shopify orders against Shopify Payments payout exports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
