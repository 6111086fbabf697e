// Package docs holds the OpenAPI document served by gin-swagger.
// Regenerate with: swag init -g cmd/faqchat/main.go -o docs
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
        "/api/chat": {
            "post": {
                "description": "Rewrites the message, retrieves the nearest FAQ entries and returns the stored answer when similar enough.\nSupports idempotency via the Idempotency-Key header (same key → same result).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Answer a question from the FAQ",
                "operationId": "postChat",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "Caller identity (optional)", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "example": "7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab", "description": "Idempotency key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Chat message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChatRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ChatResponse"},
                        "headers": {
                            "Idempotency-Replayed": {"type": "string", "description": "true when served from a stored result"},
                            "X-Chat-Log-ID": {"type": "string", "description": "Persisted log id"}
                        }
                    },
                    "400": {"description": "Empty or too long message", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/logs": {
            "get": {
                "description": "Returns answered chat requests, newest first. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Logs"],
                "summary": "List chat logs (paginated)",
                "operationId": "listLogs",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 50, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ListLogsResponse"},
                        "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}
                    },
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/logs/{id}/feedback": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Feedback"],
                "summary": "Feedback counts for an answer",
                "operationId": "feedbackSummary",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Chat log ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FeedbackSummaryResponse"}},
                    "404": {"description": "Chat log not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Records positive (+1) or negative (-1) feedback for a chat log. One rating per user and log.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Feedback"],
                "summary": "Leave feedback on an answer",
                "operationId": "leaveFeedback",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "Caller identity (optional)", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "format": "uuid", "description": "Chat log ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Feedback payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LeaveFeedbackRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Chat log not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Feedback already exists", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/logs": {
            "get": {
                "description": "Returns the 50 most recent chat logs as a bare JSON array.",
                "produces": ["application/json"],
                "tags": ["Logs"],
                "summary": "Most recent chat logs",
                "operationId": "recentLogs",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ChatLog"}}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ChatLog": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "question": {"type": "string"},
                "rewritten_query": {"type": "string"},
                "answer": {"type": "string"},
                "source_question": {"type": "string"},
                "score": {"type": "number"},
                "found": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Perso.ai는 어떤 서비스야?"}
            }
        },
        "handlers.ChatResponse": {
            "type": "object",
            "properties": {
                "found": {"type": "boolean", "example": true},
                "answer": {"type": "string", "example": "Perso.ai는 AI 기반 영상 더빙 및 번역 서비스입니다."},
                "sourceQuestion": {"type": "string", "example": "Perso.ai는 어떤 서비스인가요?"},
                "score": {"type": "number", "example": 0.912}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "bad_request"},
                "error": {"type": "string", "example": "message 필드가 비어 있습니다."}
            }
        },
        "handlers.FeedbackSummaryResponse": {
            "type": "object",
            "properties": {
                "up": {"type": "integer", "example": 3},
                "down": {"type": "integer", "example": 1}
            }
        },
        "handlers.LeaveFeedbackRequest": {
            "type": "object",
            "required": ["value"],
            "properties": {
                "value": {"type": "integer", "enum": [-1, 1], "example": 1}
            }
        },
        "handlers.ListLogsResponse": {
            "type": "object",
            "properties": {
                "logs": {"type": "array", "items": {"$ref": "#/definitions/domain.ChatLog"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
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
	Title:            "FAQ Chat API",
	Description:      "Answers questions from a curated Q&A set via retrieval over a vector index.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
