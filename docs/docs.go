// Package docs holds the OpenAPI description served under /swagger.
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
        "/api/licenses/generate": {
            "post": {
                "description": "Assigns the oldest available license, optionally of one node type. A requester holds at most one generated license.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["licenses"],
                "summary": "Allocate a license",
                "parameters": [
                    {"description": "Requester and optional node type", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.generateLicenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.licenseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "no available license", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "requester already holds a generated license", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "claim contention, retry", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/licenses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["licenses"],
                "summary": "List licenses",
                "parameters": [
                    {"type": "string", "description": "available | generated | used", "name": "status", "in": "query"},
                    {"type": "string", "description": "switch | validation", "name": "nodeType", "in": "query"},
                    {"type": "string", "description": "holder", "name": "userId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.licenseListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Alias of /api/licenses/generate.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["licenses"],
                "summary": "Allocate a license",
                "parameters": [
                    {"description": "Requester and optional node type", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.generateLicenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.licenseResponse"}}
                }
            }
        },
        "/api/rewards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Reward summary",
                "parameters": [
                    {"type": "string", "description": "user", "name": "userId", "in": "query", "required": true},
                    {"type": "string", "description": "daily | weekly | monthly (default)", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Record a reward",
                "parameters": [
                    {"type": "string", "description": "replay protection key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "reward", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.recordRewardRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/stats": {
            "get": {
                "description": "Network figures other than activeNodes are simulated.",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Statistics",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
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
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [
                    {"description": "Operator details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/licenses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Provision licenses",
                "parameters": [
                    {"description": "node type and count (1..1000)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.provisionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.licenseListResponse"}}
                }
            }
        },
        "/admin/licenses/{id}/activate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Activate a license",
                "parameters": [
                    {"type": "string", "description": "license id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.licenseResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "license is not in generated status", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.License": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "licenseKey": {"type": "string"},
                "status": {"type": "string"},
                "nodeType": {"type": "string"},
                "stakeAmount": {"type": "number"},
                "userId": {"type": "string"},
                "createdAt": {"type": "string"},
                "generatedAt": {"type": "string"},
                "usedAt": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "data": {},
                "nodeType": {"type": "string"}
            }
        },
        "handler.generateLicenseRequest": {
            "type": "object",
            "required": ["userId"],
            "properties": {
                "userId": {"type": "string"},
                "nodeType": {"type": "string", "enum": ["switch", "validation"]}
            }
        },
        "handler.licenseResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/domain.License"},
                "message": {"type": "string"}
            }
        },
        "handler.licenseListResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.License"}},
                "count": {"type": "integer"}
            }
        },
        "handler.recordRewardRequest": {
            "type": "object",
            "required": ["userId", "minutesFarmed", "mntEarned"],
            "properties": {
                "userId": {"type": "string"},
                "minutesFarmed": {"type": "number"},
                "mntEarned": {"type": "number"},
                "period": {"type": "string", "enum": ["daily", "weekly", "monthly"]}
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
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "operator"]}
            }
        },
        "handler.provisionRequest": {
            "type": "object",
            "required": ["nodeType", "count"],
            "properties": {
                "nodeType": {"type": "string", "enum": ["switch", "validation"]},
                "count": {"type": "integer", "minimum": 1, "maximum": 1000}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Unity Nodes API",
	Description:      "License allocation, rewards and statistics for Unity Nodes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
