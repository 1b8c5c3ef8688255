// Package docs holds the generated swagger definition served under /docs.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server info",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/camera": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["camera"],
                "summary": "Start or stop monitoring",
                "parameters": [
                    {
                        "description": "Control action",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.CameraControlRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/cameras": {
            "get": {
                "produces": ["application/json"],
                "tags": ["camera"],
                "summary": "List cameras",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CameraStatus"}}}
                }
            }
        },
        "/analytics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Analytics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AnalyticsSnapshot"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/analytics/reset": {
            "post": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Reset analytics counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/alerts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Recent persisted alerts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AlertRecord"}}}
                }
            }
        },
        "/feed/ws": {
            "get": {
                "tags": ["feed"],
                "summary": "Live feed websocket",
                "parameters": [
                    {"type": "string", "name": "channels", "in": "query"},
                    {"type": "string", "name": "policy", "in": "query"},
                    {"type": "integer", "name": "backlog", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/feed/sessions/{session_id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["feed"],
                "summary": "Unsubscribe viewer session",
                "parameters": [
                    {"type": "string", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/system/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Monitoring state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StateResponse"}}
                }
            }
        },
        "/system/self-destruct": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Self-destruct",
                "parameters": [
                    {
                        "description": "Confirmation",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.SelfDestructRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handlers.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "models.CameraControlRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["start", "stop"]}
            }
        },
        "models.SelfDestructRequest": {
            "type": "object",
            "properties": {
                "confirm": {"type": "boolean"}
            }
        },
        "models.CameraStatus": {
            "type": "object",
            "properties": {
                "camera_id": {"type": "string"},
                "source": {"type": "string"},
                "active": {"type": "boolean"},
                "last_sequence": {"type": "integer"},
                "last_frame_time": {"type": "string"}
            }
        },
        "models.AnalyticsSnapshot": {
            "type": "object",
            "properties": {
                "total_frames_processed": {"type": "integer"},
                "total_alerts_raised": {"type": "integer"},
                "degraded_classifications": {"type": "integer"},
                "rejected_frames": {"type": "integer"},
                "alert_rate": {"type": "number"},
                "per_camera": {"type": "object"},
                "taken_at": {"type": "string"}
            }
        },
        "models.AlertRecord": {
            "type": "object",
            "properties": {
                "alert_id": {"type": "integer"},
                "camera_id": {"type": "string"},
                "timestamp": {"type": "string"},
                "result": {"type": "object"}
            }
        },
        "models.StateResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Vigil Monitoring API",
	Description:      "Local security-camera monitoring server with live feed fan-out, motion analytics and alert persistence",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
