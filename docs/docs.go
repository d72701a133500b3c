// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/operations/article": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Generates article text from a prompt. length is forwarded as the token budget.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Generate an article",
                "parameters": [
                    {"description": "Article prompt", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ArticleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/operations/blog-title": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Generate blog titles",
                "parameters": [
                    {"description": "Blog title prompt", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.BlogTitleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/operations/image": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Runs the image provider chain. When every provider fails a placeholder image is returned instead.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Generate an image",
                "parameters": [
                    {"description": "Image prompt", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ImageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/operations/bg-removal": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Remove an image background",
                "parameters": [
                    {"type": "file", "description": "Image (max 10MB)", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/operations/object-removal": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "object must be a single word, e.g. \"car\".",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Remove an object from an image",
                "parameters": [
                    {"type": "file", "description": "Image (max 10MB)", "name": "image", "in": "formData", "required": true},
                    {"type": "string", "description": "Object to remove", "name": "object", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/operations/resume-review": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Review a resume",
                "parameters": [
                    {"type": "file", "description": "Resume PDF (max 5MB)", "name": "resume", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/creations": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["creations"],
                "summary": "List the caller's creations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CreationsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/creations/published": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Newest first.",
                "produces": ["application/json"],
                "tags": ["creations"],
                "summary": "List published creations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CreationsResponse"}}
                }
            }
        },
        "/creations/{id}/toggle-like": {
            "post": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["creations"],
                "summary": "Like or unlike a creation",
                "parameters": [
                    {"type": "string", "description": "Creation ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ToggleLikeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ArticleRequest": {
            "type": "object",
            "required": ["prompt"],
            "properties": {
                "prompt": {"type": "string"},
                "length": {"type": "integer"}
            }
        },
        "models.BlogTitleRequest": {
            "type": "object",
            "required": ["prompt"],
            "properties": {
                "prompt": {"type": "string"}
            }
        },
        "models.ImageRequest": {
            "type": "object",
            "required": ["prompt"],
            "properties": {
                "prompt": {"type": "string"},
                "publish": {"type": "boolean"}
            }
        },
        "models.OperationResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "string"},
                "content": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "models.CreationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "prompt": {"type": "string"},
                "content": {"type": "string"},
                "type": {"type": "string"},
                "publish": {"type": "boolean"},
                "likes": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.CreationsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "creations": {"type": "array", "items": {"$ref": "#/definitions/models.CreationResponse"}}
            }
        },
        "models.ToggleLikeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "liked": {"type": "boolean"},
                "likes": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "uptime": {"type": "string"},
                "artifact_backend": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "AI Tools Backend API",
	Description:      "Text and image generation operations with per-user entitlements and a shared creations ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
