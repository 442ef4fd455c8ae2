// Package docs 注册 swagger 文档，供 /swagger 路由读取。
//
// 处理器上的注解可用 swag init -g cmd/api-gateway/main.go 重新生成完整文档，
// 生成结果会覆盖本文件。
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/v1/auth/login": {
            "post": {
                "tags": ["认证"],
                "summary": "邮箱密码登录",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}
            }
        },
        "/api/v1/platform/owners": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["平台"],
                "summary": "开通店主账号",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ProvisionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ProvisionResult"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/PlainError"}}
                }
            }
        },
        "/api/v1/platform/owners/repair": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["平台"],
                "summary": "修复店主与身份账号的关联",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/public/restaurants/{domain}": {
            "get": {
                "tags": ["餐厅"],
                "summary": "按域名查询营业中的餐厅",
                "parameters": [{"in": "path", "name": "domain", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}
            }
        },
        "/api/v1/orders": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["订单"],
                "summary": "创建订单",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}}
            },
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["订单"],
                "summary": "订单列表",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}
            }
        },
        "/api/v1/orders/{id}/status": {
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["订单"],
                "summary": "更新订单状态",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}
            }
        }
    },
    "definitions": {
        "Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "PlainError": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "ProvisionRequest": {
            "type": "object",
            "required": ["email", "full_name", "subscription_plan", "payment_id", "subscription_amount", "subscription_expires_at"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "subscription_plan": {"type": "string"},
                "payment_id": {"type": "string"},
                "subscription_amount": {"type": "string", "example": "49.90"},
                "subscription_expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "ProvisionResult": {
            "type": "object",
            "properties": {
                "owner_id": {"type": "integer"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo 文档元信息，可在启动时修改 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Kitchen POS API",
	Description:      "多租户餐厅收银管理后台",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
