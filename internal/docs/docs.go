// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new clerk", "responses": {"201": {"description": "Clerk registered and tokens issued"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "Authenticated"}, "423": {"description": "Account locked"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh tokens", "responses": {"200": {"description": "New tokens"}}}},
        "/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Get profile", "responses": {"200": {"description": "Clerk profile"}}}},
        "/fee-schedules": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["fee-schedules"], "summary": "List fee schedules", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["fee-schedules"], "summary": "Set a year's fee", "responses": {"200": {"description": "OK"}}}
        },
        "/fee-schedules/{year}": {"get": {"security": [{"BearerAuth": []}], "tags": ["fee-schedules"], "summary": "Get a year's fee schedule", "parameters": [{"type": "integer", "name": "year", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not configured"}}}},
        "/fee-schedules/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["fee-schedules"], "summary": "Delete a fee schedule", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}},
        "/people": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "List people", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "Create a person", "responses": {"201": {"description": "Created"}}}
        },
        "/people/intake": {"post": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "Member intake", "responses": {"201": {"description": "Created"}}}},
        "/people/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "Get a person", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "Delete a person", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Has history"}}}
        },
        "/people/{id}/payments": {"get": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "List a person's payments", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/people/{id}/assessment-options": {"get": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "Assessment options for a person", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "year", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/people/{id}/ownerships": {"get": {"security": [{"BearerAuth": []}], "tags": ["people"], "summary": "List a person's ownerships", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/properties": {"post": {"security": [{"BearerAuth": []}], "tags": ["properties"], "summary": "Create a property", "responses": {"201": {"description": "Created"}}}},
        "/properties/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["properties"], "summary": "Get a property", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["properties"], "summary": "Delete a property", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/properties/{id}/active": {"put": {"security": [{"BearerAuth": []}], "tags": ["properties"], "summary": "Set property active flag", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/ownerships": {"post": {"security": [{"BearerAuth": []}], "tags": ["ownerships"], "summary": "Add an ownership", "responses": {"201": {"description": "Created"}}}},
        "/ownerships/{id}/end": {"put": {"security": [{"BearerAuth": []}], "tags": ["ownerships"], "summary": "End an ownership", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/payments": {"post": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Record a payment", "responses": {"201": {"description": "Created"}}}},
        "/payments/pending/allocate": {"post": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Apply pending payments", "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}/allocate": {"post": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Apply a recorded payment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already allocated"}}}},
        "/payments/{id}/allocations": {"get": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Payment allocations", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/assessments/rollover": {"post": {"security": [{"BearerAuth": []}], "tags": ["assessments"], "summary": "Roll over assessments", "responses": {"200": {"description": "OK"}}}},
        "/utility-notices": {"get": {"security": [{"BearerAuth": []}], "tags": ["utility-notices"], "summary": "List utility notices", "responses": {"200": {"description": "OK"}}}},
        "/utility-notices/import": {"post": {"security": [{"BearerAuth": []}], "tags": ["utility-notices"], "summary": "Import utility notices", "responses": {"201": {"description": "Created"}}}},
        "/utility-notices/{id}/match": {"put": {"security": [{"BearerAuth": []}], "tags": ["utility-notices"], "summary": "Match a utility notice", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Notice already paid"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fire District Dues API",
	Description:      "Membership dues for a volunteer fire district: yearly property assessments, payments and how they are applied.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
