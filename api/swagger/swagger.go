package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bhoomi Land Registry API",
        "description": "Land-records administration portal: property registry, document store, mutation workflow, and public verification",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Accounts and sessions"},
        {"name": "Properties", "description": "Property registry"},
        {"name": "Documents", "description": "Document store"},
        {"name": "Mutations", "description": "Ownership-transfer workflow"},
        {"name": "Verification", "description": "Public record lookups"},
        {"name": "Reports", "description": "Administration reporting"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a citizen account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username, email, or Aadhaar already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the active refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Fetch the authenticated profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/properties": {
            "get": {
                "tags": ["Properties"],
                "summary": "List properties",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "owner_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Properties"],
                "summary": "Register a land parcel",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePropertyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Survey number already registered"}
                }
            }
        },
        "/properties/{id}": {
            "get": {
                "tags": ["Properties"],
                "summary": "Fetch a property",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/properties/{id}/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents attached to a property",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document (10 MiB limit)",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "document_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Unrecognised type or file too large"}
                }
            }
        },
        "/documents/{id}/grant": {
            "post": {
                "tags": ["Documents"],
                "summary": "Issue a signed download link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Signed token"}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a document via signed token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/mutations": {
            "get": {
                "tags": ["Mutations"],
                "summary": "List mutations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "property_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Mutations"],
                "summary": "Request an ownership transfer",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMutationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid reason or no-op transfer"}
                }
            }
        },
        "/mutations/{id}": {
            "get": {
                "tags": ["Mutations"],
                "summary": "Fetch a mutation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Mutations"],
                "summary": "Withdraw a pending mutation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "409": {"description": "Not pending"}
                }
            }
        },
        "/mutations/{id}/approve": {
            "post": {
                "tags": ["Mutations"],
                "summary": "Approve a pending mutation (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveMutationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved"},
                    "409": {"description": "Already reviewed or owner changed"}
                }
            }
        },
        "/mutations/{id}/reject": {
            "post": {
                "tags": ["Mutations"],
                "summary": "Reject a pending mutation (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectMutationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/mutations/{id}/certificate": {
            "get": {
                "tags": ["Mutations"],
                "summary": "Download the mutation certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "404": {"description": "Certificate not ready"}
                }
            }
        },
        "/verify/property": {
            "get": {
                "tags": ["Verification"],
                "summary": "Verify a property by survey number",
                "parameters": [
                    {"name": "survey_number", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verified"},
                    "404": {"description": "No property registered"}
                }
            }
        },
        "/verify/document/{hash}": {
            "get": {
                "tags": ["Verification"],
                "summary": "Verify a document by SHA-256 content hash",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verified"},
                    "404": {"description": "No document matches"}
                }
            }
        },
        "/verify/mutation/{transactionId}": {
            "get": {
                "tags": ["Verification"],
                "summary": "Verify a mutation by transaction id",
                "parameters": [
                    {"name": "transactionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verified"},
                    "404": {"description": "No mutation matches"}
                }
            }
        },
        "/reports/summary": {
            "get": {
                "tags": ["Reports"],
                "summary": "Registry-wide summary counts (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports/mutations/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the mutation register as CSV (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "property_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "CSV stream"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password", "full_name", "aadhaar_number"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "aadhaar_number": {"type": "string", "description": "12-digit Aadhaar number"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreatePropertyRequest": {
            "type": "object",
            "required": ["survey_number", "address", "area_sqft"],
            "properties": {
                "survey_number": {"type": "string"},
                "address": {"type": "string"},
                "area_sqft": {"type": "number"},
                "geo_latitude": {"type": "number"},
                "geo_longitude": {"type": "number"}
            }
        },
        "CreateMutationRequest": {
            "type": "object",
            "required": ["property_id", "new_owner_id", "reason"],
            "properties": {
                "property_id": {"type": "string"},
                "new_owner_id": {"type": "string"},
                "reason": {"type": "string", "enum": ["Sale", "Inheritance", "Gift Deed", "Family Partition", "Court Order", "Other"]},
                "reason_detail": {"type": "string"}
            }
        },
        "ApproveMutationRequest": {
            "type": "object",
            "required": ["property_value"],
            "properties": {
                "property_value": {"type": "number", "description": "Declared value used to derive stamp duty and registration fee"}
            }
        },
        "RejectMutationRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
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
