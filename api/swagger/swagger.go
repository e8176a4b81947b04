package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lost ID API",
        "description": "Campus lost-ID recovery: admins register found IDs, students claim them.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CookieAuth": {"type": "apiKey", "name": "jwt", "in": "cookie"}
    },
    "tags": [
        {"name": "Auth", "description": "Student and admin sessions"},
        {"name": "Lost IDs", "description": "Catalogue of found identity documents"},
        {"name": "Claims", "description": "Claim submission and lifecycle"},
        {"name": "Statistics", "description": "Admin dashboards and reports"},
        {"name": "Ops", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Database reachable"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Prometheus exposition"}}
            }
        },
        "/uploads/{filename}": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Fetch a lost-ID image through a signed link",
                "parameters": [
                    {"name": "filename", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Image bytes"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Image not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email or student number taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Student login",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Session cookie set", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/admin/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Session cookie set", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Account inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Clear the session cookie",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/users/lost-ids": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Browse available lost IDs",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "id_type", "in": "query", "type": "string", "enum": ["all", "student_id", "government_issued", "other"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/users/lost-ids/{id}": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Get an available lost ID",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LostItem"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/users/lost-ids/search/suggestions": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Name and student number suggestions",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "q", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/users/lost-ids/meta/id-types": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Available lost IDs per type",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/users/claims": {
            "post": {
                "tags": ["Claims"],
                "summary": "Submit a claim",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitClaimRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Lost ID not available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate claim", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/users/claims/my-claims": {
            "get": {
                "tags": ["Claims"],
                "summary": "List the caller's claims",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/users/claims/{id}": {
            "get": {
                "tags": ["Claims"],
                "summary": "Get one of the caller's claims",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Claims"],
                "summary": "Cancel a pending claim",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "403": {"description": "Not the claimant", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Claim is no longer pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/dashboard": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Dashboard counters",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/trends": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Monthly lost-ID and claim trends",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "months", "in": "query", "type": "integer", "minimum": 1, "maximum": 24}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/stats/id-types": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Recovery rate per ID type",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "period", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/stats/locations": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Top found locations",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/stats/processing-times": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Average claim processing times",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/activity": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Recent lost-ID and claim activity",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "limit", "in": "query", "type": "integer", "maximum": 100}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/health": {
            "get": {
                "tags": ["Statistics"],
                "summary": "System health summary",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "responses": {
                    "200": {"description": "Healthy or warning", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Unhealthy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/export/csv": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Export claims or lost IDs",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["claims", "lost_ids"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No rows in range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/lost-ids": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "List all lost IDs",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "available", "claimed", "returned"]},
                    {"name": "id_type", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Lost IDs"],
                "summary": "Register a found ID",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "student_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "student_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "id_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "found_date", "in": "formData", "required": true, "type": "string", "format": "date"},
                    {"name": "found_location", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "image", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/lost-ids/{id}": {
            "get": {
                "tags": ["Lost IDs"],
                "summary": "Lost ID with claim history",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Lost IDs"],
                "summary": "Update a lost ID",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Lost IDs"],
                "summary": "Delete a lost ID without pending or approved claims",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "409": {"description": "Pending or approved claims exist", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/claims": {
            "get": {
                "tags": ["Claims"],
                "summary": "List claims",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/claims/stats/overview": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Claim counts for a period",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "period", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/claims/bulk/approve": {
            "post": {
                "tags": ["Claims"],
                "summary": "Approve several pending claims at once",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkApproveRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A claim or its lost ID is not eligible", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/claims/{id}": {
            "get": {
                "tags": ["Claims"],
                "summary": "Claim detail",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/claims/{id}/approve": {
            "post": {
                "tags": ["Claims"],
                "summary": "Approve a pending claim",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/ClaimActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/claims/{id}/reject": {
            "post": {
                "tags": ["Claims"],
                "summary": "Reject a pending claim",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/ClaimActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/claims/{id}/collect": {
            "post": {
                "tags": ["Claims"],
                "summary": "Mark an approved claim collected",
                "security": [{"BearerAuth": []}, {"CookieAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/ClaimActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "required": ["student_id", "first_name", "last_name", "email", "phone", "password"],
            "properties": {
                "student_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SubmitClaimRequest": {
            "type": "object",
            "required": ["lost_id_id", "verification_details"],
            "properties": {
                "lost_id_id": {"type": "string", "format": "uuid"},
                "verification_details": {"type": "string", "minLength": 10, "maxLength": 2000}
            }
        },
        "ClaimActionRequest": {
            "type": "object",
            "properties": {
                "admin_notes": {"type": "string", "maxLength": 1000}
            }
        },
        "BulkApproveRequest": {
            "type": "object",
            "required": ["claim_ids"],
            "properties": {
                "claim_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}},
                "admin_notes": {"type": "string"}
            }
        },
        "LostItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "id_type": {"type": "string", "enum": ["student_id", "government_issued", "other"]},
                "found_date": {"type": "string", "format": "date-time"},
                "found_location": {"type": "string"},
                "description": {"type": "string"},
                "image_url": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "claimed", "returned"]}
            }
        },
        "Claim": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "lost_id_id": {"type": "string"},
                "claimant_student_id": {"type": "string"},
                "verification_details": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected", "collected"]},
                "claim_date": {"type": "string", "format": "date-time"},
                "admin_notes": {"type": "string"},
                "processed_by": {"type": "string"},
                "processed_at": {"type": "string", "format": "date-time"},
                "collection_date": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
