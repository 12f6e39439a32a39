package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Terreiro ERP API",
        "description": "Member registry, attendance and discipline for the house",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Members", "description": "Member registry"},
        {"name": "Sessions", "description": "Scheduled giras"},
        {"name": "Attendance", "description": "Attendance ledger and summaries"},
        {"name": "Discipline", "description": "Disciplinary ledger with automatic escalation"},
        {"name": "Admin", "description": "Manual triggers for the notification sweeps"}
    ],
    "paths": {
        "/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List members",
                "parameters": [
                    {"name": "standing", "in": "query", "type": "string", "enum": ["ACTIVE", "ON_LEAVE", "SUSPENDED", "TERMINATED"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1},
                    {"name": "pageSize", "in": "query", "type": "integer", "maximum": 200}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Members"],
                "summary": "Register member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMemberRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{id}": {
            "get": {
                "tags": ["Members"],
                "summary": "Get member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Members"],
                "summary": "Edit member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateMemberRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{id}/measures": {
            "get": {
                "tags": ["Members"],
                "summary": "List disciplinary measures of a member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/attendance-summary": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Per-member attendance summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/attendance-summary/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the attendance summary as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List the latest active sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Schedule session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Deactivate session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List the attendance of a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit the attendance of a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/discipline/measures": {
            "get": {
                "tags": ["Discipline"],
                "summary": "List the latest disciplinary measures",
                "parameters": [
                    {"name": "memberId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Discipline"],
                "summary": "Record a disciplinary measure",
                "description": "Warnings and suspensions escalate automatically once their thresholds are reached.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMeasureRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Member not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/alerts/attendance/run": {
            "post": {
                "tags": ["Admin"],
                "summary": "Run the attendance alert sweep now",
                "responses": {
                    "200": {"description": "Sweep report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/alerts/session-reminders/run": {
            "post": {
                "tags": ["Admin"],
                "summary": "Send reminders for upcoming sessions now",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Reminder report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateMemberRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string"},
                "level": {"type": "string", "enum": ["LEVEL_1_BEGINNER", "LEVEL_2_DEVELOPING", "LEVEL_3_WORKING", "LEVEL_4_LEADER"]},
                "standing": {"type": "string", "enum": ["ACTIVE", "ON_LEAVE", "SUSPENDED", "TERMINATED"]},
                "birthDate": {"type": "string", "format": "date-time"},
                "entryDate": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateMemberRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string"},
                "level": {"type": "string", "enum": ["LEVEL_1_BEGINNER", "LEVEL_2_DEVELOPING", "LEVEL_3_WORKING", "LEVEL_4_LEADER"]},
                "standing": {"type": "string", "enum": ["ACTIVE", "ON_LEAVE", "SUSPENDED", "TERMINATED"]},
                "birthDate": {"type": "string", "format": "date-time"},
                "entryDate": {"type": "string", "format": "date-time"}
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "required": ["date", "kind"],
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "kind": {"type": "string"},
                "notes": {"type": "string"},
                "leaderId": {"type": "integer"}
            }
        },
        "AttendanceEntry": {
            "type": "object",
            "required": ["memberId", "status"],
            "properties": {
                "memberId": {"type": "integer"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "EXCUSED_ABSENT", "ON_LEAVE"]},
                "note": {"type": "string"}
            }
        },
        "SubmitAttendanceRequest": {
            "type": "object",
            "required": ["records"],
            "properties": {
                "records": {"type": "array", "items": {"$ref": "#/definitions/AttendanceEntry"}}
            }
        },
        "RecordMeasureRequest": {
            "type": "object",
            "required": ["memberId", "kind", "reason"],
            "properties": {
                "memberId": {"type": "integer"},
                "kind": {"type": "string", "enum": ["WARNING", "SUSPENSION", "EXPULSION"]},
                "reason": {"type": "string"},
                "suspensionDays": {"type": "integer", "minimum": 1}
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
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
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
