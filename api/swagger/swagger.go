package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Classfolio Record API",
        "description": "Academic record engine: rosters, attendance, assessments and averages",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Roster", "description": "Course roster ordering and list numbers"},
        {"name": "Grades", "description": "Assessments, marks and averages"},
        {"name": "Attendance", "description": "Sessions and presence marks"},
        {"name": "Homeroom", "description": "Homeroom teacher assignment"}
    ],
    "paths": {
        "/courses/{courseId}/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Get the ordered course roster",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/roster/auto-number": {
            "post": {
                "tags": ["Roster"],
                "summary": "Propose list numbers following display order",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/roster/list-numbers": {
            "put": {
                "tags": ["Roster"],
                "summary": "Apply a batch of list-number edits",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/ListNumberUpdate"}}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/assessments": {
            "post": {
                "tags": ["Grades"],
                "summary": "Create an assessment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssessmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessments/{id}": {
            "put": {
                "tags": ["Grades"],
                "summary": "Update an assessment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssessmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Grades"],
                "summary": "Delete an assessment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses/{courseId}/subjects/{subjectId}/assessments": {
            "get": {
                "tags": ["Grades"],
                "summary": "List assessments of a course subject",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks": {
            "post": {
                "tags": ["Grades"],
                "summary": "Record a student's mark on an assessment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/subjects/{subjectId}/sheet": {
            "get": {
                "tags": ["Grades"],
                "summary": "Grade sheet for a course subject",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/subjects/{subjectId}/students/{studentId}/averages": {
            "get": {
                "tags": ["Grades"],
                "summary": "Term and final averages for one student",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/averages": {
            "get": {
                "tags": ["Grades"],
                "summary": "Cohort averages per subject of a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Resolve the session for a meeting, creating it when absent",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Session with its ordered roster and marks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/sessions/{id}/marks": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Record presence marks for a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/AttendanceMarkUpdate"}}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses/{courseId}/subjects/{subjectId}/students/{studentId}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance counters for one student",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/homeroom": {
            "get": {
                "tags": ["Homeroom"],
                "summary": "Current homeroom teacher and assignment history",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Homeroom"],
                "summary": "Replace the homeroom teacher of a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignHomeroomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ListNumberUpdate": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"},
                "number": {"type": "integer", "minimum": 1, "maximum": 999}
            }
        },
        "CreateAssessmentRequest": {
            "type": "object",
            "required": ["course_id", "subject_id", "term"],
            "properties": {
                "course_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "term": {"type": "string", "enum": ["DIAGNOSTIC", "FIRST", "SECOND"]},
                "title": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "weight": {"type": "number"}
            }
        },
        "UpdateAssessmentRequest": {
            "type": "object",
            "required": ["term", "title"],
            "properties": {
                "term": {"type": "string", "enum": ["DIAGNOSTIC", "FIRST", "SECOND"]},
                "title": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "weight": {"type": "number"}
            }
        },
        "RecordMarkRequest": {
            "type": "object",
            "required": ["assessment_id", "student_id", "value"],
            "properties": {
                "assessment_id": {"type": "string"},
                "student_id": {"type": "string"},
                "value": {"type": "number", "minimum": 1.0, "maximum": 7.0}
            }
        },
        "SessionRequest": {
            "type": "object",
            "required": ["course_id", "subject_id", "date", "block"],
            "properties": {
                "course_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "block": {"type": "string"}
            }
        },
        "AttendanceMarkUpdate": {
            "type": "object",
            "required": ["student_id", "status"],
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "JUSTIFIED"]}
            }
        },
        "AssignHomeroomRequest": {
            "type": "object",
            "required": ["teacher_id"],
            "properties": {
                "course_id": {"type": "string"},
                "teacher_id": {"type": "string"}
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
