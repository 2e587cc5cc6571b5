package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Scheduler API",
        "description": "Exam timetabling and seating assignment service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Datasets", "description": "Enrollment and room dataset uploads"},
        {"name": "Schedules", "description": "Schedule generation, seating, analytics"},
        {"name": "Reports", "description": "Asynchronous PDF reports"}
    ],
    "paths": {
        "/datasets/enrollment": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Upload enrollment CSV",
                "consumes": ["multipart/form-data", "text/csv"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/rooms": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Upload rooms CSV or JSON",
                "consumes": ["multipart/form-data", "text/csv", "application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/sample": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Generate synthetic enrollment and rooms datasets",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateSampleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}": {
            "get": {
                "tags": ["Datasets"],
                "summary": "Inspect a stored dataset",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate an exam schedule with seating",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Fetch a generated schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/seating": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Fetch seat charts",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/seating/export": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Export seating as room-grouped JSON",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/seating.csv": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Download seating assignments as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV content"}
                }
            }
        },
        "/schedules/{id}/analytics": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Fetch utilization analytics",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/report": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a PDF report for a schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Check report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download finished report PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF content"}
                }
            }
        }
    },
    "definitions": {
        "GenerateSampleRequest": {
            "type": "object",
            "properties": {
                "students": {"type": "integer"},
                "coursesPerSemester": {"type": "integer"},
                "rooms": {"type": "integer"},
                "seed": {"type": "integer"}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "enrollmentDatasetId": {"type": "string"},
                "roomDatasetId": {"type": "string"},
                "selectedCourses": {"type": "array", "items": {"type": "string"}},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "slotsPerDay": {"type": "integer"},
                "slotDurationHours": {"type": "number"},
                "efficiency": {"type": "number"},
                "seed": {"type": "integer"}
            },
            "required": ["enrollmentDatasetId", "roomDatasetId", "selectedCourses", "startDate"]
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
