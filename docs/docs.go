// Package docs holds the Swagger description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/search": {
            "post": {
                "description": "Rank candidates by skills, experience, companies and departments. Free-text queries are interpreted by the LLM when configured, otherwise matched as keywords.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Search candidates",
                "parameters": [
                    {"type": "string", "description": "Caller id recorded in search history", "name": "X-User-ID", "in": "header"},
                    {"description": "Search request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/filters": {
            "get": {
                "description": "Most common skills, companies, departments and locations in the candidate pool.",
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Filter options",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Facets"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/colleagues": {
            "get": {
                "description": "Colleagues named in the candidate's work history, plus people with overlapping employment at the same company when include_potential is set.",
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Find colleagues",
                "parameters": [
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Include colleagues inferred from overlapping employment", "name": "include_potential", "in": "query"},
                    {"type": "integer", "description": "Minimum overlap in months", "name": "min_overlap_months", "in": "query"},
                    {"type": "integer", "description": "Maximum number of links", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/colleagues.Link"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/similar": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Find similar candidates",
                "parameters": [
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum number of results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/matching.Result"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/resume": {
            "post": {
                "description": "Upload a resume (PDF, DOCX, DOC, RTF, ODT or TXT). Text and skills are extracted and stored as a completed resume, and cached results that may mention the candidate are invalidated.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Upload resume",
                "parameters": [
                    {"type": "string", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Resume file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ResumeUploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/cache/invalidate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Invalidate cache",
                "parameters": [
                    {"description": "What to invalidate", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.InvalidateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.InvalidateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.InvalidateRequest": {
            "type": "object",
            "properties": {"candidate_id": {"type": "string"}, "namespace": {"type": "string", "enum": ["search", "colleagues", "filters", "candidate"]}}
        },
        "api.InvalidateResponse": {
            "type": "object",
            "properties": {"removed": {"type": "integer"}}
        },
        "api.ResumeUploadResponse": {
            "type": "object",
            "properties": {
                "resume_id": {"type": "string"},
                "candidate_id": {"type": "string"},
                "filename": {"type": "string"},
                "file_type": {"type": "string"},
                "file_size": {"type": "integer"},
                "text_length": {"type": "integer"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "cache_entries_invalidated": {"type": "integer"},
                "processing_time_ms": {"type": "integer"}
            }
        },
        "api.SearchRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "criteria": {"$ref": "#/definitions/matching.Criteria"},
                "available_only": {"type": "boolean"},
                "offset": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "colleagues.Link": {
            "type": "object",
            "properties": {
                "candidate_id": {"type": "string"},
                "colleague_id": {"type": "string"},
                "colleague_name": {"type": "string"},
                "company": {"type": "string"},
                "department": {"type": "string"},
                "overlap_months": {"type": "integer"},
                "relationship_type": {"type": "string", "enum": ["direct", "potential"]}
            }
        },
        "matching.Criteria": {
            "type": "object",
            "properties": {
                "skills": {"type": "array", "items": {"type": "string"}},
                "min_experience_years": {"type": "number"},
                "max_experience_years": {"type": "number"},
                "companies": {"type": "array", "items": {"type": "string"}},
                "departments": {"type": "array", "items": {"type": "string"}},
                "locations": {"type": "array", "items": {"type": "string"}},
                "keywords": {"type": "array", "items": {"type": "string"}}
            }
        },
        "matching.Highlights": {
            "type": "object",
            "properties": {
                "current_position": {"type": "string"},
                "current_company": {"type": "string"},
                "location": {"type": "string"},
                "experience_years": {"type": "number"},
                "matched_skills": {"type": "array", "items": {"type": "string"}},
                "matched_companies": {"type": "array", "items": {"type": "string"}},
                "matched_departments": {"type": "array", "items": {"type": "string"}},
                "matched_keywords": {"type": "array", "items": {"type": "string"}}
            }
        },
        "matching.Result": {
            "type": "object",
            "properties": {
                "candidate_id": {"type": "string"},
                "candidate_name": {"type": "string"},
                "resume_id": {"type": "string"},
                "score": {"type": "number"},
                "match_reasons": {"type": "array", "items": {"type": "string"}},
                "highlights": {"$ref": "#/definitions/matching.Highlights"}
            }
        },
        "search.Facet": {
            "type": "object",
            "properties": {"value": {"type": "string"}, "count": {"type": "integer"}}
        },
        "search.Facets": {
            "type": "object",
            "properties": {
                "skills": {"type": "array", "items": {"$ref": "#/definitions/search.Facet"}},
                "companies": {"type": "array", "items": {"$ref": "#/definitions/search.Facet"}},
                "departments": {"type": "array", "items": {"$ref": "#/definitions/search.Facet"}},
                "locations": {"type": "array", "items": {"$ref": "#/definitions/search.Facet"}},
                "total_candidates": {"type": "integer"}
            }
        },
        "search.Response": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/matching.Result"}},
                "total": {"type": "integer"},
                "criteria": {"$ref": "#/definitions/matching.Criteria"},
                "interpretation": {"type": "string"},
                "reasoning": {"type": "string"},
                "cached": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Talent Search API",
	Description:      "Candidate matching, colleague discovery and similarity search over parsed resumes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
