package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CoursHub API",
        "description": "Role-based course distribution platform",
        "version": "1.0.0"
    },
    "basePath": "/api",
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
        {"name": "Auth", "description": "Authentication"},
        {"name": "Users", "description": "Account provisioning"},
        {"name": "Programs", "description": "Programs and curriculum"},
        {"name": "Groups", "description": "Student groups"},
        {"name": "Modules", "description": "Modules and teaching assignments"},
        {"name": "Courses", "description": "Teacher course management"},
        {"name": "Moderation", "description": "Admin course moderation"},
        {"name": "Students", "description": "Student catalogue and downloads"},
        {"name": "Dashboard", "description": "Admin dashboard"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated identity",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregate platform counts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List user accounts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a user account",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/admin/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user with its role profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update a user account",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete a user account",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/admin/programs": {
            "get": {
                "tags": ["Programs"],
                "summary": "List programs",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Programs"],
                "summary": "Create a program",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/admin/programs/{id}": {
            "get": {
                "tags": ["Programs"],
                "summary": "Get a program",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Programs"],
                "summary": "Update a program",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Programs"],
                "summary": "Delete a program",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Program still has groups"}
                }
            }
        },
        "/admin/programs/{id}/modules": {
            "get": {
                "tags": ["Programs"],
                "summary": "List the curriculum of a program",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Programs"],
                "summary": "Attach a module to the curriculum",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Attached"}}
            }
        },
        "/admin/programs/{id}/modules/{moduleId}": {
            "delete": {
                "tags": ["Programs"],
                "summary": "Detach a module from the curriculum",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Detached"}}
            }
        },
        "/admin/groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "List groups",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Groups"],
                "summary": "Create a group",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/admin/groups/{id}": {
            "get": {
                "tags": ["Groups"],
                "summary": "Get a group",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Groups"],
                "summary": "Update a group",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Groups"],
                "summary": "Delete a group",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Group still has students"}
                }
            }
        },
        "/admin/modules": {
            "get": {
                "tags": ["Modules"],
                "summary": "List modules",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Modules"],
                "summary": "Create a module",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/admin/modules/{id}": {
            "get": {
                "tags": ["Modules"],
                "summary": "Get a module",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Modules"],
                "summary": "Update a module",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Modules"],
                "summary": "Delete a module",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/admin/modules/{id}/teachers": {
            "get": {
                "tags": ["Modules"],
                "summary": "List teaching assignments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Modules"],
                "summary": "Assign a teacher to the module",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Assigned"}}
            }
        },
        "/admin/modules/{id}/teachers/{userId}": {
            "delete": {
                "tags": ["Modules"],
                "summary": "Remove a teacher from the module",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/admin/courses": {
            "get": {
                "tags": ["Moderation"],
                "summary": "List the full course catalogue",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/courses/pending": {
            "get": {
                "tags": ["Moderation"],
                "summary": "List courses awaiting validation",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/courses/{id}/validate": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Approve a course for student access",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Validated"}}
            }
        },
        "/admin/courses/{id}/reject": {
            "delete": {
                "tags": ["Moderation"],
                "summary": "Reject and remove a course upload",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Rejected"}}
            }
        },
        "/prof/modules": {
            "get": {
                "tags": ["Courses"],
                "summary": "List the modules the teacher is assigned to",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/prof/groups": {
            "get": {
                "tags": ["Courses"],
                "summary": "List the groups a course can be shared with",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/prof/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List all courses with their distribution",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Upload a course document",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/prof/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course with its distribution",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course metadata",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course and its stored file",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/prof/courses/{id}/groups": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace the groups a course is shared with",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/prof/courses/{id}/groups/{groupId}/window": {
            "put": {
                "tags": ["Courses"],
                "summary": "Set the availability window for one group",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Updated"}}
            }
        },
        "/student/profile": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the student's own profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/student/courses": {
            "get": {
                "tags": ["Students"],
                "summary": "List the courses visible right now",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/student/courses/search": {
            "get": {
                "tags": ["Students"],
                "summary": "Search the visible catalogue",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/student/courses/{id}/download": {
            "get": {
                "tags": ["Students"],
                "summary": "Download a course file",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Access denied"},
                    "500": {"description": "Stored file missing"}
                }
            }
        },
        "/student/notifications": {
            "get": {
                "tags": ["Students"],
                "summary": "List recently available material",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
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
