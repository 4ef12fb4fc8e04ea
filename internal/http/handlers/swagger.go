package handlers

import "github.com/gin-gonic/gin"

const swaggerUIHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>TaskHub API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>
      body { margin: 0; background: #f8fafc; }
      #swagger-ui { max-width: 1200px; margin: 0 auto; }
    </style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: "/docs/openapi.yaml",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
        layout: "BaseLayout"
      });
    </script>
  </body>
</html>`

const openAPIYAML = `openapi: 3.0.3
info:
  title: TaskHub API
  description: Task management backend with JWT bearer authentication.
  version: 1.0.0
paths:
  /api/auth/register:
    post:
      summary: Register a new user
      responses:
        "201": { description: User registered, token issued }
        "400": { description: Invalid input }
        "422": { description: Username or email already exists }
  /api/auth/login:
    post:
      summary: Login
      responses:
        "200": { description: Login successful, token issued }
        "401": { description: Invalid credentials }
  /api/tasks:
    get:
      summary: List the authenticated user's tasks
      security: [{ bearerAuth: [] }]
      responses:
        "200": { description: Task list }
        "401": { description: Unauthorized }
    post:
      summary: Create a task
      security: [{ bearerAuth: [] }]
      responses:
        "201": { description: Task created }
        "400": { description: Invalid input }
        "401": { description: Unauthorized }
  /api/tasks/{id}:
    get:
      summary: Get a task by id
      security: [{ bearerAuth: [] }]
      responses:
        "200": { description: Task }
        "404": { description: Not found }
        "401": { description: Unauthorized }
    put:
      summary: Update a task
      security: [{ bearerAuth: [] }]
      responses:
        "200": { description: Task updated }
        "400": { description: Invalid input }
        "404": { description: Not found }
        "401": { description: Unauthorized }
    delete:
      summary: Delete a task
      security: [{ bearerAuth: [] }]
      responses:
        "204": { description: Task deleted }
        "404": { description: Not found }
        "401": { description: Unauthorized }
  /api/tasks/{id}/status:
    put:
      summary: Update only the status of a task
      security: [{ bearerAuth: [] }]
      responses:
        "200": { description: Status updated }
        "400": { description: Invalid status }
        "404": { description: Not found }
        "401": { description: Unauthorized }
  /api/tasks/{id}/complete:
    patch:
      summary: Mark a task as completed
      security: [{ bearerAuth: [] }]
      responses:
        "200": { description: Task completed }
        "404": { description: Not found }
        "401": { description: Unauthorized }
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
`

func SwaggerUI(ctx *gin.Context) {
	ctx.Data(200, "text/html; charset=utf-8", []byte(swaggerUIHTML))
}

func OpenAPISpec(ctx *gin.Context) {
	ctx.Data(200, "application/yaml; charset=utf-8", []byte(openAPIYAML))
}
