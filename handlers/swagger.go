package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>coursepub — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the upload pipeline's endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "coursepub", "version": "v0.1.0" },
  "paths": {
    "/api/upload": {
      "post": {
        "summary": "Publish or replace a course markdown document",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"courseId":{"type":"string"},"format":{"type":"string"},"markdownText":{"type":"string"},"overwrite":{"type":"boolean"}},"required":["markdownText"]}}}},
        "responses": {
          "200": { "description": "persisted course record" },
          "400": { "description": "validation or front-matter schema errors" },
          "409": { "description": "document exists and overwrite was not set" },
          "500": { "description": "storage failure; payload flags orphaned-blob degraded states" }
        }
      }
    },
    "/api/courses": {
      "get": { "summary": "List persisted course records", "responses": { "200": { "description": "record list" } } }
    },
    "/api/courses/{courseId}/{format}": {
      "get": { "summary": "Get one course record", "responses": { "200": { "description": "record" }, "404": { "description": "unknown identity" } } }
    },
    "/api/courses/{courseId}/{format}/content": {
      "get": { "summary": "Get the stored markdown body", "responses": { "200": { "description": "markdown" }, "404": { "description": "unknown identity" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
