package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursepub/coursepub/internal/course/service"
	"github.com/coursepub/coursepub/internal/frontmatter"
	"github.com/coursepub/coursepub/pkg/logger"
	"github.com/coursepub/coursepub/pkg/metrics"
)

// UploadHandler exposes the content upload pipeline over HTTP.
type UploadHandler struct {
	svc *service.Service
	now func() time.Time
}

func NewUploadHandler(svc *service.Service) *UploadHandler {
	return &UploadHandler{svc: svc, now: time.Now}
}

// Register mounts the upload and course read endpoints.
func (h *UploadHandler) Register(r *gin.Engine) {
	r.POST("/api/upload", h.Upload)
	r.GET("/api/courses", h.ListCourses)
	r.GET("/api/courses/:courseId/:format", h.GetCourse)
	r.GET("/api/courses/:courseId/:format/content", h.GetCourseContent)
}

type uploadRequest struct {
	CourseID     string `json:"courseId"`
	Format       string `json:"format"`
	MarkdownText string `json:"markdownText"`
	Overwrite    bool   `json:"overwrite"`
}

// Upload validates, enriches, and persists a course markdown document.
// Validation and schema failures are 400s with per-field messages; overwrite
// conflicts are 409s; storage failures are 500s, with the orphaned-blob
// degraded state flagged distinctly in the payload.
func (h *UploadHandler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"request body must be JSON: " + err.Error()}})
		return
	}
	if strings.TrimSpace(req.MarkdownText) == "" {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"markdownText must not be empty"}})
		return
	}

	doc, err := frontmatter.Process([]byte(req.MarkdownText), h.now())
	if err != nil {
		var se *frontmatter.SchemaError
		if errors.As(err, &se) {
			metrics.UploadsTotal.WithLabelValues("schema_error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"errors": se.Messages()})
			return
		}
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	courseID, format, mismatches := resolveIdentity(&req, &doc.Meta)
	if len(mismatches) > 0 {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"errors": mismatches})
		return
	}

	rec, err := h.svc.Persist(c.Request.Context(), courseID, format, doc, req.Overwrite)
	if err != nil {
		h.renderPersistError(c, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues("success").Inc()
	logger.Infof("published %s (overwrite=%v request=%s)", rec.BlobRef, req.Overwrite, c.GetString("requestId"))
	c.JSON(http.StatusOK, rec)
}

// resolveIdentity reconciles the request's identity fields with the front
// matter. Absent request fields default from the front matter; present ones
// must agree with it.
func resolveIdentity(req *uploadRequest, meta *frontmatter.FrontMatter) (courseID, format string, mismatches []string) {
	courseID = req.CourseID
	if courseID == "" {
		courseID = meta.CourseID
	} else if courseID != meta.CourseID {
		mismatches = append(mismatches, "courseId does not match the document's course_id front matter field")
	}
	format = req.Format
	if format == "" {
		format = meta.Format
	} else if format != meta.Format {
		mismatches = append(mismatches, "format does not match the document's format front matter field")
	}
	return courseID, format, mismatches
}

func (h *UploadHandler) renderPersistError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrConflict) {
		metrics.UploadsTotal.WithLabelValues("conflict").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "a document already exists for this course and format; set overwrite to replace it"})
		return
	}
	var merr *service.MetadataWriteError
	if errors.As(err, &merr) {
		if merr.Orphaned() {
			metrics.UploadsTotal.WithLabelValues("orphaned").Inc()
		} else {
			metrics.UploadsTotal.WithLabelValues("metadata_error").Inc()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": merr.Error(), "orphanedBlob": merr.Orphaned()})
		return
	}
	metrics.UploadsTotal.WithLabelValues("storage_error").Inc()
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "orphanedBlob": false})
}

// ListCourses returns all persisted index entries.
func (h *UploadHandler) ListCourses(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetCourse returns the index entry for one identity.
func (h *UploadHandler) GetCourse(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("courseId"), c.Param("format"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetCourseContent streams the stored document body.
func (h *UploadHandler) GetCourseContent(c *gin.Context) {
	data, err := h.svc.Content(c.Request.Context(), c.Param("courseId"), c.Param("format"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", data)
}
