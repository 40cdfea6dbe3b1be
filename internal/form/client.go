package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UploadRequest is the logical payload of POST /api/upload. CourseID and
// Format are optional: the server derives them from the document's front
// matter when absent.
type UploadRequest struct {
	CourseID     string `json:"courseId,omitempty"`
	Format       string `json:"format,omitempty"`
	MarkdownText string `json:"markdownText"`
	Overwrite    bool   `json:"overwrite"`
}

// UploadedRecord is the record summary the server returns on success.
type UploadedRecord struct {
	CourseID    string    `json:"courseId"`
	Format      string    `json:"format"`
	Title       string    `json:"title"`
	BlobRef     string    `json:"blobRef"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UploadResponse struct {
	Record UploadedRecord
}

// APIError is a non-2xx response from the upload API, carrying enough detail
// to render user-facing messages without decoding internal codes.
type APIError struct {
	Status       int
	Errors       []string
	OrphanedBlob bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upload API returned %d: %v", e.Status, e.Errors)
}

// Messages returns the renderable error lines.
func (e *APIError) Messages() []string {
	if len(e.Errors) == 0 {
		return []string{fmt.Sprintf("upload API returned %d", e.Status)}
	}
	return e.Errors
}

// HTTPClient talks to a running coursepub server.
type HTTPClient struct {
	base string
	hc   *http.Client
}

func NewHTTPClient(base string) *HTTPClient {
	return &HTTPClient{base: base, hc: &http.Client{Timeout: 30 * time.Second}}
}

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/upload", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var rec UploadedRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &UploadResponse{Record: rec}, nil
	}

	var body struct {
		Error        string   `json:"error"`
		Errors       []string `json:"errors"`
		OrphanedBlob bool     `json:"orphanedBlob"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	apiErr := &APIError{Status: resp.StatusCode, Errors: body.Errors, OrphanedBlob: body.OrphanedBlob}
	if len(apiErr.Errors) == 0 && body.Error != "" {
		apiErr.Errors = []string{body.Error}
	}
	return nil, apiErr
}
