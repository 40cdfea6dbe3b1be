package course

import (
	"fmt"
	"time"
)

// CourseRecord is the persisted index entry for a published course document.
// (courseId, format) is the identity key; BlobRef points at the stored body.
// Records are created on first upload, updated in place on overwrites, and
// never deleted by the upload pipeline.
type CourseRecord struct {
	CourseID    string    `json:"courseId" bson:"courseId"`
	Format      string    `json:"format" bson:"format"`
	Title       string    `json:"title" bson:"title"`
	BlobRef     string    `json:"blobRef" bson:"blobRef"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// BlobName derives the blob store key for a course identity.
func BlobName(courseID, format string) string {
	return fmt.Sprintf("%s-%s.md", courseID, format)
}
