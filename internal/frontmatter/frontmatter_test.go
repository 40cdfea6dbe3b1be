package frontmatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `---
course_id: cs101
title: Intro to Computer Science
format: md
published: "2026-01-15"
---

# Week 1

Welcome to the course.
`

func TestProcessValidDocument(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	doc, err := Process([]byte(validDoc), now)
	require.NoError(t, err)
	assert.Equal(t, "cs101", doc.Meta.CourseID)
	assert.Equal(t, "Intro to Computer Science", doc.Meta.Title)
	assert.Equal(t, "md", doc.Meta.Format)
	assert.Equal(t, "2026-01-15", doc.Meta.Published)
	assert.Equal(t, now, doc.Meta.LastUpdated)
	assert.Contains(t, string(doc.Body), "# Week 1")
}

func TestProcessMissingRequiredField(t *testing.T) {
	doc := `---
title: No identity here
format: md
published: "2026-01-15"
---
body
`
	_, err := Process([]byte(doc), time.Now())
	require.Error(t, err)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	msgs := strings.Join(se.Messages(), "\n")
	assert.Contains(t, msgs, "course_id")
}

func TestProcessNoFrontMatterAtAll(t *testing.T) {
	_, err := Process([]byte("no front matter here"), time.Now())
	require.Error(t, err)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	// every required field should be reported, course_id first in sorted order
	msgs := se.Messages()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "course_id")
}

func TestProcessBadPublishedDate(t *testing.T) {
	doc := `---
course_id: cs101
title: t
format: md
published: "someday"
---
`
	_, err := Process([]byte(doc), time.Now())
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, strings.Join(se.Messages(), " "), "published")
}

func TestProcessAlwaysOverwritesLastUpdated(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doc, err := Process([]byte(validDoc), first)
	require.NoError(t, err)
	require.Equal(t, first, doc.Meta.LastUpdated)

	// feed the enriched document back in: last_updated must advance, and a
	// supplied last_updated value is never a rejection reason
	rendered, err := doc.Render()
	require.NoError(t, err)
	second := first.Add(24 * time.Hour)
	again, err := Process(rendered, second)
	require.NoError(t, err)
	assert.Equal(t, second, again.Meta.LastUpdated)
}

func TestRenderRoundTripPreservesBodyAndCustomFields(t *testing.T) {
	doc := `---
course_id: cs101
title: t
format: md
published: "2026-01-15"
instructor: Prof. Kim
---
## Syllabus

Line one.
`
	now := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	parsed, err := Process([]byte(doc), now)
	require.NoError(t, err)
	require.Equal(t, "Prof. Kim", parsed.Meta.Custom["instructor"])

	rendered, err := parsed.Render()
	require.NoError(t, err)
	out := string(rendered)
	assert.Contains(t, out, "instructor: Prof. Kim")
	assert.Contains(t, out, "last_updated:")
	assert.Contains(t, out, "## Syllabus")

	reparsed, err := Process(rendered, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, string(parsed.Body), string(reparsed.Body))
}
