package frontmatter

import (
	"bytes"
	"regexp"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

var (
	identPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)
)

// FrontMatter is the structured metadata block at the head of a course
// markdown document. Fields outside the schema are preserved in Custom and
// round-trip through Render unchanged.
type FrontMatter struct {
	CourseID    string         `yaml:"course_id" json:"course_id"`
	Title       string         `yaml:"title" json:"title"`
	Format      string         `yaml:"format" json:"format"`
	Published   string         `yaml:"published" json:"published"`
	LastUpdated time.Time      `yaml:"last_updated" json:"last_updated"`
	Custom      map[string]any `yaml:",inline" json:"-"`
}

// Validate checks the schema-required fields. It collects every violation so
// the caller can surface them all at once.
func (m FrontMatter) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.CourseID,
			validation.Required.Error("course_id is required"),
			validation.Match(identPattern).Error("course_id must be lowercase letters, digits, '-' or '_'")),
		validation.Field(&m.Title,
			validation.Required.Error("title is required")),
		validation.Field(&m.Format,
			validation.Required.Error("format is required"),
			validation.Match(formatPattern).Error("format must be lowercase letters and digits")),
		validation.Field(&m.Published,
			validation.Required.Error("published is required"),
			validation.Date("2006-01-02").Error("published must be a date in YYYY-MM-DD form")),
	)
}

// Document is a parsed and enriched course document: validated front matter
// plus the untouched markdown body that followed the metadata block.
type Document struct {
	Meta FrontMatter
	Body []byte
}

// Process parses the metadata block out of raw, validates it against the
// content schema, and stamps last_updated with now. Any value the source
// supplied for last_updated is replaced, never rejected. The body after the
// block is passed through byte-for-byte.
func Process(raw []byte, now time.Time) (*Document, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, &SchemaError{Err: validation.Errors{
			"front_matter": validation.NewError("frontmatter.unparseable", "front matter block could not be parsed: "+err.Error()),
		}}
	}

	if err := meta.Validate(); err != nil {
		return nil, &SchemaError{Err: err}
	}

	meta.LastUpdated = now.UTC().Truncate(time.Second)

	return &Document{Meta: meta, Body: body}, nil
}

// Render re-serializes the document with its enriched front matter so the
// stored blob carries the stamped metadata.
func (d *Document) Render() ([]byte, error) {
	head, err := yaml.Marshal(d.Meta)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	buf.Write(d.Body)
	return buf.Bytes(), nil
}
