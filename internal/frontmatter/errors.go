package frontmatter

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SchemaError reports that a document's front matter failed content-schema
// validation. It is a client error: the API maps it to a 400, never a 500.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return "front matter schema: " + e.Err.Error()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Messages returns one renderable message per violated field, in stable
// field order.
func (e *SchemaError) Messages() []string {
	errs, ok := e.Err.(validation.Errors)
	if !ok {
		return []string{e.Err.Error()}
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f+": "+errs[f].Error())
	}
	return out
}
