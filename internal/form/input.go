package form

import "strings"

// Candidate is the raw form state at the moment the user submits: whatever is
// in the pasted-text area plus the name of a selected file, if any. The
// controller guarantees the two content sources are never both populated.
type Candidate struct {
	PastedText string
	FileName   string
	Overwrite  bool
}

type ErrorCode string

const (
	ErrMissingContent  ErrorCode = "MissingContent"
	ErrInvalidFileType ErrorCode = "InvalidFileType"
)

// FieldError is a single client-side validation failure with a renderable message.
type FieldError struct {
	Code    ErrorCode
	Message string
}

// ValidationResult carries every applicable error found in one pass.
type ValidationResult struct {
	IsValid bool
	Errors  []FieldError
}

const markdownExt = ".md"

// Validate checks a submission candidate without touching any I/O. All
// applicable errors are collected; a wrongly-typed file and missing content
// are reported together, not short-circuited.
func Validate(c Candidate) ValidationResult {
	var errs []FieldError

	usableFile := c.FileName != "" && strings.HasSuffix(strings.ToLower(c.FileName), markdownExt)
	if !usableFile && strings.TrimSpace(c.PastedText) == "" {
		errs = append(errs, FieldError{
			Code:    ErrMissingContent,
			Message: "select a markdown file or paste document text before submitting",
		})
	}
	if c.FileName != "" && !strings.HasSuffix(strings.ToLower(c.FileName), markdownExt) {
		errs = append(errs, FieldError{
			Code:    ErrInvalidFileType,
			Message: "uploaded file must have a " + markdownExt + " extension",
		})
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
