package form

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the controller's position in the submission lifecycle.
//
//	Idle -> Validating -> Invalid (errors rendered, edits return to Idle)
//	                   -> Submitting -> Success (form reset after a delay)
//	                                 -> Failed  (error rendered, edits return to Idle)
type State string

const (
	StateIdle       State = "IDLE"
	StateValidating State = "VALIDATING"
	StateInvalid    State = "INVALID"
	StateSubmitting State = "SUBMITTING"
	StateSuccess    State = "SUCCESS"
	StateFailed     State = "FAILED"
)

// FileReader loads the full text of a selected file. Injected so the
// controller stays testable without a filesystem.
type FileReader interface {
	ReadFile(name string) (string, error)
}

// Confirmer obtains the explicit user confirmation required before an
// overwriting submission is sent.
type Confirmer interface {
	ConfirmOverwrite() bool
}

// Client submits a validated document to the upload API.
type Client interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not finished. The submit control is to be treated as
// disabled for the duration of a pending request.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Controller is one upload form instance scoped to its mount point. It owns
// only UI-local state: the candidate input, the rendered error list, and the
// lifecycle state. All rendering surfaces read it through Snapshot.
type Controller struct {
	mu        sync.Mutex
	state     State
	candidate Candidate
	errs      []string
	record    *UploadedRecord
	resetAt   time.Time

	reader     FileReader
	confirm    Confirmer
	client     Client
	now        func() time.Time
	resetDelay time.Duration
}

// Snapshot is the render-facing view of the controller.
type Snapshot struct {
	State     State
	Candidate Candidate
	Errors    []string
	Record    *UploadedRecord
	ResetAt   time.Time
}

const defaultResetDelay = 2 * time.Second

func NewController(reader FileReader, confirm Confirmer, client Client) *Controller {
	return &Controller{
		state:      StateIdle,
		reader:     reader,
		confirm:    confirm,
		client:     client,
		now:        time.Now,
		resetDelay: defaultResetDelay,
	}
}

// EditText replaces the pasted text. Any previously rendered errors are
// cleared, whether or not a submission follows.
func (c *Controller) EditText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.candidate.PastedText = text
	c.errs = nil
	c.leaveTerminal()
}

// SelectFile records a file selection and always clears the pasted text, even
// when it was already empty. The two content sources are mutually exclusive.
func (c *Controller) SelectFile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.candidate.FileName = name
	c.candidate.PastedText = ""
	c.leaveTerminal()
}

// ClearFile removes the file selection.
func (c *Controller) ClearFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.candidate.FileName = ""
	c.leaveTerminal()
}

// SetOverwrite toggles whether an existing document may be replaced.
func (c *Controller) SetOverwrite(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.candidate.Overwrite = v
	c.leaveTerminal()
}

// leaveTerminal returns the controller to Idle after a rendered Invalid or
// Failed outcome once the user starts editing again. Caller holds the lock.
func (c *Controller) leaveTerminal() {
	if c.state == StateInvalid || c.state == StateFailed {
		c.state = StateIdle
	}
}

// Submit drives one full submission: validate, read the file if one is
// selected, confirm overwrites, and send the request. It is synchronous; the
// state transitions are observable through Snapshot between calls. A second
// Submit while one is pending returns ErrSubmissionInFlight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.state = StateValidating
	cand := c.candidate

	res := Validate(cand)
	if !res.IsValid {
		c.errs = make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			c.errs = append(c.errs, e.Message)
		}
		c.state = StateInvalid
		c.mu.Unlock()
		return nil
	}

	c.state = StateSubmitting
	c.mu.Unlock()

	text := cand.PastedText
	if cand.FileName != "" {
		content, err := c.reader.ReadFile(cand.FileName)
		if err != nil {
			// a read failure is its own error, not a validation error
			c.fail("could not read " + cand.FileName + ": " + err.Error())
			return nil
		}
		text = content
	}

	if cand.Overwrite && !c.confirm.ConfirmOverwrite() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return nil
	}

	resp, err := c.client.Upload(ctx, UploadRequest{MarkdownText: text, Overwrite: cand.Overwrite})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.failAll(apiErr.Messages())
		} else {
			c.fail("upload failed: " + err.Error())
		}
		return nil
	}

	c.mu.Lock()
	c.state = StateSuccess
	c.record = &resp.Record
	c.resetAt = c.now().Add(c.resetDelay)
	c.mu.Unlock()
	return nil
}

func (c *Controller) fail(msg string) {
	c.failAll([]string{msg})
}

func (c *Controller) failAll(msgs []string) {
	c.mu.Lock()
	c.errs = msgs
	c.state = StateFailed
	c.mu.Unlock()
}

// Reset clears the whole form after the success confirmation delay. It is a
// no-op unless the controller is in Success.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSuccess {
		return
	}
	c.candidate = Candidate{}
	c.errs = nil
	c.record = nil
	c.resetAt = time.Time{}
	c.state = StateIdle
}

// Snapshot returns a copy of the render-facing state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := make([]string, len(c.errs))
	copy(errs, c.errs)
	var rec *UploadedRecord
	if c.record != nil {
		cp := *c.record
		rec = &cp
	}
	return Snapshot{
		State:     c.state,
		Candidate: c.candidate,
		Errors:    errs,
		Record:    rec,
		ResetAt:   c.resetAt,
	}
}
