package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/leadclient"
)

// Submitter is satisfied by *Assembler.
type Submitter interface {
	Submit(ctx context.Context, s Submission) (*Result, error)
}

// Form is the state of one contact form: what the visitor typed, the
// messages shown next to each field and whether a submission is running.
// It allows one submission in flight at a time.
type Form struct {
	mu        sync.Mutex
	submitter Submitter
	input     form.Input
	errors    form.Errors
	pending   bool
	submitted bool
}

// NewForm creates an empty form that submits through s.
func NewForm(s Submitter) *Form {
	if s == nil {
		panic("submission: submitter required")
	}
	return &Form{submitter: s, errors: form.Errors{}}
}

// SetField stores an edit and returns the value as kept. The phone is
// re-punctuated on every edit. Any message shown for the field is cleared.
func (f *Form) SetField(field form.Field, value string) (string, bool) {
	if field == form.FieldPhone {
		value = form.FormatPhone(value)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.input.Set(field, value) {
		return "", false
	}
	f.errors.Clear(field)
	return value, true
}

// Fill applies every field of in as if typed.
func (f *Form) Fill(in form.Input) {
	for _, field := range form.Fields {
		f.SetField(field, in.Get(field))
	}
}

// Input returns the current values.
func (f *Form) Input() form.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// Errors returns a copy of the messages currently shown.
func (f *Form) Errors() form.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(form.Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Pending reports whether a submission is in flight.
func (f *Form) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Submitted reports whether the last submission succeeded and the success
// state has not been dismissed.
func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// Reopen dismisses the success state so another message can be sent.
func (f *Form) Reopen() {
	f.mu.Lock()
	f.submitted = false
	f.mu.Unlock()
}

// Submit sends the current input. On success the form is emptied and marked
// submitted. Field failures replace the shown messages; any other failure is
// shown under the submit key and the input stays editable.
func (f *Form) Submit(ctx context.Context, current, persisted attribution.Params, pagePath string) (*Result, error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	f.pending = true
	f.errors = form.Errors{}
	in := f.input
	f.mu.Unlock()

	res, err := f.submitter.Submit(ctx, Submission{
		Input:     in,
		Current:   current,
		Persisted: persisted,
		PagePath:  pagePath,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = false
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			f.errors = form.Errors{}
			for k, v := range verr.Errors {
				f.errors[k] = v
			}
		} else {
			f.errors = form.Errors{form.FieldSubmit: leadclient.UserMessage(err)}
		}
		return nil, err
	}
	f.input = form.Input{}
	f.errors = form.Errors{}
	f.submitted = true
	return res, nil
}
