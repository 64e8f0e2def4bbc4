package submission

import "errors"

// ErrSubmissionPending is returned when a form already has a submission in
// flight.
var ErrSubmissionPending = errors.New("submission: already pending")
