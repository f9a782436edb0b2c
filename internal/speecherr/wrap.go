package speecherr

import "errors"

// Error wraps an error with a reason.
type Error struct {
	Err    error
	Reason Reason
}

func (e Error) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// Wrap attaches a reason to an error (no-op if err is nil or already has one).
func Wrap(err error, reason Reason) error {
	if err == nil {
		return nil
	}
	var re Error
	if errors.As(err, &re) {
		return err
	}
	return Error{Err: err, Reason: reason}
}

// New creates an error carrying reason with the given message.
func New(reason Reason, message string) error {
	return Error{Err: errors.New(message), Reason: reason}
}

// ReasonOf extracts the reason, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var re Error
	if errors.As(err, &re) {
		return re.Reason
	}
	return ReasonUnknown
}

// HasReason reports whether err carries reason.
func HasReason(err error, reason Reason) bool {
	return ReasonOf(err) == reason
}
