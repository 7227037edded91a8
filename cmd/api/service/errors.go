package service

import "errors"

type ErrorKind int

const (
	// ValidationError: the request body is not a conversation
	ValidationError ErrorKind = iota
	// UpstreamSetupError: the upstream refused the request before streaming began
	UpstreamSetupError
	// StreamInterrupted: the upstream failed after the response was committed
	StreamInterrupted
)

func (kind ErrorKind) String() string {
	switch kind {
	case ValidationError:
		return "ValidationError"
	case UpstreamSetupError:
		return "UpstreamSetupError"
	case StreamInterrupted:
		return "StreamInterrupted"
	default:
		return "Unknown"
	}
}

type RelayError struct {
	Kind ErrorKind
	Err  error
}

func (e *RelayError) Error() string {
	return e.Err.Error()
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// KindOf reports the relay error kind carried by err, if any
func KindOf(err error) (ErrorKind, bool) {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Kind, true
	}
	return 0, false
}
