package domain

import "errors"

// ErrorKind tags an Error with its failure class so callers can branch
// without string matching.
type ErrorKind string

const (
	// KindNetwork covers transport failures: timeouts, refused connections,
	// malformed responses.
	KindNetwork ErrorKind = "network"
	// KindValidation covers server-reported validation or business errors,
	// and local draft validation failures.
	KindValidation ErrorKind = "validation"
	// KindUnauthorized covers 401 responses; raising it implies the stored
	// session has been torn down.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindNotFound covers 404 responses for a known resource id.
	KindNotFound ErrorKind = "not_found"
	// KindLocal covers preconditions rejected before any network call, such
	// as signup with the reserved demo address.
	KindLocal ErrorKind = "local"
)

// Sentinels usable with errors.Is alongside the kind taxonomy.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrReservedIdentity = errors.New("cannot create account with demo email address")
	ErrNoSession        = errors.New("no active session")
	ErrInvalidStatus    = errors.New("invalid status value")
)

// Error is the single error shape surfaced by services. Message is always
// human-readable: the server-provided message when one exists, otherwise a
// per-operation fallback.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match both wrapped sentinels and bare kinds: a
// KindUnauthorized Error matches ErrUnauthorized, a KindNotFound Error
// matches ErrNotFound.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// NewError builds an Error, falling back to fallbackMsg when message is empty.
func NewError(kind ErrorKind, message, fallbackMsg string, err error) *Error {
	if message == "" {
		message = fallbackMsg
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind of err, or an empty kind when err is not a
// domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
