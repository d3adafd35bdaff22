package workspace

import "fmt"

// Kind classifies a failed operation. The HTTP layer maps each kind to a
// status code; the engine itself never knows about transports.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalidArgument
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid argument"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is returned for every expected failure. Storage errors are not
// wrapped in Error; they come back as plain wrapped errors.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is lets errors.Is(err, ErrNotFound) match any NotFound error,
// whatever its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrConflict        = &Error{Kind: KindConflict}
)

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}
