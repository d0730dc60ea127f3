// ABOUTME: Tagged result of an asynchronous fetch held in screen state
// ABOUTME: Loading, Success with a value, or Error with a human-readable message

package fetch

// State is the variant tag of a Result.
type State int

const (
	Loading State = iota
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is a Loading, Success or Error value. The zero value is Loading.
type Result[T any] struct {
	state   State
	value   T
	message string
}

// NewLoading returns a Loading result.
func NewLoading[T any]() Result[T] {
	return Result[T]{state: Loading}
}

// NewSuccess returns a Success result carrying value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{state: Success, value: value}
}

// NewError returns an Error result carrying message.
func NewError[T any](message string) Result[T] {
	return Result[T]{state: Error, message: message}
}

// State returns the variant tag.
func (r Result[T]) State() State { return r.state }

// IsLoading reports whether the result is still loading.
func (r Result[T]) IsLoading() bool { return r.state == Loading }

// Value returns the success value and true, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	if r.state != Success {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Message returns the error message and true, or "" and false.
func (r Result[T]) Message() (string, bool) {
	if r.state != Error {
		return "", false
	}
	return r.message, true
}

// Map transforms the success value, leaving Loading and Error untouched.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.state {
	case Success:
		return NewSuccess(fn(r.value))
	case Error:
		return NewError[U](r.message)
	default:
		return NewLoading[U]()
	}
}
