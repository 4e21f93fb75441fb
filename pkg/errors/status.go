package errors

import (
	"errors"
	"net/http"
)

type statusAnnotation struct {
	wrapped error
	status  int
}

// let compiler verify interface compliance
var _ error = (*statusAnnotation)(nil)

func (a *statusAnnotation) Error() string {
	return a.wrapped.Error()
}

func (a *statusAnnotation) Unwrap() error {
	return a.wrapped
}

// errors.Is() would work without this method, but it
// provides a shortcut in case target is the wrapped error.
func (a *statusAnnotation) Is(target error) bool {
	return errors.Is(a.wrapped, target)
}

// WithStatus annotates a given error with the HTTP status code to be
// returned to the client.
// If err is nil, the function returns nil.
func WithStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	return &statusAnnotation{
		wrapped: err,
		status:  status,
	}
}

// NotFound annotates a given error with status 404.
func NotFound(err error) error {
	return WithStatus(err, http.StatusNotFound)
}

// BadRequest annotates a given error with status 400.
func BadRequest(err error) error {
	return WithStatus(err, http.StatusBadRequest)
}

// StatusOf returns the HTTP status code the given error has been
// annotated with. The outermost annotation wins.
// Zero is returned for nil and for errors without annotation.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	if annotation := (*statusAnnotation)(nil); errors.As(err, &annotation) {
		return annotation.status
	}
	return 0
}
