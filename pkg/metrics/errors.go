package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNegativeObservation is returned when a negative value is observed
// into a histogram.
var ErrNegativeObservation = errors.New("histogram observations must not be negative")

// DuplicateNameError is returned when an instrument name is registered
// more than once.
type DuplicateNameError struct {
	Name string
}

// let compiler verify interface compliance
var _ error = (*DuplicateNameError)(nil)

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("metric %q is already registered", e.Name)
}

// UnlabeledSeriesError is returned when the label values passed to an
// instrument do not match its declared label names.
type UnlabeledSeriesError struct {
	Name       string
	LabelNames []string
	Got        int
}

var _ error = (*UnlabeledSeriesError)(nil)

func (e *UnlabeledSeriesError) Error() string {
	return fmt.Sprintf(
		"metric %q expects %d label value(s) [%s], got %d",
		e.Name, len(e.LabelNames), strings.Join(e.LabelNames, ","), e.Got,
	)
}
