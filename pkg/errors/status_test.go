package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"gotest.tools/v3/assert"
)

func Test_WithStatus(t *testing.T) {
	t.Parallel()

	err1 := fmt.Errorf("err1")

	for _, tc := range []struct {
		name     string
		in       error
		expected int
	}{
		{
			name:     "nil",
			in:       nil,
			expected: 0,
		},
		{
			name:     "plain",
			in:       err1,
			expected: 0,
		},
		{
			name:     "annotated",
			in:       WithStatus(err1, http.StatusConflict),
			expected: http.StatusConflict,
		},
		{
			name:     "not_found",
			in:       NotFound(err1),
			expected: http.StatusNotFound,
		},
		{
			name:     "bad_request",
			in:       BadRequest(err1),
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped_annotation",
			in:       pkgerrors.Wrap(NotFound(err1), "wrapper"),
			expected: http.StatusNotFound,
		},
		{
			name:     "outermost_wins",
			in:       BadRequest(NotFound(err1)),
			expected: http.StatusBadRequest,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// EXERCISE
			result := StatusOf(tc.in)

			// VERIFY
			assert.Equal(t, result, tc.expected)
		})
	}
}

func Test_WithStatus_Nil(t *testing.T) {
	t.Parallel()

	// EXERCISE and VERIFY
	assert.NilError(t, WithStatus(nil, http.StatusNotFound))
}

func Test_WithStatus_KeepsOriginal(t *testing.T) {
	t.Parallel()

	// SETUP
	err1 := fmt.Errorf("err1")

	// EXERCISE
	result := NotFound(err1)

	// VERIFY
	assert.Equal(t, result.Error(), "err1")
	assert.Equal(t, errors.Unwrap(result), err1)
	assert.Assert(t, errors.Is(result, err1))
}
