package omr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := internalErr("pipeline blew up", cause)

	assert.ErrorIs(t, err, cause)

	var omrErr *Error
	assert.True(t, errors.As(err, &omrErr))
	assert.Equal(t, ErrInternal, omrErr.Kind)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "InvalidImage", invalidImageErr("bad bytes", nil).Kind.String())
	assert.Equal(t, "NoBubblesDetected", noBubblesErr("none found").Kind.String())
	assert.Equal(t, "NoRowsDetected", noRowsErr("no rows").Kind.String())
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := noBubblesErr("none found")
	assert.Contains(t, err.Error(), "none found")
	assert.Nil(t, err.Unwrap())
}
