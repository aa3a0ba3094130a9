package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindAuthorization, KindOf(Authorization("not yours")))
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading booking: %w", NotFound("booking not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, HTTPStatus(Validation("bad input")))
	assert.Equal(t, 403, HTTPStatus(Authorization("not yours")))
	assert.Equal(t, 409, HTTPStatus(Conflict("taken")))
	assert.Equal(t, 404, HTTPStatus(NotFound("gone")))
	assert.Equal(t, 500, HTTPStatus(errors.New("boom")))
}

func TestMessageFormatting(t *testing.T) {
	err := Conflict("only %d seats available", 2)
	assert.Equal(t, "only 2 seats available", err.Error())
}
