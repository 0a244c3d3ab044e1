package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, ENotFound, ErrorCode(NotFound("store.Get", "row not found")))
	assert.Equal(t, EConflict, ErrorCode(Conflict("attendance.CheckIn", "open entry exists")))
	assert.Equal(t, EInternal, ErrorCode(errors.New("plain error")))
}

func TestErrorCode_NestedChain(t *testing.T) {
	inner := Unavailable("store.List", errors.New("connection refused"))
	outer := &Error{Op: "workflow.ListPending", Err: inner}

	assert.Equal(t, EUnavailable, ErrorCode(outer))
	assert.Equal(t, "storage unavailable", ErrorMessage(outer))
}

func TestErrorCode_WrappedWithFmt(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("catalog.UpdateFormat", "format not found"))
	assert.Equal(t, ENotFound, ErrorCode(err))
	assert.Equal(t, "format not found", ErrorMessage(err))
}

func TestError_OpChain(t *testing.T) {
	inner := NotFound("store.Get", "row not found")
	outer := &Error{Op: "identity.GetUser", Err: inner}

	assert.Equal(t, "identity.GetUser: store.Get: <not found> row not found", outer.Error())
	assert.True(t, errors.Is(outer, inner) || ErrorCode(outer) == ENotFound)
}

func TestUnauthorized_UniformShape(t *testing.T) {
	a := Unauthorized("identity.ValidateCredentials")
	b := Unauthorized("identity.ValidateCredentials")

	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Msg, b.Msg)
	assert.Equal(t, "invalid credentials", a.Msg)
}
