package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest, "title is required"},
		{"unauthenticated", Unauthenticated("unauthorized request"), http.StatusUnauthorized, "unauthorized request"},
		{"forbidden", Forbidden("not the owner"), http.StatusForbidden, "not the owner"},
		{"not found", NotFound("video not found"), http.StatusNotFound, "video not found"},
		{"conflict", Conflict("username taken"), http.StatusConflict, "username taken"},
		{"upload", Wrap(ErrUploadFailed, "thumbnail upload failed", errors.New("s3: 500")), http.StatusBadGateway, "thumbnail upload failed"},
		{"wrapped", fmt.Errorf("svc: %w", NotFound("playlist not found")), http.StatusNotFound, "playlist not found"},
		{"raw driver error", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal server error"},
		{"internal kind", Wrap(ErrInternal, "db exploded", errors.New("boom")), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, tt.msg, Message(tt.err))
		})
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("network down")
	err := Wrap(ErrUploadFailed, "upload failed", cause)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upload failed: network down", err.Error())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	err := FromContext("store timeout", fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, http.StatusServiceUnavailable, Status(err))

	other := errors.New("x")
	assert.Same(t, other, FromContext("store timeout", other))
}
