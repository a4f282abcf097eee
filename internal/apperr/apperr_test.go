package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"transport", Transport("backend unreachable", cause), KindTransport},
		{"backend", Backend("no such order", 404), KindBackend},
		{"decode", Decode("bad body", cause), KindDecode},
		{"validation", Validation("model is required"), KindValidation},
		{"wrapped", fmt.Errorf("load page: %w", Backend("denied", 0)), KindBackend},
		{"plain", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := fmt.Errorf("dispatch: %w", Transport("request failed", cause))
	require.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindTransport))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "token expired", Message(Backend("token expired", 401)))
	assert.Equal(t, "count is required\nprice is required",
		Message(Validation("count is required", "price is required")))
	assert.Equal(t, "eof", Message(&Error{Kind: KindDecode, Cause: errors.New("eof")}))
}

func TestErrorString(t *testing.T) {
	err := Validation("model is required")
	assert.Equal(t, "validation: invalid input: model is required", err.Error())

	err2 := Transport("request failed", errors.New("refused"))
	assert.Equal(t, "transport: request failed: refused", err2.Error())
}
