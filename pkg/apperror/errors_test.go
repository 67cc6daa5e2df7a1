package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name         string
		err          error
		wantValid    bool
		wantUnavail  bool
		wantInconsis bool
	}{
		{"validation", Validation("chat.Validate", "user_id is required"), true, false, false},
		{"unavailable", Unavailable("redis.HGetAll", cause), false, true, false},
		{"inconsistent", Inconsistent("knowledge.Load", "no profiles", nil), false, false, true},
		{"wrapped unavailable", fmt.Errorf("turn aborted: %w", Unavailable("embed", cause)), false, true, false},
		{"plain error", cause, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, IsValidation(tt.err))
			assert.Equal(t, tt.wantUnavail, IsUnavailable(tt.err))
			assert.Equal(t, tt.wantInconsis, IsInconsistent(tt.err))
		})
	}
}

func TestUnavailableUnwrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Unavailable("graph.TreatmentFor", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "graph.TreatmentFor")
	assert.Contains(t, err.Error(), "timeout")
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "session_id is required", MessageOf(Validation("op", "session_id is required")))
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}
