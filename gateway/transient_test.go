package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"not found", ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("read: %w", ErrNotFound), false},
		{"plain error", errors.New("connection reset"), true},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"internal", status.Error(codes.Internal, "boom"), true},
		{"aborted", status.Error(codes.Aborted, "conflict"), true},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "throttled"), true},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad tx"), false},
		{"permission denied", status.Error(codes.PermissionDenied, "no"), false},
		{"not found code", status.Error(codes.NotFound, "missing"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Transient(tc.err))
		})
	}
}
