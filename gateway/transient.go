package gateway

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Transient reports whether a transport-level error is worth retrying
// under the generic retry budget. The gateway is a gRPC service, so the
// classification reads the status code when one is present; plain
// context errors are final.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}

	s, ok := status.FromError(err)
	if !ok {
		// Not a status error; assume a connection-level failure.
		return true
	}

	switch s.Code() {
	case codes.Unavailable, codes.Internal, codes.Unknown,
		codes.ResourceExhausted, codes.Aborted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
