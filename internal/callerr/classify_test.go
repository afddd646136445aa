package callerr

import (
	"testing"

	"google.golang.org/grpc/codes"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		code codes.Code
		want bool
	}{
		{codes.Unavailable, true},
		{codes.DeadlineExceeded, true},
		{codes.ResourceExhausted, true},
		{codes.Aborted, true},
		{codes.InvalidArgument, false},
		{codes.NotFound, false},
		{codes.Internal, false},
		{codes.Unauthenticated, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.code); got != tc.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsConnectionLost(t *testing.T) {
	if !IsConnectionLost(codes.Unavailable) {
		t.Error("Unavailable should be connection-lost")
	}
	if IsConnectionLost(codes.DeadlineExceeded) {
		t.Error("DeadlineExceeded should not be connection-lost")
	}
}

func TestRetryDelayUncappedUnjittered(t *testing.T) {
	cases := []struct {
		attempt int
		want    int64
	}{
		{0, 1000},
		{1, 2000},
		{2, 4000},
		{3, 8000},
	}
	for _, tc := range cases {
		if got := RetryDelay(1000, tc.attempt); got != tc.want {
			t.Errorf("RetryDelay(1000, %d) = %d, want %d", tc.attempt, got, tc.want)
		}
	}
}

func TestReconnectDelayCappedAndJittered(t *testing.T) {
	for attempts := 0; attempts < 10; attempts++ {
		got := ReconnectDelay(1000, 30000, attempts)
		if got > 30000 {
			t.Errorf("ReconnectDelay(attempts=%d) = %d, exceeds cap 30000", attempts, got)
		}
		if got < 1000 {
			t.Errorf("ReconnectDelay(attempts=%d) = %d, below floor 1000", attempts, got)
		}
	}
}

func TestReconnectDelayJitterRange(t *testing.T) {
	// At attempts=0 the uncapped base is 1000ms; with jitter in [0,1000) the
	// result should fall in [1000, 2000) before the cap applies.
	for i := 0; i < 20; i++ {
		got := ReconnectDelay(1000, 30000, 0)
		if got < 1000 || got >= 2000 {
			t.Errorf("ReconnectDelay(attempts=0) = %d, want in [1000, 2000)", got)
		}
	}
}
