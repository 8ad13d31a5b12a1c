package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("event not found: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: organizer role required", ErrForbidden), http.StatusForbidden},
		{"invalid input", fmt.Errorf("%w: label", ErrInvalidInput), http.StatusBadRequest},
		{"conflict", fmt.Errorf("already registered: %w", ErrConflict), http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", fmt.Errorf("image storage: %w", ErrUnavailable), http.StatusServiceUnavailable},
		{"app error code wins", New(http.StatusGone, "gone", ErrNotFound), http.StatusGone},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MapErrorToStatus(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusConflict, "already invited", ErrConflict)
	if err.Error() != "already invited" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected AppError to unwrap to ErrConflict")
	}
}
