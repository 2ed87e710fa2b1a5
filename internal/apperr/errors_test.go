package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("taken"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{QuotaExceeded("full"), http.StatusBadRequest},
		{Provider(errors.New("upstream")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusOf(c.err); got != c.want {
			t.Errorf("StatusOf(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestStatusOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handling request: %w", QuotaExceeded("full"))
	if got := StatusOf(err); got != http.StatusBadRequest {
		t.Errorf("Expected wrapped status to surface, got %d", got)
	}
}

func TestMessageOf_NeverLeaksInternals(t *testing.T) {
	err := Provider(errors.New("connection refused to 10.1.2.3"))
	if got := MessageOf(err); got != "Failed to generate response" {
		t.Errorf("Expected generic provider message, got %q", got)
	}

	if got := MessageOf(errors.New("pq: syntax error")); got != "Internal server error" {
		t.Errorf("Expected generic message for plain errors, got %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Provider(cause)
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to be reachable via errors.Is")
	}
}
