package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusPerKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidRequest("bad"), http.StatusBadRequest},
		{InvalidState("wrong status"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Forbidden("no"), http.StatusForbidden},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Internal("boom"), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("deal not found")
	wrapped := fmt.Errorf("loading deal: %w", inner)

	if !Is(wrapped, KindNotFound) {
		t.Error("kind lost through fmt.Errorf wrapping")
	}
	if HTTPStatus(wrapped) != http.StatusNotFound {
		t.Error("status lost through fmt.Errorf wrapping")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "failed to commit deal", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if err.Error() != "failed to commit deal: connection reset" {
		t.Errorf("message = %q", err.Error())
	}
}
