package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
	if err.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", err.Kind)
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New(KindConflict, "TEST", "test")
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}
	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}
	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
	if !stdErrors.Is(with, base) {
		t.Fatal("expected copy to match its sentinel by code")
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	sentinel := New(KindExpired, "invitation.expired", "Invitation has expired")
	wrapped := fmt.Errorf("accept: %w", sentinel)

	if !stdErrors.Is(wrapped, sentinel) {
		t.Fatal("expected wrapped sentinel to match")
	}
	if stdErrors.Is(wrapped, ErrNotFound) {
		t.Fatal("expected different codes not to match")
	}
	if KindOf(wrapped) != KindExpired {
		t.Fatalf("expected expired kind, got %s", KindOf(wrapped))
	}
}

func TestNewDerivesStatusFromKind(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthenticated:  http.StatusUnauthorized,
		KindPermissionDenied: http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindExpired:          http.StatusGone,
		KindValidation:       http.StatusBadRequest,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		if got := New(kind, "x", "x").StatusCode; got != status {
			t.Fatalf("kind %s: expected %d, got %d", kind, status, got)
		}
	}

	unknown := New(Kind("bogus"), "x", "x")
	if unknown.Kind != KindInternal || unknown.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected unknown kind to fall back to internal, got %+v", unknown)
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternal.Code {
		t.Fatalf("expected internal code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
	if KindOf(raw) != KindInternal {
		t.Fatal("expected foreign errors to classify as internal")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("invalid payload")
	if err.Code != ErrValidation.Code {
		t.Fatalf("expected %s, got %s", ErrValidation.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if ErrValidation.Message == "invalid payload" {
		t.Fatal("expected sentinel message to remain unchanged")
	}
}
