package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("insert movement", cause)

	if !errors.Is(err, ErrPersistence) {
		t.Fatal("expected errors.Is(err, ErrPersistence)")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be unwrapped")
	}

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "insert movement" {
		t.Fatalf("errors.As failed: %v", err)
	}

	if again := NewPersistenceError("outer", err); again != err {
		t.Fatal("expected already wrapped error to pass through")
	}
}

func TestNewPersistenceError_PassesDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("lock part: %w", ErrPartNotFound)

	err := NewPersistenceError("lock part", wrapped)
	if errors.Is(err, ErrPersistence) {
		t.Fatal("domain error must not be reported as persistence failure")
	}
	if !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("got %v", err)
	}

	if NewPersistenceError("noop", nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
