package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "continuity.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "continuity.yaml" {
			t.Errorf("expected context file=continuity.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		base := FileSystemError("failed to read document").Warning().Build()
		wrapped := fmt.Errorf("loading corpus: %w", base)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryFileSystem) {
			t.Error("expected filesystem category")
		}
		if GetSeverity(wrapped) != SeverityWarning {
			t.Errorf("expected warning severity, got %s", GetSeverity(wrapped))
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		plain := errors.New("plain")
		if GetCategory(plain) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(plain))
		}
		if GetSeverity(plain) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(plain))
		}
	})

	t.Run("Cause unwrapping", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := WrapError(cause, CategoryFileSystem, "failed to read document").Build()

		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the cause")
		}
		if err.Cause() != cause {
			t.Error("expected Cause() to return the wrapped error")
		}
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		original := NotFoundError("missing").Build()
		derived := original.WithContext("path", "a.md")

		if _, ok := original.Context().Get("path"); ok {
			t.Error("original context was mutated")
		}
		if path, _ := derived.Context().GetString("path"); path != "a.md" {
			t.Errorf("expected derived path a.md, got %q", path)
		}
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := StorageError("insert run").Build()
		b := StorageError("insert run").WithContext("id", "x").Build()
		c := MessagingError("insert run").Build()

		if !errors.Is(a, b) {
			t.Error("expected errors with equal category and message to match")
		}
		if errors.Is(a, c) {
			t.Error("expected errors with different categories not to match")
		}
	})
}

func TestErrorContextMerge(t *testing.T) {
	left := ErrorContext{"a": 1, "b": 2}
	right := ErrorContext{"b": 3}

	merged := left.Merge(right)
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if left["b"] != 2 {
		t.Error("merge mutated the receiver")
	}

	var empty ErrorContext
	if got := empty.Merge(nil); len(got) != 0 {
		t.Errorf("expected empty merge, got %v", got)
	}
}
