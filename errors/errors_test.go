package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseTransform,
				Kind:     KindTypeMismatch,
				GoType:   "uint32",
				ElemType: "uint8",
				Detail:   "cannot reinterpret",
			},
			contains: []string{"[transform]", "type_mismatch", "uint32", "uint8", "cannot reinterpret"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindInvalidOperation,
			},
			contains: []string{"[access]", "invalid_operation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidConfig,
				Detail: "bad file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[config]", "invalid_config", "bad file", "caused by", "underlying error"},
		},
		{
			name: "element type only",
			err: &Error{
				Phase:    PhaseGuest,
				Kind:     KindTypeMismatch,
				ElemType: "u16",
				Detail:   "size 2",
			},
			contains: []string{"element type u16", " - size 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseProbe,
		Kind:  KindInvalidOperation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseAccess,
		Kind:  KindInvalidOperation,
	}

	if !err.Is(&Error{Phase: PhaseAccess, Kind: KindInvalidOperation}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseTransform, Kind: KindInvalidOperation}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseAccess, Kind: KindReadOnly}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrInvalidOperation) {
		t.Error("errors.Is should match the phase-less sentinel")
	}
	if errors.Is(err, ErrTypeMismatch) {
		t.Error("errors.Is should not match a sentinel of another kind")
	}

	wrapped := Wrap(PhaseAlloc, KindInvalidArgument, err, "outer")
	if !errors.Is(wrapped, ErrInvalidArgument) || !errors.Is(wrapped, ErrInvalidOperation) {
		t.Error("errors.Is should see both the wrapper and its cause")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseTransform, KindTypeMismatch).
		GoType("uint32").
		ElemType("uint8").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "uint8", "uint32").
		Build()

	if err.Phase != PhaseTransform {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseTransform)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if err.GoType != "uint32" {
		t.Errorf("GoType = %v, want 'uint32'", err.GoType)
	}
	if err.ElemType != "uint8" {
		t.Errorf("ElemType = %v, want 'uint8'", err.ElemType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected uint8, got uint32" {
		t.Errorf("Detail = %v, want 'expected uint8, got uint32'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidOperation", func(t *testing.T) {
		err := InvalidOperation(PhaseAccess, "unloaded")
		if err.Kind != KindInvalidOperation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidOperation)
		}
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		err := InvalidArgument(PhaseAlloc, "count must be positive", 0)
		if err.Kind != KindInvalidArgument {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArgument)
		}
		if err.Value != 0 {
			t.Errorf("Value = %v, want 0", err.Value)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseTransform, "int32", "float64")
		if err.GoType != "int32" || err.ElemType != "float64" {
			t.Errorf("GoType=%v ElemType=%v", err.GoType, err.ElemType)
		}
	})

	t.Run("ReadOnly", func(t *testing.T) {
		err := ReadOnly(PhaseAccess, "Bytes")
		if err.Kind != KindReadOnly {
			t.Errorf("Kind = %v, want %v", err.Kind, KindReadOnly)
		}
		if !strings.Contains(err.Detail, "read-only") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhasePin, 10, 4, 12)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
		if !strings.Contains(err.Detail, "[10, 14)") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseCompose, 65536, 65535)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 65536 {
			t.Errorf("Value = %v, want 65536", err.Value)
		}
	})

	t.Run("Unmanaged", func(t *testing.T) {
		err := Unmanaged(PhasePin, "*int", "pointer")
		if err.Kind != KindUnmanagedType || err.GoType != "*int" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		err := InvalidConfig("window", 1, "must be at least 2")
		if err.Phase != PhaseConfig || !strings.Contains(err.Detail, "window") {
			t.Errorf("got %+v", err)
		}
	})
}
