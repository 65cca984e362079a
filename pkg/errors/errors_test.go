package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeToolMissing, "kind not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeToolMissing {
		t.Errorf("expected code %s, got %s", ErrCodeToolMissing, err.Code)
	}
	if err.Message != "kind not found" {
		t.Errorf("expected message 'kind not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeCommandFailed, "cluster creation failed", cause)

	if err.Code != ErrCodeCommandFailed {
		t.Errorf("expected code %s, got %s", ErrCodeCommandFailed, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]interface{}{
		"command": "kind",
		"cluster": "oikos",
	}

	err := WrapWithContext(ErrCodeTimeout, "cluster creation timed out", cause, ctx)

	if err.Code != ErrCodeTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeTimeout, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "kind" {
		t.Errorf("expected command to be kind")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "direct structured error",
			err:  New(ErrCodeBuildUnsupported, "no build definition"),
			want: ErrCodeBuildUnsupported,
		},
		{
			name: "wrapped structured error",
			err:  Wrap(ErrCodeKubernetes, "apply failed", errors.New("conflict")),
			want: ErrCodeKubernetes,
		},
		{
			name: "plain error defaults to internal",
			err:  errors.New("plain"),
			want: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(ErrCodeInvalidConfig, "bad config", cause)

	var se *StructuredError
	if !As(err, &se) {
		t.Fatal("expected As to match StructuredError")
	}
	if !Is(err, cause) {
		t.Error("expected Is to find the cause through Unwrap")
	}
}
