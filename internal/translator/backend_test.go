package translator

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyBackendError(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"rate limit", errors.New("429 Too Many Requests"), true},
		{"server error", errors.New("500 internal server error"), true},
		{"timeout", errors.New("request timed out"), true},
		{"bad key", errors.New("401 Unauthorized: invalid api key"), false},
		{"forbidden", errors.New("403 Forbidden"), false},
		{"missing model", errors.New("model_not_found: no such model"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyBackendError(tc.err)
			var be *BackendError
			if !errors.As(classified, &be) {
				t.Fatalf("expected BackendError, got %T", classified)
			}
			if be.Transient != tc.wantTransient {
				t.Errorf("Transient = %v, want %v", be.Transient, tc.wantTransient)
			}
			if !errors.Is(classified, tc.err) {
				t.Error("original error not wrapped")
			}
		})
	}
}

func TestClassifyBackendErrorPassesContextErrors(t *testing.T) {
	for _, err := range []error{context.Canceled, context.DeadlineExceeded} {
		if got := classifyBackendError(err); !errors.Is(got, err) {
			t.Errorf("context error rewritten to %v", got)
		}
	}
}

func TestNewOpenAIBackendRequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend(context.Background(), OpenAIConfig{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if IsTransient(err) {
		t.Error("missing key should be permanent")
	}
}

func TestLanguageName(t *testing.T) {
	testCases := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"zh", "Simplified Chinese"},
		{"zh-TW", "Traditional Chinese"},
		{"xx", "xx"},
	}

	for _, tc := range testCases {
		if got := languageName(tc.code); got != tc.want {
			t.Errorf("languageName(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestBackendErrorMessage(t *testing.T) {
	plain := &BackendError{Message: "boom"}
	if plain.Error() != "boom" {
		t.Errorf("Error() = %q", plain.Error())
	}
	wrapped := &BackendError{Message: "boom", Cause: errors.New("root")}
	if wrapped.Error() != "boom: root" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Cause) {
		t.Error("Unwrap not reachable via errors.Is")
	}
}
