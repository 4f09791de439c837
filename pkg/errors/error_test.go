package errors_test

import (
	"errors"
	"testing"

	. "github.com/TSOJO/isolate-wrapper/pkg/errors"
)

func TestErrorCode_Message(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Success, "Success"},
		{AllBoxesFull, "All sandbox boxes are occupied"},
		{InvalidParams, "Invalid parameters"},
		{JudgeSystemError, "Judge system error"},
		{MetadataUnexpected, "Unexpected sandbox metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.Message(); got != tt.want {
				t.Errorf("Message() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(AllBoxesFull)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if err.Code != AllBoxesFull {
		t.Errorf("Code = %v, want %v", err.Code, AllBoxesFull)
	}

	if err.Error() != AllBoxesFull.Message() {
		t.Errorf("Error() = %v, want %v", err.Error(), AllBoxesFull.Message())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(BoxInitFailed, "box %d init failed", 7)

	want := "box 7 init failed"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrapPreservesUnderlying(t *testing.T) {
	originalErr := errors.New("no such file")
	err := Wrap(originalErr, MetadataUnreadable)

	if err.Code != MetadataUnreadable {
		t.Errorf("Code = %v, want %v", err.Code, MetadataUnreadable)
	}
	if !errors.Is(err, originalErr) {
		t.Errorf("wrapped error lost its cause")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, InternalServerError); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, InternalServerError, "ignored"); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(SandboxUnavailable)); got != SandboxUnavailable {
		t.Errorf("GetCode() = %v, want %v", got, SandboxUnavailable)
	}
	if got := GetCode(errors.New("plain")); got != InternalServerError {
		t.Errorf("GetCode(plain) = %v, want %v", got, InternalServerError)
	}
	if got := GetCode(nil); got != Success {
		t.Errorf("GetCode(nil) = %v, want %v", got, Success)
	}
}

func TestIs(t *testing.T) {
	err := New(AllBoxesFull)
	if !Is(err, AllBoxesFull) {
		t.Errorf("Is() = false, want true")
	}
	if Is(err, BoxInitFailed) {
		t.Errorf("Is() matched the wrong code")
	}
	if Is(nil, AllBoxesFull) {
		t.Errorf("Is(nil) = true, want false")
	}
}

func TestWithDetail(t *testing.T) {
	err := ValidationError("maxBox", "must be positive")
	if err.Code != ValidationFailed {
		t.Errorf("Code = %v, want %v", err.Code, ValidationFailed)
	}
	if err.Details["field"] != "maxBox" {
		t.Errorf("field detail = %v", err.Details["field"])
	}
	if err.Details["reason"] != "must be positive" {
		t.Errorf("reason detail = %v", err.Details["reason"])
	}
}
