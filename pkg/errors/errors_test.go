package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidStrategy, "unknown strategy: %s", "radial")

	if err.Code != ErrCodeInvalidStrategy {
		t.Errorf("code = %v, want %v", err.Code, ErrCodeInvalidStrategy)
	}
	if err.Message != "unknown strategy: radial" {
		t.Errorf("message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_STRATEGY") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeRenderFailed, cause, "write artifact %s", "chart.png")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
	if !strings.Contains(err.Error(), "write artifact chart.png") {
		t.Errorf("Error() = %q, want formatted message", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidChain, "missing id")

	if !Is(err, ErrCodeInvalidChain) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is() = true for a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInvalidChain) {
		t.Error("Is() = true for a plain error")
	}
	if Is(nil, ErrCodeInvalidChain) {
		t.Error("Is() = true for nil")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeFileNotFound, "no such chain file")
	outer := fmt.Errorf("loading input: %w", inner)

	if !Is(outer, ErrCodeFileNotFound) {
		t.Error("Is() did not unwrap through fmt.Errorf")
	}
	if got := GetCode(outer); got != ErrCodeFileNotFound {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeFileNotFound)
	}
}

func TestGetCodePlainError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := Wrap(ErrCodeLayoutFailed, stderrors.New("graphviz crashed"), "layered layout")
	if got := UserMessage(err); got != "layered layout" {
		t.Errorf("UserMessage = %q, want message without code", got)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage = %q", got)
	}
}
