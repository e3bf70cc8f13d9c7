package chat

import (
	"os"
	"testing"
)

func TestNewResponderWithoutKey(t *testing.T) {
	if r := NewResponder(""); r != nil {
		t.Error("expected nil responder without an API key")
	}
}

func TestNewResponderLeavesEnvironmentAlone(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	r := NewResponder("sk-test")
	if r == nil {
		t.Fatal("expected responder")
	}
	if got := os.Getenv("OPENAI_API_KEY"); got != "" {
		t.Errorf("responder construction set OPENAI_API_KEY=%q", got)
	}
}
