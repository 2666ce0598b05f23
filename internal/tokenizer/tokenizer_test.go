package tokenizer

import (
	"os"
	"path/filepath"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytesText(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte("hello"))
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted {
		t.Fatalf("expected counted result")
	}
	if result.Tokens != len([]rune("hello")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("hello")), result.Tokens)
	}
}

func TestCountBytesInvalidUTF8(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte{0xff, 0xfe})
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected invalid data to be skipped")
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.txt")
	if err := os.WriteFile(path, []byte("héllo"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, err := CountFile(testCounter{}, path)
	if err != nil {
		t.Fatalf("CountFile error: %v", err)
	}
	if !result.Counted || result.Tokens != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, missingErr := CountFile(testCounter{}, path+".missing"); missingErr == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"GPT-4":                  true,
		"text-embedding-3-small": true,
		"claude-3-5-sonnet":      false,
		"":                       false,
	}
	for model, expected := range testCases {
		if actual := IsOpenAIModel(model); actual != expected {
			t.Errorf("model %q: expected %t, got %t", model, expected, actual)
		}
	}
}
