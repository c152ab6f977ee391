package tokenizer

import (
	"testing"

	"github.com/spf13/afero"
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

func TestCountBytesSkipsUncountableData(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "binary", data: []byte{0x00, 0x01, 0x02}},
		{name: "invalid_utf8", data: []byte{'c', 'a', 'f', 0xe9}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := CountBytes(testCounter{}, testCase.data)
			if err != nil {
				t.Fatalf("CountBytes error: %v", err)
			}
			if result.Counted {
				t.Fatalf("expected %s data to be skipped", testCase.name)
			}
		})
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("hello")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountFile(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSystem, "/out/tree.txt", []byte("|-- a.py\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result, err := CountFile(fileSystem, testCounter{}, "/out/tree.txt")
	if err != nil {
		t.Fatalf("CountFile error: %v", err)
	}
	if !result.Counted || result.Tokens != len("|-- a.py\n") {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, missingErr := CountFile(fileSystem, testCounter{}, "/out/missing.txt"); missingErr == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{Model: "gpt-4o"})
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	if counter == nil {
		t.Fatalf("expected non-nil counter")
	}
	if model != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %q", model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}
