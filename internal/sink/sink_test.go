package sink_test

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/dirlisting/internal/sink"
)

const basePath = "/out/directory_listing.txt"

func readFile(t *testing.T, fileSystem afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fileSystem, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSinkRotatesAtThreshold(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	outputSink, err := sink.New(fileSystem, basePath, 10, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for _, chunk := range []string{"abcd", "efgh", "ij", "klmn", "opqrst", "uv"} {
		if writeErr := outputSink.Write(chunk); writeErr != nil {
			t.Fatalf("Write(%q) error: %v", chunk, writeErr)
		}
	}
	if closeErr := outputSink.Close(); closeErr != nil {
		t.Fatalf("Close error: %v", closeErr)
	}

	expectedFiles := map[string]string{
		basePath:                        "abcdefghij",
		"/out/directory_listing_1.txt": "klmnopqrst",
		"/out/directory_listing_2.txt": "uv",
	}
	files := outputSink.Files()
	if len(files) != len(expectedFiles) {
		t.Fatalf("expected %d files, got %v", len(expectedFiles), files)
	}
	for path, expectedContent := range expectedFiles {
		if content := readFile(t, fileSystem, path); content != expectedContent {
			t.Fatalf("%s: expected %q, got %q", path, expectedContent, content)
		}
		if size := outputSink.Size(path); size != int64(len(expectedContent)) {
			t.Fatalf("%s: expected size %d, got %d", path, len(expectedContent), size)
		}
	}
}

func TestSinkSkipsExistingRotationNames(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSystem, "/out/directory_listing_1.txt", []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	outputSink, err := sink.New(fileSystem, basePath, 4, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for _, chunk := range []string{"1234", "5678", "9"} {
		if writeErr := outputSink.Write(chunk); writeErr != nil {
			t.Fatalf("Write error: %v", writeErr)
		}
	}
	if closeErr := outputSink.Close(); closeErr != nil {
		t.Fatalf("Close error: %v", closeErr)
	}
	if content := readFile(t, fileSystem, "/out/directory_listing_1.txt"); content != "stale" {
		t.Fatalf("existing rotation file was overwritten: %q", content)
	}
	if content := readFile(t, fileSystem, "/out/directory_listing_2.txt"); content != "5678" {
		t.Fatalf("unexpected second file content %q", content)
	}
	if content := readFile(t, fileSystem, "/out/directory_listing_3.txt"); content != "9" {
		t.Fatalf("unexpected third file content %q", content)
	}
}

func TestSinkNeverSplitsOversizedWrite(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	outputSink, err := sink.New(fileSystem, basePath, 5, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	oversized := strings.Repeat("x", 12)
	for _, chunk := range []string{oversized, "ab", oversized} {
		if writeErr := outputSink.Write(chunk); writeErr != nil {
			t.Fatalf("Write error: %v", writeErr)
		}
	}
	if closeErr := outputSink.Close(); closeErr != nil {
		t.Fatalf("Close error: %v", closeErr)
	}
	if content := readFile(t, fileSystem, basePath); content != oversized {
		t.Fatalf("expected oversized write in the empty base file, got %q", content)
	}
	if content := readFile(t, fileSystem, "/out/directory_listing_1.txt"); content != "ab" {
		t.Fatalf("unexpected first rotation %q", content)
	}
	if content := readFile(t, fileSystem, "/out/directory_listing_2.txt"); content != oversized {
		t.Fatalf("unexpected second rotation %q", content)
	}
}

func TestSinkCountsUTF8Bytes(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	outputSink, err := sink.New(fileSystem, basePath, 4, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if writeErr := outputSink.Write("é"); writeErr != nil {
		t.Fatalf("Write error: %v", writeErr)
	}
	if writeErr := outputSink.Write("éé"); writeErr != nil {
		t.Fatalf("Write error: %v", writeErr)
	}
	_ = outputSink.Close()
	if len(outputSink.Files()) != 2 {
		t.Fatalf("expected rotation after 2+4 bytes, got files %v", outputSink.Files())
	}
}

func TestSinkWithoutThresholdNeverRotates(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	outputSink, err := sink.New(fileSystem, "/tree.txt", 0, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for index := 0; index < 100; index++ {
		if writeErr := outputSink.Write(strings.Repeat("y", 100)); writeErr != nil {
			t.Fatalf("Write error: %v", writeErr)
		}
	}
	_ = outputSink.Close()
	if len(outputSink.Files()) != 1 {
		t.Fatalf("expected a single file, got %v", outputSink.Files())
	}
}

func TestSinkTruncatesExistingBase(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSystem, basePath, []byte("previous run output"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	outputSink, err := sink.New(fileSystem, basePath, 100, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if writeErr := outputSink.Write("new"); writeErr != nil {
		t.Fatalf("Write error: %v", writeErr)
	}
	_ = outputSink.Close()
	if content := readFile(t, fileSystem, basePath); content != "new" {
		t.Fatalf("expected truncated base file, got %q", content)
	}
}

func TestSinkWriteAfterClose(t *testing.T) {
	outputSink, err := sink.New(afero.NewMemMapFs(), basePath, 100, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if closeErr := outputSink.Close(); closeErr != nil {
		t.Fatalf("Close error: %v", closeErr)
	}
	if closeErr := outputSink.Close(); closeErr != nil {
		t.Fatalf("second Close error: %v", closeErr)
	}
	if writeErr := outputSink.Write("late"); !errors.Is(writeErr, sink.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", writeErr)
	}
}

func TestRotatedFiles(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	for _, name := range []string{
		"/out/directory_listing.txt",
		"/out/directory_listing_1.txt",
		"/out/directory_listing_12.txt",
		"/out/directory_listing_backup.txt",
		"/out/directory_listing_0.txt",
		"/out/tree.txt",
	} {
		if err := afero.WriteFile(fileSystem, name, []byte("x"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	rotated, err := sink.RotatedFiles(fileSystem, basePath)
	if err != nil {
		t.Fatalf("RotatedFiles error: %v", err)
	}
	sort.Strings(rotated)
	expected := []string{"/out/directory_listing_1.txt", "/out/directory_listing_12.txt"}
	if len(rotated) != len(expected) || rotated[0] != expected[0] || rotated[1] != expected[1] {
		t.Fatalf("expected %v, got %v", expected, rotated)
	}
}

func TestRotationNaming(t *testing.T) {
	if path := sink.RotationPath("out/tree.txt", 3); path != "out/tree_3.txt" {
		t.Fatalf("unexpected rotation path %s", path)
	}
	if path := sink.RotationPath("listing", 1); path != "listing_1" {
		t.Fatalf("unexpected rotation path without extension %s", path)
	}
	if glob := sink.RotationGlob("out/directory_listing.txt"); glob != "directory_listing_*.txt" {
		t.Fatalf("unexpected rotation glob %s", glob)
	}
}

func TestIsRotationName(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{name: "directory_listing_1.txt", expected: true},
		{name: "directory_listing_12.txt", expected: true},
		{name: "directory_listing.txt", expected: false},
		{name: "directory_listing_0.txt", expected: false},
		{name: "directory_listing_-1.txt", expected: false},
		{name: "directory_listing_+1.txt", expected: false},
		{name: "directory_listing_notes.txt", expected: false},
		{name: "directory_listing_1.md", expected: false},
		{name: "tree_1.txt", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := sink.IsRotationName("/out/directory_listing.txt", testCase.name); actual != testCase.expected {
				t.Fatalf("IsRotationName(%q) = %t, expected %t", testCase.name, actual, testCase.expected)
			}
		})
	}
}
