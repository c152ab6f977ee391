package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/dirlisting/internal/tokenizer"
	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

type stubCopier struct {
	copied []string
}

func (copier *stubCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type stubCounter struct{}

func (stubCounter) Name() string { return "stub" }

func (stubCounter) CountString(input string) (int, error) { return len(strings.Fields(input)), nil }

func stubCounterFactory(cfg tokenizer.Config) (tokenizer.Counter, string, error) {
	return stubCounter{}, cfg.Model, nil
}

func newTestApplication(t *testing.T) (*application, *stubCopier, string) {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	workingDirectory := t.TempDir()
	copier := &stubCopier{}
	app := newApplication()
	app.copier = copier
	app.newCounter = stubCounterFactory
	app.workingDirectory = workingDirectory
	app.selfName = "dirlisting"
	return app, copier, workingDirectory
}

func writeProjectFile(t *testing.T, root, relativePath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", relativePath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relativePath, err)
	}
}

func readProjectFile(t *testing.T, root, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(content)
}

func executeCommand(t *testing.T, app *application, arguments ...string) (string, error) {
	t.Helper()
	rootCommand := createRootCommand(app)
	var output bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetErr(&output)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	executeErr := rootCommand.Execute()
	return output.String(), executeErr
}

func TestRootCommandWritesBothFiles(t *testing.T) {
	app, _, workingDirectory := newTestApplication(t)
	writeProjectFile(t, workingDirectory, "proj/a.py", "x=1\n")
	writeProjectFile(t, workingDirectory, "proj/node_modules/lib.js", "module.exports = 1\n")

	output, err := executeCommand(t, app, "--root", "proj")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if strings.TrimSpace(output) != types.CompletionMessage {
		t.Fatalf("unexpected output %q", output)
	}
	projectRoot := filepath.Join(workingDirectory, "proj")
	if tree := readProjectFile(t, projectRoot, types.DefaultTreeFileName); tree != "|-- a.py\n" {
		t.Fatalf("unexpected tree %q", tree)
	}
	expectedListing := "|-- a.py\n\n\nFile contents:\n\n|-- a.py\n  Content:\n    x=1\n"
	if listing := readProjectFile(t, projectRoot, types.DefaultListingFileName); listing != expectedListing {
		t.Fatalf("unexpected listing %q", listing)
	}
}

func TestSubcommandsRunSinglePhase(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectListing bool
		expectTree    bool
	}{
		{name: "listing", arguments: []string{"listing"}, expectListing: true},
		{name: "tree", arguments: []string{"tree"}, expectTree: true},
		{name: "tree_alias", arguments: []string{"t"}, expectTree: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			app, _, workingDirectory := newTestApplication(t)
			writeProjectFile(t, workingDirectory, "main.py", "print(1)\n")
			if _, err := executeCommand(t, app, testCase.arguments...); err != nil {
				t.Fatalf("execute error: %v", err)
			}
			listingExists, _ := afero.Exists(afero.NewOsFs(), filepath.Join(workingDirectory, types.DefaultListingFileName))
			treeExists, _ := afero.Exists(afero.NewOsFs(), filepath.Join(workingDirectory, types.DefaultTreeFileName))
			if listingExists != testCase.expectListing || treeExists != testCase.expectTree {
				t.Fatalf("expected listing=%v tree=%v, got listing=%v tree=%v", testCase.expectListing, testCase.expectTree, listingExists, treeExists)
			}
		})
	}
}

func TestFlagsOverrideConfiguration(t *testing.T) {
	app, copier, workingDirectory := newTestApplication(t)
	writeProjectFile(t, workingDirectory, utils.ConfigFileName, "exclude: [fixtures]\nmax_file_size: 20\ncopy: false\n")
	writeProjectFile(t, workingDirectory, "a.py", "1\n")
	writeProjectFile(t, workingDirectory, "b.py", "2\n")
	writeProjectFile(t, workingDirectory, "fixtures/seed.sql", "select 1;\n")
	writeProjectFile(t, workingDirectory, "scratch.tmp", "tmp\n")

	output, err := executeCommand(t, app, "--exclude-pattern", "*.tmp", "--max-size", "0", "--copy", "yes", "--tokens")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(workingDirectory, "directory_listing_1.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no rotation with --max-size 0, stat error %v", statErr)
	}
	tree := readProjectFile(t, workingDirectory, types.DefaultTreeFileName)
	if tree != "|-- a.py\n|-- b.py\n" {
		t.Fatalf("unexpected tree %q", tree)
	}
	if len(copier.copied) != 1 || copier.copied[0] != tree {
		t.Fatalf("expected tree on the clipboard, got %q", copier.copied)
	}
	if !strings.Contains(output, "tokens, gpt-4o)") {
		t.Fatalf("expected a token report, got %q", output)
	}
}

func TestConfigurationRotatesListing(t *testing.T) {
	app, _, workingDirectory := newTestApplication(t)
	writeProjectFile(t, workingDirectory, "custom.yaml", "max_file_size: 20\n")
	writeProjectFile(t, workingDirectory, "a.py", "1\n")
	writeProjectFile(t, workingDirectory, "b.py", "2\n")

	if _, err := executeCommand(t, app, "listing", "--config", "custom.yaml"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(workingDirectory, "directory_listing_1.txt")); statErr != nil {
		t.Fatalf("expected a rotated listing: %v", statErr)
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	app, _, workingDirectory := newTestApplication(t)
	output, err := executeCommand(t, app, "init")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if !strings.Contains(output, expectedPath) {
		t.Fatalf("expected %s in output %q", expectedPath, output)
	}
	if _, err := executeCommand(t, app, "init"); err == nil {
		t.Fatalf("expected error when configuration exists")
	}
	if _, err := executeCommand(t, app, "init", "--force"); err != nil {
		t.Fatalf("expected overwrite with --force, got %v", err)
	}
}

func TestRootCommandRejectsArguments(t *testing.T) {
	app, _, _ := newTestApplication(t)
	if _, err := executeCommand(t, app, "unexpected"); err == nil {
		t.Fatalf("expected error for positional arguments")
	}
}

func TestMaxSizeFlagValidation(t *testing.T) {
	testCases := []struct {
		name        string
		value       string
		expectError bool
	}{
		{name: "negative", value: "-5", expectError: true},
		{name: "zero", value: "0", expectError: false},
		{name: "positive", value: "64", expectError: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			app, _, workingDirectory := newTestApplication(t)
			writeProjectFile(t, workingDirectory, "a.py", "x=1\n")
			_, err := executeCommand(t, app, "listing", "--max-size="+testCase.value)
			if testCase.expectError {
				if err == nil || !strings.Contains(err.Error(), "max-size") {
					t.Fatalf("expected max-size error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute error: %v", err)
			}
		})
	}
}

func TestJSONReportReplacesCompletionMessage(t *testing.T) {
	app, _, workingDirectory := newTestApplication(t)
	writeProjectFile(t, workingDirectory, "a.py", "x=1\n")
	output, err := executeCommand(t, app, "--format", "json")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	var report types.RunReport
	if decodeErr := json.Unmarshal([]byte(output), &report); decodeErr != nil {
		t.Fatalf("decode report %q: %v", output, decodeErr)
	}
	if len(report.Files) != 2 || report.Files[1].Path != filepath.Join(workingDirectory, types.DefaultTreeFileName) {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := executeCommand(t, app, "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
