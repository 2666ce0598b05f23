package shell_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/combiner/internal/combine"
	"github.com/temirov/combiner/internal/scan"
	"github.com/temirov/combiner/internal/shell"
	"github.com/temirov/combiner/internal/types"
)

const (
	apiRootName   = "api"
	emptyRootName = "assets"
	outputName    = "combined.txt"
)

type formFixture struct {
	baseDirectory string
	configuration types.ScanConfiguration
}

func newFormFixture(testingHandle *testing.T) formFixture {
	testingHandle.Helper()
	baseDirectory := testingHandle.TempDir()
	files := map[string]string{
		filepath.Join(apiRootName, "main.go"):     "package main\n",
		filepath.Join(apiRootName, "README.md"):   "# api\n",
		filepath.Join(emptyRootName, "logo.png"):  "\x89PNG\r\n\x1a\n\xff\xfe",
		filepath.Join("node_modules", "index.js"): "module.exports = 1\n",
	}
	for relativePath, content := range files {
		fullPath := filepath.Join(baseDirectory, relativePath)
		if makeDirError := os.MkdirAll(filepath.Dir(fullPath), 0o755); makeDirError != nil {
			testingHandle.Fatalf("mkdir: %v", makeDirError)
		}
		if writeError := os.WriteFile(fullPath, []byte(content), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", relativePath, writeError)
		}
	}
	configuration := types.NewScanConfiguration(baseDirectory)
	configuration.OutputFileName = outputName
	return formFixture{baseDirectory: baseDirectory, configuration: configuration}
}

func (fixture formFixture) run(testingHandle *testing.T, script string) (*shell.Form, string, error) {
	testingHandle.Helper()
	scanner := scan.NewScanner(fixture.configuration, zap.NewNop())
	roots, listError := scanner.ListRootDirectories(fixture.baseDirectory)
	if listError != nil {
		testingHandle.Fatalf("ListRootDirectories error: %v", listError)
	}
	var output bytes.Buffer
	form := shell.NewForm(shell.FormOptions{
		BaseDirectory: fixture.baseDirectory,
		Roots:         roots,
		Discoverer:    scanner,
		Combiner:      combine.NewCombiner(fixture.configuration, scanner, zap.NewNop()),
		Console:       shell.NewPlainConsole(strings.NewReader(script), &output),
	})
	runError := form.Run()
	return form, output.String(), runError
}

// TestFormCombinesSelection drives the form through root choice, a toggle, and confirmation.
func TestFormCombinesSelection(testingHandle *testing.T) {
	fixture := newFormFixture(testingHandle)
	// roots are sorted: 1) api 2) assets
	_, transcript, runError := fixture.run(testingHandle, "1\n1\nc\nq\n")
	if runError != nil {
		testingHandle.Fatalf("Run error: %v", runError)
	}
	if strings.Contains(transcript, "node_modules") {
		testingHandle.Fatalf("excluded directory offered as root:\n%s", transcript)
	}
	for _, expected := range []string{"[ ]  1) .go", "[x]  2) .md", "[Done] Combined file created:", "1 files"} {
		if !strings.Contains(transcript, expected) {
			testingHandle.Fatalf("transcript missing %q:\n%s", expected, transcript)
		}
	}
	content, readError := os.ReadFile(filepath.Join(fixture.baseDirectory, outputName))
	if readError != nil {
		testingHandle.Fatalf("read output: %v", readError)
	}
	if !strings.Contains(string(content), "FILE: README.md") || strings.Contains(string(content), "FILE: main.go") {
		testingHandle.Fatalf("unexpected combined output:\n%s", content)
	}
}

// TestFormWarnings verifies validation warnings leave the form open and write nothing.
func TestFormWarnings(testingHandle *testing.T) {
	testCases := []struct {
		name            string
		script          string
		expectedMessage string
		expectedPhase   shell.Phase
	}{
		{name: "confirm without root", script: "c\n", expectedMessage: "[Warning] Please select a directory.", expectedPhase: shell.PhaseIdle},
		{name: "confirm with nothing checked", script: "r 1\nn\nc\n", expectedMessage: "[Warning] Select at least one extension.", expectedPhase: shell.PhaseRootSelected},
		{name: "root without text files", script: "r 2\nc\n", expectedMessage: "No text files found", expectedPhase: shell.PhaseRootSelected},
		{name: "out of range root", script: "r 9\n", expectedMessage: "\"9\" is not a number between 1 and 2.", expectedPhase: shell.PhaseIdle},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			fixture := newFormFixture(subTest)
			form, transcript, runError := fixture.run(subTest, testCase.script)
			if runError != nil {
				subTest.Fatalf("Run error: %v", runError)
			}
			if !strings.Contains(transcript, testCase.expectedMessage) {
				subTest.Fatalf("transcript missing %q:\n%s", testCase.expectedMessage, transcript)
			}
			if form.State().Phase() != testCase.expectedPhase {
				subTest.Fatalf("expected phase %s, got %s", testCase.expectedPhase, form.State().Phase())
			}
			if _, statError := os.Stat(filepath.Join(fixture.baseDirectory, outputName)); !os.IsNotExist(statError) {
				subTest.Fatalf("expected no output file, stat error: %v", statError)
			}
		})
	}
}

// TestFormSwitchingRootResetsChecklist verifies a new root replaces the extension list.
func TestFormSwitchingRootResetsChecklist(testingHandle *testing.T) {
	fixture := newFormFixture(testingHandle)
	form, _, runError := fixture.run(testingHandle, "1\nn\nr 2\n")
	if runError != nil {
		testingHandle.Fatalf("Run error: %v", runError)
	}
	state := form.State()
	if state.Root != emptyRootName || len(state.Extensions) != 0 {
		testingHandle.Fatalf("unexpected state after switching roots: %+v", state)
	}
}

// TestFormWithoutRoots verifies the form refuses to start when nothing can be chosen.
func TestFormWithoutRoots(testingHandle *testing.T) {
	var output bytes.Buffer
	form := shell.NewForm(shell.FormOptions{
		Console: shell.NewPlainConsole(strings.NewReader(""), &output),
	})
	if runError := form.Run(); !errors.Is(runError, shell.ErrNoRootDirectories) {
		testingHandle.Fatalf("expected ErrNoRootDirectories, got %v", runError)
	}
	if !strings.Contains(output.String(), "[Error] No directories found.") {
		testingHandle.Fatalf("expected error dialog, got %q", output.String())
	}
}
