package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/temirov/combiner/internal/output"
	"github.com/temirov/combiner/internal/types"
)

const (
	testRoot       = "service"
	testOutputPath = "/work/combined_project_code.txt"
)

func TestRenderExtensions(t *testing.T) {
	testCases := []struct {
		name       string
		format     string
		extensions []string
		expected   string
	}{
		{name: "raw", format: types.FormatRaw, extensions: []string{".go", ".md"}, expected: ".go\n.md\n"},
		{name: "raw_empty", format: types.FormatRaw, extensions: nil, expected: ""},
		{name: "json", format: types.FormatJSON, extensions: []string{".go"}, expected: "{\n  \"root\": \"service\",\n  \"extensions\": [\n    \".go\"\n  ]\n}\n"},
		{name: "json_empty", format: types.FormatJSON, extensions: nil, expected: "{\n  \"root\": \"service\",\n  \"extensions\": []\n}\n"},
		{name: "xml", format: types.FormatXML, extensions: []string{".go"}, expected: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<extensions root=\"service\">\n  <extension>.go</extension>\n</extensions>\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var buffer bytes.Buffer
			if err := output.RenderExtensions(&buffer, testCase.format, testRoot, testCase.extensions); err != nil {
				t.Fatalf("RenderExtensions error: %v", err)
			}
			if buffer.String() != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, buffer.String())
			}
		})
	}
}

func TestRenderCombineResult(t *testing.T) {
	result := types.CombineResult{
		OutputPath:   testOutputPath,
		FilesWritten: 2,
		BytesWritten: 2048,
		Failures:     []types.FileFailure{{RelativePath: "broken.go", Err: errors.New("permission denied")}},
		Tokens:       12,
		TokenModel:   "gpt-4o",
	}

	var raw bytes.Buffer
	if err := output.RenderCombineResult(&raw, types.FormatRaw, result); err != nil {
		t.Fatalf("raw render error: %v", err)
	}
	expectedRaw := testOutputPath + ": 2 files, 2kb\ntokens: 12 (gpt-4o)\nskipped broken.go: permission denied\n"
	if raw.String() != expectedRaw {
		t.Fatalf("expected %q, got %q", expectedRaw, raw.String())
	}

	var structured bytes.Buffer
	if err := output.RenderCombineResult(&structured, types.FormatJSON, result); err != nil {
		t.Fatalf("json render error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(structured.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["outputPath"] != testOutputPath || decoded["tokens"] != float64(12) {
		t.Fatalf("unexpected json report %v", decoded)
	}

	var markup bytes.Buffer
	if err := output.RenderCombineResult(&markup, types.FormatXML, result); err != nil {
		t.Fatalf("xml render error: %v", err)
	}
	if !strings.Contains(markup.String(), "<failure path=\"broken.go\">permission denied</failure>") {
		t.Fatalf("unexpected xml report %s", markup.String())
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	if output.IsSupportedFormat("yaml") {
		t.Fatalf("yaml should not be supported")
	}
	if err := output.RenderExtensions(&bytes.Buffer{}, "yaml", testRoot, []string{".go"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
