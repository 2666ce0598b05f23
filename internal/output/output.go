// Package output renders the results of the scripted commands in raw, JSON, or XML form.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	rawSummaryFormat = "%s: %d files, %s\n"
	rawTokensFormat  = "tokens: %d (%s)\n"
	rawFailureFormat = "skipped %s: %v\n"
)

// IsSupportedFormat reports whether format names a known renderer.
func IsSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

type extensionsReport struct {
	XMLName    xml.Name `json:"-" xml:"extensions"`
	Root       string   `json:"root" xml:"root,attr"`
	Extensions []string `json:"extensions" xml:"extension"`
}

type failureReport struct {
	Path  string `json:"path" xml:"path,attr"`
	Error string `json:"error" xml:",chardata"`
}

type combineReport struct {
	XMLName      xml.Name        `json:"-" xml:"combine"`
	OutputPath   string          `json:"outputPath" xml:"outputPath"`
	FilesWritten int             `json:"filesWritten" xml:"filesWritten"`
	BytesWritten int64           `json:"bytesWritten" xml:"bytesWritten"`
	Tokens       *int            `json:"tokens,omitempty" xml:"tokens,omitempty"`
	TokenModel   string          `json:"tokenModel,omitempty" xml:"tokenModel,omitempty"`
	Failures     []failureReport `json:"failures,omitempty" xml:"failures>failure,omitempty"`
}

// RenderExtensions writes the discovered extensions of root. Raw output is one
// extension per line.
func RenderExtensions(writer io.Writer, format string, root string, extensions []string) error {
	if format == types.FormatRaw {
		if len(extensions) == 0 {
			return nil
		}
		_, writeError := io.WriteString(writer, strings.Join(extensions, "\n")+"\n")
		return writeError
	}
	if extensions == nil {
		extensions = []string{}
	}
	return renderStructured(writer, format, extensionsReport{Root: root, Extensions: extensions})
}

// RenderCombineResult writes the summary of a finished combine.
func RenderCombineResult(writer io.Writer, format string, result types.CombineResult) error {
	if format == types.FormatRaw {
		return renderCombineRaw(writer, result)
	}
	report := combineReport{
		OutputPath:   result.OutputPath,
		FilesWritten: result.FilesWritten,
		BytesWritten: result.BytesWritten,
		TokenModel:   result.TokenModel,
	}
	if result.TokenModel != "" {
		tokens := result.Tokens
		report.Tokens = &tokens
	}
	for _, failure := range result.Failures {
		report.Failures = append(report.Failures, failureReport{Path: failure.RelativePath, Error: failure.Err.Error()})
	}
	return renderStructured(writer, format, report)
}

func renderCombineRaw(writer io.Writer, result types.CombineResult) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, rawSummaryFormat, result.OutputPath, result.FilesWritten, utils.FormatFileSize(result.BytesWritten))
	if result.TokenModel != "" {
		fmt.Fprintf(&builder, rawTokensFormat, result.Tokens, result.TokenModel)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(&builder, rawFailureFormat, failure.RelativePath, failure.Err)
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func renderStructured(writer io.Writer, format string, value any) error {
	switch format {
	case types.FormatJSON:
		encoded, marshalError := json.MarshalIndent(value, indentPrefix, indentSpacer)
		if marshalError != nil {
			return fmt.Errorf("encode json: %w", marshalError)
		}
		_, writeError := writer.Write(append(encoded, '\n'))
		return writeError
	case types.FormatXML:
		encoded, marshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
		if marshalError != nil {
			return fmt.Errorf("encode xml: %w", marshalError)
		}
		_, writeError := io.WriteString(writer, xmlHeader+string(encoded)+"\n")
		return writeError
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
