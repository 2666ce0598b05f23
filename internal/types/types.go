// Package types defines every cross‑package data structure used by the combiner CLI.
package types

const (
	// DefaultOutputFileName is the combined output written into the working directory.
	DefaultOutputFileName = "combined_project_code.txt"
	// DefaultMaximumFileSize is the largest file, in bytes, considered for scanning.
	DefaultMaximumFileSize int64 = 1_000_000

	CommandExtensions = "extensions"
	CommandCombine    = "combine"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// DefaultExcludedDirectoryNames returns the built-in deny-set of directory names.
// A fresh slice is returned on every call.
func DefaultExcludedDirectoryNames() []string {
	return []string{
		".git",
		"__pycache__",
		"node_modules",
		".venv",
		"venv",
		"env",
		"dist",
		"build",
	}
}

// ScanConfiguration carries the constants shared by scanning and combining.
type ScanConfiguration struct {
	WorkingDirectory       string
	OutputFileName         string
	MaximumFileSize        int64
	ExcludedDirectoryNames map[string]struct{}
	TokenCountingEnabled   bool
	TokenModel             string
	CopyOutputToClipboard  bool
}

// NewScanConfiguration builds a configuration with the built-in defaults.
func NewScanConfiguration(workingDirectory string) ScanConfiguration {
	return ScanConfiguration{
		WorkingDirectory:       workingDirectory,
		OutputFileName:         DefaultOutputFileName,
		MaximumFileSize:        DefaultMaximumFileSize,
		ExcludedDirectoryNames: NewNameSet(DefaultExcludedDirectoryNames()),
	}
}

// NewNameSet converts a list of names into a lookup set.
func NewNameSet(names []string) map[string]struct{} {
	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		nameSet[name] = struct{}{}
	}
	return nameSet
}

// CandidateFile is one file that survived a scan.
type CandidateFile struct {
	AbsolutePath string
	RelativePath string
	Extension    string
}

// FileFailure records a candidate that could not be written during a combine.
type FileFailure struct {
	RelativePath string
	Err          error
}

// CombineResult summarizes a finished combine.
type CombineResult struct {
	OutputPath   string
	FilesWritten int
	BytesWritten int64
	Failures     []FileFailure
	Tokens       int
	TokenModel   string
}
