// Package combine concatenates selected text files into a single output file.
package combine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/combiner/internal/scan"
	"github.com/temirov/combiner/internal/services/clipboard"
	"github.com/temirov/combiner/internal/tokenizer"
	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

var (
	// ErrRootNotSelected reports a combine or confirmation without a root directory.
	ErrRootNotSelected = errors.New("select a root directory first")
	// ErrNoExtensionsSelected reports a combine or confirmation with an empty allow-list.
	ErrNoExtensionsSelected = errors.New("select at least one file extension")
)

const (
	// BannerWidth is the number of separator characters on each banner line.
	BannerWidth      = 80
	bannerCharacter  = "="
	fileHeaderPrefix = "FILE: "
	newline          = "\n"

	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorCreateOutputFormat     = "create output file %s: %w"
	errorWriteOutputFormat      = "write output file %s: %w"
	errorSelectFilesFormat      = "select files under %s: %w"
)

// Option customizes a Combiner.
type Option func(*Combiner)

// WithTokenCounter enables token estimation of the finished output.
func WithTokenCounter(counter tokenizer.Counter, model string) Option {
	return func(combiner *Combiner) {
		combiner.tokenCounter = counter
		combiner.tokenModel = model
	}
}

// WithCopier copies the finished output to the clipboard.
func WithCopier(copier clipboard.Copier) Option {
	return func(combiner *Combiner) {
		combiner.copier = copier
	}
}

// Combiner writes every selected file under a root into one output file.
type Combiner struct {
	configuration types.ScanConfiguration
	scanner       *scan.Scanner
	logger        *zap.Logger
	tokenCounter  tokenizer.Counter
	tokenModel    string
	copier        clipboard.Copier
}

// NewCombiner constructs a Combiner that selects files with scanner.
func NewCombiner(configuration types.ScanConfiguration, scanner *scan.Scanner, logger *zap.Logger, options ...Option) *Combiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	combiner := &Combiner{
		configuration: configuration,
		scanner:       scanner,
		logger:        logger,
	}
	for _, option := range options {
		option(combiner)
	}
	return combiner
}

// OutputPath returns the location of the combined output file.
func (combiner *Combiner) OutputPath() (string, error) {
	workingDirectory := combiner.configuration.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}
	outputFileName := combiner.configuration.OutputFileName
	if outputFileName == "" {
		outputFileName = types.DefaultOutputFileName
	}
	if filepath.IsAbs(outputFileName) {
		return filepath.Clean(outputFileName), nil
	}
	absoluteDirectory, absoluteError := filepath.Abs(workingDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf(errorWorkingDirectoryFormat, absoluteError)
	}
	return filepath.Join(absoluteDirectory, outputFileName), nil
}

// Combine validates the request, selects files under rootPath, and writes them to
// the output file. Files that cannot be opened are recorded in the result and
// omitted; the remaining files are still written.
func (combiner *Combiner) Combine(rootPath string, allowedExtensions []string) (result types.CombineResult, err error) {
	if strings.TrimSpace(rootPath) == "" {
		return types.CombineResult{}, ErrRootNotSelected
	}
	allowedExtensions = normalizeExtensions(allowedExtensions)
	if len(allowedExtensions) == 0 {
		return types.CombineResult{}, ErrNoExtensionsSelected
	}

	outputPath, outputPathError := combiner.OutputPath()
	if outputPathError != nil {
		return types.CombineResult{}, outputPathError
	}
	candidates, selectError := combiner.scanner.SelectFiles(rootPath, allowedExtensions)
	if selectError != nil {
		return types.CombineResult{}, fmt.Errorf(errorSelectFilesFormat, rootPath, selectError)
	}
	candidates = withoutPath(candidates, outputPath)

	// #nosec G304
	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return types.CombineResult{}, fmt.Errorf(errorCreateOutputFormat, outputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorWriteOutputFormat, outputPath, closeError)
		}
	}()

	result.OutputPath = outputPath
	countingOutput := &countingWriter{target: outputFile}
	bufferedOutput := bufio.NewWriter(countingOutput)
	for _, candidate := range candidates {
		written, failure, writeError := combiner.writeEntry(bufferedOutput, candidate)
		if writeError != nil {
			return result, fmt.Errorf(errorWriteOutputFormat, outputPath, writeError)
		}
		if failure != nil {
			combiner.logger.Warn("skipping unreadable file", zap.String("path", candidate.RelativePath), zap.Error(failure.Err))
			result.Failures = append(result.Failures, *failure)
		}
		if written {
			result.FilesWritten++
		}
	}
	if flushError := bufferedOutput.Flush(); flushError != nil {
		return result, fmt.Errorf(errorWriteOutputFormat, outputPath, flushError)
	}
	result.BytesWritten = countingOutput.written

	combiner.logger.Debug("combined files",
		zap.String("output", outputPath),
		zap.Int("files", result.FilesWritten),
		zap.Int("failures", len(result.Failures)),
	)
	combiner.applyPostSteps(&result)
	return result, nil
}

// writeEntry writes one banner and file body. Errors from the source file are
// returned as a FileFailure; errors from the output are returned as an error.
func (combiner *Combiner) writeEntry(output io.Writer, candidate types.CandidateFile) (bool, *types.FileFailure, error) {
	// #nosec G304
	sourceFile, openError := os.Open(candidate.AbsolutePath)
	if openError != nil {
		return false, &types.FileFailure{RelativePath: candidate.RelativePath, Err: openError}, nil
	}
	defer sourceFile.Close()

	if _, bannerError := io.WriteString(output, FormatBanner(candidate.RelativePath)); bannerError != nil {
		return false, nil, bannerError
	}

	var failure *types.FileFailure
	decodingReader := transform.NewReader(sourceFile, unicode.UTF8.NewDecoder())
	if _, copyError := io.Copy(output, sourceReaderOnly{decodingReader}); copyError != nil {
		var sourceError sourceReadError
		if !errors.As(copyError, &sourceError) {
			return true, nil, copyError
		}
		failure = &types.FileFailure{RelativePath: candidate.RelativePath, Err: sourceError.err}
	}
	if _, newlineError := io.WriteString(output, newline); newlineError != nil {
		return true, nil, newlineError
	}
	return true, failure, nil
}

func (combiner *Combiner) applyPostSteps(result *types.CombineResult) {
	if combiner.tokenCounter != nil {
		countResult, countError := tokenizer.CountFile(combiner.tokenCounter, result.OutputPath)
		if countError != nil {
			combiner.logger.Warn("failed to count tokens", zap.String("output", result.OutputPath), zap.Error(countError))
		} else if countResult.Counted {
			result.Tokens = countResult.Tokens
			result.TokenModel = combiner.tokenModel
		}
	}
	if combiner.copier != nil {
		if copyError := clipboard.CopyFile(combiner.copier, result.OutputPath); copyError != nil {
			combiner.logger.Warn("failed to copy output to clipboard", zap.Error(copyError))
		}
	}
}

// FormatBanner renders the delimiter block written before each file's content.
func FormatBanner(relativePath string) string {
	separatorLine := strings.Repeat(bannerCharacter, BannerWidth)
	var builder strings.Builder
	builder.WriteString(newline)
	builder.WriteString(separatorLine)
	builder.WriteString(newline)
	builder.WriteString(fileHeaderPrefix)
	builder.WriteString(relativePath)
	builder.WriteString(newline)
	builder.WriteString(separatorLine)
	builder.WriteString(newline)
	builder.WriteString(newline)
	return builder.String()
}

func normalizeExtensions(extensions []string) []string {
	var normalized []string
	for _, extension := range extensions {
		if normalizedExtension := utils.NormalizeExtension(extension); normalizedExtension != "" {
			normalized = append(normalized, normalizedExtension)
		}
	}
	return normalized
}

// withoutPath drops the candidate located at excludedPath so the output never includes itself.
func withoutPath(candidates []types.CandidateFile, excludedPath string) []types.CandidateFile {
	resolvedExcluded := resolvePath(excludedPath)
	filtered := candidates[:0]
	for _, candidate := range candidates {
		if resolvePath(candidate.AbsolutePath) == resolvedExcluded {
			continue
		}
		filtered = append(filtered, candidate)
	}
	return filtered
}

// resolvePath resolves symbolic links in the directory portion of path.
func resolvePath(path string) string {
	resolvedDirectory, resolveError := filepath.EvalSymlinks(filepath.Dir(path))
	if resolveError != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(resolvedDirectory, filepath.Base(path))
}

// countingWriter tracks the number of bytes that reached the output file.
type countingWriter struct {
	target  io.Writer
	written int64
}

func (writer *countingWriter) Write(data []byte) (int, error) {
	bytesWritten, writeError := writer.target.Write(data)
	writer.written += int64(bytesWritten)
	return bytesWritten, writeError
}

// sourceReadError marks a failure that came from reading the source file
// rather than writing the output.
type sourceReadError struct {
	err error
}

func (readError sourceReadError) Error() string {
	return readError.err.Error()
}

func (readError sourceReadError) Unwrap() error {
	return readError.err
}

// sourceReaderOnly hides WriterTo so io.Copy reads through Read and read errors can be tagged.
type sourceReaderOnly struct {
	reader io.Reader
}

func (source sourceReaderOnly) Read(buffer []byte) (int, error) {
	bytesRead, readError := source.reader.Read(buffer)
	if readError != nil && readError != io.EOF {
		return bytesRead, sourceReadError{err: readError}
	}
	return bytesRead, readError
}
