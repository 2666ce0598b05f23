package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorStatRootFormat is used when the scan root cannot be inspected.
	errorStatRootFormat = "stat scan root %s: %w"
	// errorRootNotDirectoryFormat is used when the scan root is a file.
	errorRootNotDirectoryFormat = "scan root %s is not a directory"
	// errorReadRootFormat is used when the scan root cannot be listed.
	errorReadRootFormat = "reading directory %s: %w"

	skipReasonAccess    = "access error"
	skipReasonSize      = "exceeds maximum size"
	skipReasonNotText   = "not text"
	skipReasonIrregular = "not a regular file"
)

// Scanner enumerates candidate files beneath a root directory.
type Scanner struct {
	configuration types.ScanConfiguration
	logger        *zap.Logger
	isTextFile    func(string) bool
}

// NewScanner constructs a Scanner for the provided configuration.
func NewScanner(configuration types.ScanConfiguration, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		configuration: configuration,
		logger:        logger,
		isTextFile:    IsTextFile,
	}
}

// DiscoverExtensions returns the sorted, distinct lowercase extensions of every
// text file under rootPath. Files without an extension contribute nothing.
func (scanner *Scanner) DiscoverExtensions(rootPath string) ([]string, error) {
	extensionSet := make(map[string]struct{})
	walkError := scanner.walkCandidates(rootPath, acceptAnyExtension, func(candidate types.CandidateFile) {
		if candidate.Extension == utils.EmptyString {
			return
		}
		extensionSet[candidate.Extension] = struct{}{}
	})
	if walkError != nil {
		return nil, walkError
	}

	extensions := make([]string, 0, len(extensionSet))
	for extension := range extensionSet {
		extensions = append(extensions, extension)
	}
	sort.Strings(extensions)
	return extensions, nil
}

// SelectFiles returns the text files under rootPath whose lowercase extension is
// in allowedExtensions, in walk order.
func (scanner *Scanner) SelectFiles(rootPath string, allowedExtensions []string) ([]types.CandidateFile, error) {
	allowedSet := make(map[string]struct{}, len(allowedExtensions))
	for _, allowedExtension := range allowedExtensions {
		normalizedExtension := utils.NormalizeExtension(allowedExtension)
		if normalizedExtension == utils.EmptyString {
			continue
		}
		allowedSet[normalizedExtension] = struct{}{}
	}

	var candidates []types.CandidateFile
	acceptExtension := func(extension string) bool {
		_, allowed := allowedSet[extension]
		return allowed
	}
	walkError := scanner.walkCandidates(rootPath, acceptExtension, func(candidate types.CandidateFile) {
		candidates = append(candidates, candidate)
	})
	if walkError != nil {
		return nil, walkError
	}
	return candidates, nil
}

// ListRootDirectories returns the sorted names of the immediate subdirectories of
// basePath that are not excluded. Symbolic links to directories are included.
func (scanner *Scanner) ListRootDirectories(basePath string) ([]string, error) {
	directoryEntries, readError := os.ReadDir(basePath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadRootFormat, basePath, readError)
	}

	var directoryNames []string
	for _, directoryEntry := range directoryEntries {
		if !isDirectoryEntry(filepath.Join(basePath, directoryEntry.Name()), directoryEntry) {
			continue
		}
		directoryNames = append(directoryNames, directoryEntry.Name())
	}
	directoryNames = FilterDirectoryNames(directoryNames, scanner.configuration.ExcludedDirectoryNames)
	sort.Strings(directoryNames)
	return directoryNames, nil
}

func acceptAnyExtension(string) bool {
	return true
}

// walkCandidates visits every file under rootPath that passes the exclusion,
// extension, size, and text checks. Excluded directories are pruned at every depth.
func (scanner *Scanner) walkCandidates(rootPath string, acceptExtension func(string) bool, visit func(types.CandidateFile)) error {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		return fmt.Errorf(errorStatRootFormat, rootPath, rootStatError)
	}
	// WalkDir does not follow a symlinked root.
	cleanedRootPath, resolveError := filepath.EvalSymlinks(absoluteRootPath)
	if resolveError != nil {
		return fmt.Errorf(errorStatRootFormat, rootPath, resolveError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf(errorRootNotDirectoryFormat, rootPath)
	}

	return filepath.WalkDir(cleanedRootPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if walkedPath == cleanedRootPath {
				return fmt.Errorf(errorReadRootFormat, rootPath, accessError)
			}
			scanner.logSkip(walkedPath, skipReasonAccess, zap.Error(accessError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if directoryEntry.IsDir() {
			if walkedPath != cleanedRootPath && IsExcludedDirectoryName(directoryEntry.Name(), scanner.configuration.ExcludedDirectoryNames) {
				return filepath.SkipDir
			}
			return nil
		}

		extension := utils.LowercaseExtension(walkedPath)
		if !acceptExtension(extension) {
			return nil
		}

		fileInfo, infoError := os.Stat(walkedPath)
		if infoError != nil {
			scanner.logSkip(walkedPath, skipReasonAccess, zap.Error(infoError))
			return nil
		}
		if !fileInfo.Mode().IsRegular() {
			scanner.logSkip(walkedPath, skipReasonIrregular)
			return nil
		}
		if fileInfo.Size() > scanner.configuration.MaximumFileSize {
			scanner.logSkip(walkedPath, skipReasonSize, zap.Int64("sizeBytes", fileInfo.Size()))
			return nil
		}
		if !scanner.isTextFile(walkedPath) {
			scanner.logSkip(walkedPath, skipReasonNotText)
			return nil
		}

		relativePath, relativeError := filepath.Rel(cleanedRootPath, walkedPath)
		if relativeError != nil {
			relativePath = walkedPath
		}
		visit(types.CandidateFile{
			AbsolutePath: walkedPath,
			RelativePath: relativePath,
			Extension:    extension,
		})
		return nil
	})
}

func (scanner *Scanner) logSkip(path string, reason string, fields ...zap.Field) {
	scanner.logger.Debug("skipping file", append([]zap.Field{zap.String("path", path), zap.String("reason", reason)}, fields...)...)
}

// isDirectoryEntry reports whether the entry is a directory, following symbolic links.
func isDirectoryEntry(entryPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.IsDir() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(entryPath)
	return statError == nil && targetInfo.IsDir()
}
