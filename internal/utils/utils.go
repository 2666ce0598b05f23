// Package utils contains general helper functions used across the combiner tool.
package utils

import (
	"path/filepath"
	"strings"
)

const extensionSeparator = "."

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept. Blank entries are dropped.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; !exists {
			encounteredPatterns[trimmedPattern] = struct{}{}
			result = append(result, trimmedPattern)
		}
	}
	return result
}

// LowercaseExtension returns the lowercase extension of the file name in path,
// including the leading dot. Leading dots of the base name do not start an
// extension, so ".bashrc" and "Makefile" both yield an empty string.
func LowercaseExtension(path string) string {
	baseName := filepath.Base(path)
	stem := strings.TrimLeft(baseName, extensionSeparator)
	separatorIndex := strings.LastIndex(stem, extensionSeparator)
	if separatorIndex < 0 {
		return EmptyString
	}
	return strings.ToLower(stem[separatorIndex:])
}

// NormalizeExtension lowercases an extension and ensures it starts with a dot.
// Blank input yields an empty string.
func NormalizeExtension(extension string) string {
	trimmedExtension := strings.ToLower(strings.TrimSpace(extension))
	if trimmedExtension == "" {
		return EmptyString
	}
	if !strings.HasPrefix(trimmedExtension, extensionSeparator) {
		trimmedExtension = extensionSeparator + trimmedExtension
	}
	return trimmedExtension
}
