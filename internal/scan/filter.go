// Package scan walks a root directory and classifies the files beneath it.
package scan

// FilterDirectoryNames returns the names that are not in the excluded set, preserving order.
func FilterDirectoryNames(directoryNames []string, excludedDirectoryNames map[string]struct{}) []string {
	retainedNames := make([]string, 0, len(directoryNames))
	for _, directoryName := range directoryNames {
		if IsExcludedDirectoryName(directoryName, excludedDirectoryNames) {
			continue
		}
		retainedNames = append(retainedNames, directoryName)
	}
	return retainedNames
}

// IsExcludedDirectoryName reports whether a directory with this exact name is never traversed.
func IsExcludedDirectoryName(directoryName string, excludedDirectoryNames map[string]struct{}) bool {
	_, excluded := excludedDirectoryNames[directoryName]
	return excluded
}
