package scan

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// SniffLength is the number of leading bytes decoded to classify a file.
const SniffLength = 1024

// IsTextFile reports whether the first SniffLength bytes of the file decode as UTF-8.
// Open, read, and decode failures all classify the file as not text.
//
// The check only covers the prefix: a file whose later bytes are invalid is still
// reported as text, and its invalid bytes are replaced when the file is combined.
//
// #nosec G304
func IsTextFile(path string) bool {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false
	}
	defer fileHandle.Close()

	buffer := make([]byte, SniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false
	}
	sample := buffer[:bytesRead]
	if bytesRead == SniffLength {
		sample = trimIncompleteRune(sample)
	}
	_, _, validationError := transform.Bytes(encoding.UTF8Validator, sample)
	return validationError == nil
}

// trimIncompleteRune drops a multi-byte sequence cut short by the end of the sample.
func trimIncompleteRune(sample []byte) []byte {
	lowestIndex := len(sample) - utf8.UTFMax
	if lowestIndex < 0 {
		lowestIndex = 0
	}
	for index := len(sample) - 1; index >= lowestIndex; index-- {
		if !utf8.RuneStart(sample[index]) {
			continue
		}
		if !utf8.FullRune(sample[index:]) {
			return sample[:index]
		}
		break
	}
	return sample
}
