// Package clipboard places combined output on the system clipboard.
package clipboard

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available on this system")
	}
	return clipboard.WriteAll(text)
}

// CopyFile copies the entire content of the file at path through copier.
//
// #nosec G304
func CopyFile(copier Copier, path string) error {
	fileContent, readError := os.ReadFile(path)
	if readError != nil {
		return fmt.Errorf("read %s for clipboard: %w", path, readError)
	}
	if copyError := copier.Copy(string(fileContent)); copyError != nil {
		return fmt.Errorf("copy %s to clipboard: %w", path, copyError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
