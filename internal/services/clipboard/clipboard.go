// Package clipboard copies produced output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
)

const (
	errorReadCopySourceFormat = "read %s for clipboard: %w"
	errorCopyFormat           = "copy %s to clipboard: %w"
)

// ErrNilCopier is returned when no Copier is supplied.
var ErrNilCopier = errors.New("nil clipboard copier")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// CopyFile copies the contents of path on fileSystem through copier.
func CopyFile(copier Copier, fileSystem afero.Fs, path string) error {
	if copier == nil {
		return ErrNilCopier
	}
	content, readErr := afero.ReadFile(fileSystem, path)
	if readErr != nil {
		return fmt.Errorf(errorReadCopySourceFormat, path, readErr)
	}
	if copyErr := copier.Copy(string(content)); copyErr != nil {
		return fmt.Errorf(errorCopyFormat, path, copyErr)
	}
	return nil
}

var _ Copier = (*Service)(nil)
