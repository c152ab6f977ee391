// Package sink provides a size-bounded output file that rotates to numbered siblings.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/dirlisting/internal/utils"
)

const (
	outputFilePermissions = 0o644
	rotationSeparator     = "_"

	errorCreateOutputFormat = "create output %s: %w"
	errorWriteOutputFormat  = "write output %s: %w"
	errorCloseOutputFormat  = "close output %s: %w"
	errorStatOutputFormat   = "inspect output %s: %w"
)

// ErrClosed is returned when writing to a closed Sink.
var ErrClosed = errors.New("sink: write after close")

// Sink owns the current output file and the number of bytes written to it.
// When a write would push the current file past the threshold, the file is
// closed and the write lands in a new file named <base>_<N><ext>, N being the
// lowest integer starting at 1 with no existing file. A single write is never split.
type Sink struct {
	fileSystem   afero.Fs
	basePath     string
	maxBytes     int64
	logger       *zap.Logger
	current      afero.File
	currentPath  string
	bytesWritten int64
	files        []string
	sizes        map[string]int64
}

// New creates or truncates the file at path and returns a Sink writing to it.
// A maxBytes of zero or less disables rotation.
func New(fileSystem afero.Fs, path string, maxBytes int64, logger *zap.Logger) (*Sink, error) {
	outputSink := &Sink{
		fileSystem: fileSystem,
		basePath:   path,
		maxBytes:   maxBytes,
		logger:     utils.LoggerOrNop(logger),
		sizes:      map[string]int64{},
	}
	if err := outputSink.open(path); err != nil {
		return nil, err
	}
	return outputSink, nil
}

func (outputSink *Sink) open(path string) error {
	fileHandle, openError := outputSink.fileSystem.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermissions)
	if openError != nil {
		return fmt.Errorf(errorCreateOutputFormat, path, openError)
	}
	outputSink.current = fileHandle
	outputSink.currentPath = path
	outputSink.bytesWritten = 0
	outputSink.files = append(outputSink.files, path)
	outputSink.sizes[path] = 0
	return nil
}

// Write appends text to the current output file, rotating first when needed.
func (outputSink *Sink) Write(text string) error {
	if outputSink.current == nil {
		return ErrClosed
	}
	textLength := int64(len(text))
	if outputSink.shouldRotate(textLength) {
		if err := outputSink.rotate(); err != nil {
			return err
		}
	}
	bytesWritten, writeError := outputSink.current.WriteString(text)
	outputSink.bytesWritten += int64(bytesWritten)
	outputSink.sizes[outputSink.currentPath] = outputSink.bytesWritten
	if writeError != nil {
		return fmt.Errorf(errorWriteOutputFormat, outputSink.currentPath, writeError)
	}
	return nil
}

func (outputSink *Sink) shouldRotate(textLength int64) bool {
	if outputSink.maxBytes <= 0 || outputSink.bytesWritten == 0 {
		return false
	}
	return outputSink.bytesWritten+textLength > outputSink.maxBytes
}

func (outputSink *Sink) rotate() error {
	previousPath := outputSink.currentPath
	if err := outputSink.closeCurrent(); err != nil {
		return err
	}
	nextPath, pathError := NextRotationPath(outputSink.fileSystem, outputSink.basePath)
	if pathError != nil {
		return pathError
	}
	if err := outputSink.open(nextPath); err != nil {
		return err
	}
	outputSink.logger.Debug("rotated output", zap.String("from", previousPath), zap.String("to", nextPath))
	return nil
}

func (outputSink *Sink) closeCurrent() error {
	if outputSink.current == nil {
		return nil
	}
	closeError := outputSink.current.Close()
	outputSink.current = nil
	if closeError != nil {
		return fmt.Errorf(errorCloseOutputFormat, outputSink.currentPath, closeError)
	}
	return nil
}

// Close closes the current output file. Closing twice is a no-op.
func (outputSink *Sink) Close() error {
	return outputSink.closeCurrent()
}

// Files returns every file the Sink created, in creation order.
func (outputSink *Sink) Files() []string {
	return append([]string(nil), outputSink.files...)
}

// Size returns the number of bytes the Sink wrote to path.
func (outputSink *Sink) Size(path string) int64 {
	return outputSink.sizes[path]
}

// RotationPath returns <base>_<index><ext> for basePath.
func RotationPath(basePath string, index int) string {
	extension := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, extension)
	return stem + rotationSeparator + strconv.Itoa(index) + extension
}

// RotationGlob returns the glob matching the base names of rotated siblings of basePath.
func RotationGlob(basePath string) string {
	extension := filepath.Ext(basePath)
	stem := strings.TrimSuffix(filepath.Base(basePath), extension)
	return stem + rotationSeparator + "*" + extension
}

// NextRotationPath returns the first RotationPath of basePath, counting from 1, that does not exist.
func NextRotationPath(fileSystem afero.Fs, basePath string) (string, error) {
	for index := 1; ; index++ {
		candidatePath := RotationPath(basePath, index)
		exists, existsError := afero.Exists(fileSystem, candidatePath)
		if existsError != nil {
			return "", fmt.Errorf(errorStatOutputFormat, candidatePath, existsError)
		}
		if !exists {
			return candidatePath, nil
		}
	}
}

// RotatedFiles lists existing rotated siblings of basePath of the form <base>_<N><ext>.
func RotatedFiles(fileSystem afero.Fs, basePath string) ([]string, error) {
	directory := filepath.Dir(basePath)
	pattern := filepath.Join(directory, RotationGlob(basePath))
	candidates, globError := afero.Glob(fileSystem, pattern)
	if globError != nil {
		return nil, fmt.Errorf(errorStatOutputFormat, pattern, globError)
	}
	var rotated []string
	for _, candidate := range candidates {
		if IsRotationName(basePath, filepath.Base(candidate)) {
			rotated = append(rotated, candidate)
		}
	}
	return rotated, nil
}

// IsRotationName reports whether name is the base name of a rotated sibling of basePath,
// that is <base>_<N><ext> with N a positive integer.
func IsRotationName(basePath string, name string) bool {
	extension := filepath.Ext(basePath)
	prefix := strings.TrimSuffix(filepath.Base(basePath), extension) + rotationSeparator
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, extension) {
		return false
	}
	indexText := strings.TrimSuffix(strings.TrimPrefix(name, prefix), extension)
	if indexText == "" || indexText[0] < '0' || indexText[0] > '9' {
		return false
	}
	index, parseError := strconv.Atoi(indexText)
	return parseError == nil && index >= 1
}
