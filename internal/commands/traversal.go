// Package commands renders directory trees and listings for the dirlisting tool.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/dirlisting/internal/filter"
	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

const (
	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// errorWriteEntryFormat is used when rendering an entry fails.
	errorWriteEntryFormat = "writing entry %s: %w"
)

// ErrNilWriter is returned when a render is started without an output.
var ErrNilWriter = errors.New("commands: output writer is nil")

// LineWriter receives rendered text. Each call is one discrete write.
type LineWriter interface {
	Write(text string) error
}

// TraversalOptions configures a Tree Writer or Listing Writer run.
type TraversalOptions struct {
	FileSystem afero.Fs
	Root       string
	Filter     filter.Filter
	// SkipBinary replaces the content of files that look binary with a one-line note.
	SkipBinary bool
	Logger     *zap.Logger
}

type entryKind int

const (
	entryKindOther entryKind = iota
	entryKindFile
	entryKindDirectory
	// entryKindDirectoryLink is a symbolic link to a directory. It is rendered but not descended into.
	entryKindDirectoryLink
)

// visibleEntry is a directory entry that survived filtering.
type visibleEntry struct {
	name     string
	fullPath string
	kind     entryKind
}

type traversal struct {
	fileSystem afero.Fs
	root       string
	filter     filter.Filter
	skipBinary bool
	logger     *zap.Logger
	output     LineWriter
}

func newTraversal(options TraversalOptions, output LineWriter) (*traversal, error) {
	if output == nil {
		return nil, ErrNilWriter
	}
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	root := options.Root
	if root == "" {
		root = "."
	}
	return &traversal{
		fileSystem: fileSystem,
		root:       root,
		filter:     options.Filter,
		skipBinary: options.SkipBinary,
		logger:     utils.LoggerOrNop(options.Logger),
		output:     output,
	}, nil
}

// visibleEntries returns the non-ignored entries of directoryPath sorted by name in byte order.
func (walker *traversal) visibleEntries(directoryPath string) ([]visibleEntry, error) {
	entries, readError := afero.ReadDir(walker.fileSystem, directoryPath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, directoryPath, readError)
	}
	sort.Slice(entries, func(left, right int) bool {
		return entries[left].Name() < entries[right].Name()
	})

	visible := make([]visibleEntry, 0, len(entries))
	for _, entryInfo := range entries {
		entryName := entryInfo.Name()
		fullPath := filepath.Join(directoryPath, entryName)
		relativePath := utils.RelativePathOrSelf(fullPath, walker.root)
		if walker.filter.ShouldIgnore(entryName, relativePath) {
			walker.logger.Debug("ignored entry", zap.String("path", relativePath))
			continue
		}
		visible = append(visible, visibleEntry{
			name:     entryName,
			fullPath: fullPath,
			kind:     walker.resolveKind(fullPath, entryInfo),
		})
	}
	return visible, nil
}

func (walker *traversal) resolveKind(fullPath string, entryInfo os.FileInfo) entryKind {
	mode := entryInfo.Mode()
	switch {
	case mode.IsDir():
		return entryKindDirectory
	case mode.IsRegular():
		return entryKindFile
	case mode&os.ModeSymlink != 0:
		targetInfo, statError := walker.fileSystem.Stat(fullPath)
		if statError != nil {
			return entryKindOther
		}
		if targetInfo.IsDir() {
			return entryKindDirectoryLink
		}
		if targetInfo.Mode().IsRegular() {
			return entryKindFile
		}
	}
	return entryKindOther
}

func (walker *traversal) write(text string) error {
	return walker.output.Write(text)
}

// indentation returns the leading whitespace of a line at depth.
func indentation(depth int) string {
	return strings.Repeat(types.IndentUnit, depth)
}

// entryLine renders one entry line at depth.
func entryLine(depth int, name string) string {
	return indentation(depth) + types.EntryPrefix + name + "\n"
}
