package commands

import (
	"fmt"

	"github.com/temirov/dirlisting/internal/classifier"
	"github.com/temirov/dirlisting/internal/types"
)

// ListDirectory renders the directory structure under options.Root into output.
// Directories end with a slash. With includeContent, every file accepted by
// classifier.ShouldDumpContent is followed by a Content: marker and its lines.
// Unreadable files produce a single diagnostic line; directory read and output
// errors abort the render.
func ListDirectory(options TraversalOptions, output LineWriter, includeContent bool) error {
	walker, setupError := newTraversal(options, output)
	if setupError != nil {
		return setupError
	}
	return walker.listDirectory(walker.root, 0, includeContent)
}

func (walker *traversal) listDirectory(directoryPath string, depth int, includeContent bool) error {
	entries, listError := walker.visibleEntries(directoryPath)
	if listError != nil {
		return listError
	}
	for _, entry := range entries {
		switch entry.kind {
		case entryKindDirectory, entryKindDirectoryLink:
			if err := walker.write(entryLine(depth, entry.name+types.DirectorySuffix)); err != nil {
				return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
			}
			if entry.kind == entryKindDirectoryLink {
				continue
			}
			if err := walker.listDirectory(entry.fullPath, depth+1, includeContent); err != nil {
				return err
			}
		case entryKindFile:
			if err := walker.write(entryLine(depth, entry.name)); err != nil {
				return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
			}
			if !includeContent || !classifier.ShouldDumpContent(entry.name) {
				continue
			}
			if err := walker.writeContent(entry, depth); err != nil {
				return err
			}
		}
	}
	return nil
}
