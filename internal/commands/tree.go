package commands

import (
	"fmt"
)

// WriteTree renders the directory structure under options.Root into output, one
// `|-- name` line per non-ignored entry indented two spaces per depth level.
// Directories carry no suffix and are descended into before their following siblings.
func WriteTree(options TraversalOptions, output LineWriter) error {
	walker, setupError := newTraversal(options, output)
	if setupError != nil {
		return setupError
	}
	return walker.writeTree(walker.root, 0)
}

func (walker *traversal) writeTree(directoryPath string, depth int) error {
	entries, listError := walker.visibleEntries(directoryPath)
	if listError != nil {
		return listError
	}
	for _, entry := range entries {
		if err := walker.write(entryLine(depth, entry.name)); err != nil {
			return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
		}
		if entry.kind != entryKindDirectory {
			continue
		}
		if err := walker.writeTree(entry.fullPath, depth+1); err != nil {
			return err
		}
	}
	return nil
}
