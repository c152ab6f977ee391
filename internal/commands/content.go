package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/dirlisting/internal/classifier"
	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

const lineTerminator = "\n"

// writeContent emits the Content: marker for entry followed by its lines, or a
// single diagnostic line when the file cannot be read.
func (walker *traversal) writeContent(entry visibleEntry, depth int) error {
	if family, special := classifier.SpecialFamily(entry.name); special {
		walker.logger.Debug("special file", zap.String("path", entry.fullPath), zap.String("family", string(family)))
	}
	if err := walker.write(indentation(depth+1) + types.ContentMarker + lineTerminator); err != nil {
		return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
	}

	contentIndent := indentation(depth + 2)
	if walker.skipBinary && utils.IsFileBinary(walker.fileSystem, entry.fullPath) {
		return walker.writeNote(entry, contentIndent+types.BinaryContentOmitted+lineTerminator)
	}

	fileHandle, openError := walker.fileSystem.Open(entry.fullPath)
	if openError != nil {
		return walker.writeReadError(entry, contentIndent, openError)
	}
	defer fileHandle.Close()

	reader := bufio.NewReader(transform.NewReader(fileHandle, unicode.UTF8.NewDecoder()))
	for {
		line, readError := reader.ReadString('\n')
		if line != "" {
			if !strings.HasSuffix(line, lineTerminator) {
				line += lineTerminator
			}
			if err := walker.write(contentIndent + line); err != nil {
				return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
			}
		}
		if readError == io.EOF {
			return nil
		}
		if readError != nil {
			return walker.writeReadError(entry, contentIndent, readError)
		}
	}
}

func (walker *traversal) writeReadError(entry visibleEntry, contentIndent string, readError error) error {
	walker.logger.Warn("unable to read file", zap.String("path", entry.fullPath), zap.Error(readError))
	return walker.writeNote(entry, contentIndent+fmt.Sprintf(types.ReadErrorFormat, readError)+lineTerminator)
}

func (walker *traversal) writeNote(entry visibleEntry, note string) error {
	if err := walker.write(note); err != nil {
		return fmt.Errorf(errorWriteEntryFormat, entry.fullPath, err)
	}
	return nil
}
