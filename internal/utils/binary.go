package utils

import (
	"io"

	"github.com/spf13/afero"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
// A NUL byte marks binary data; invalid UTF-8 alone does not, since such text is
// still rendered with replacement characters.
func IsBinary(data []byte) bool {
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// IsFileBinary reads up to sniffLength bytes from the file at path and determines
// if the content appears to be binary. Unreadable files are reported as not binary
// so the caller surfaces the read error itself.
func IsFileBinary(fileSystem afero.Fs, path string) bool {
	fileHandle, openError := fileSystem.Open(path)
	if openError != nil {
		return false
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return false
	}
	return IsBinary(buffer[:bytesRead])
}
