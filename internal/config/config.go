// Package config loads run configuration and exclude files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const (
	commentPrefix       = "#"
	globMetacharacters  = "*?[{"
	pathSeparator       = "/"
	errorOpenExcludeFmt = "open exclude file %s: %w"
	errorReadExcludeFmt = "read exclude file %s: %w"
)

// ExcludeRules holds the entries of an exclude file split by kind.
type ExcludeRules struct {
	// Names are exact entry names.
	Names []string
	// Patterns are doublestar globs.
	Patterns []string
}

// LoadExcludeFile reads an exclude file. Blank lines and lines starting with # are
// skipped. A line with glob metacharacters or an inner slash is a pattern; any other
// line, with a trailing slash removed, is an exact name. A missing file yields no rules.
func LoadExcludeFile(fileSystem afero.Fs, excludeFilePath string) (ExcludeRules, error) {
	fileHandle, openFileError := fileSystem.Open(excludeFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return ExcludeRules{}, nil
		}
		return ExcludeRules{}, fmt.Errorf(errorOpenExcludeFmt, excludeFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", excludeFilePath, closeError)
		}
	}()

	var rules ExcludeRules
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		withoutTrailingSlash := strings.TrimSuffix(trimmedLine, pathSeparator)
		if strings.ContainsAny(withoutTrailingSlash, globMetacharacters) || strings.Contains(withoutTrailingSlash, pathSeparator) {
			rules.Patterns = append(rules.Patterns, withoutTrailingSlash)
			continue
		}
		rules.Names = append(rules.Names, withoutTrailingSlash)
	}
	if scanError := scanner.Err(); scanError != nil {
		return ExcludeRules{}, fmt.Errorf(errorReadExcludeFmt, excludeFilePath, scanError)
	}
	return rules, nil
}
