// Package filter decides which directory entries are skipped during traversal.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/dirlisting/internal/utils"
)

const hiddenPrefix = "."

// DefaultIgnoredFolders lists the folder tokens whose presence in a path skips it.
var DefaultIgnoredFolders = []string{
	".venv", "venv", "env", ".idea", ".git", "node_modules", "__pycache__",
	"dist", "build", ".DS_Store", ".vscode", "target", "out",
	".pytest_cache", ".mypy_cache", "logs", "coverage", ".css",
}

// Filter holds the exclusion set of a run. The zero value ignores dotfiles only.
type Filter struct {
	// IgnoredFolders are matched against the path of every entry.
	IgnoredFolders []string
	// Excluded holds exact entry names to skip.
	Excluded []string
	// ExcludePatterns holds doublestar globs matched against the entry name and its relative path.
	ExcludePatterns []string
	// SubstringMatch matches IgnoredFolders by substring containment on the path instead
	// of path-segment equality.
	SubstringMatch bool
	// RootExclude, when set, skips entries directly under the root whose name it accepts.
	RootExclude func(name string) bool
}

// New returns a Filter using DefaultIgnoredFolders and the provided exclusions.
func New(excluded []string, excludePatterns []string, substringMatch bool) Filter {
	return Filter{
		IgnoredFolders:  append([]string(nil), DefaultIgnoredFolders...),
		Excluded:        utils.DeduplicatePatterns(excluded),
		ExcludePatterns: utils.DeduplicatePatterns(excludePatterns),
		SubstringMatch:  substringMatch,
	}
}

// ShouldIgnore reports whether the entry called name at relativePath (relative to the
// traversal root) is skipped. Skipping a directory skips its descendants.
func (filter Filter) ShouldIgnore(name string, relativePath string) bool {
	if strings.HasPrefix(name, hiddenPrefix) {
		return true
	}
	if utils.ContainsString(filter.Excluded, name) {
		return true
	}
	if filter.RootExclude != nil && len(utils.PathSegments(relativePath)) == 1 && filter.RootExclude(name) {
		return true
	}
	if filter.matchesIgnoredFolder(relativePath) {
		return true
	}
	return filter.matchesExcludePattern(name, relativePath)
}

func (filter Filter) matchesIgnoredFolder(relativePath string) bool {
	if filter.SubstringMatch {
		for _, ignoredFolder := range filter.IgnoredFolders {
			if strings.Contains(relativePath, ignoredFolder) {
				return true
			}
		}
		return false
	}
	for _, segment := range utils.PathSegments(relativePath) {
		if utils.ContainsString(filter.IgnoredFolders, segment) {
			return true
		}
	}
	return false
}

func (filter Filter) matchesExcludePattern(name string, relativePath string) bool {
	if len(filter.ExcludePatterns) == 0 {
		return false
	}
	normalizedPath := strings.Join(utils.PathSegments(relativePath), "/")
	for _, pattern := range filter.ExcludePatterns {
		if nameMatched, _ := doublestar.Match(pattern, name); nameMatched {
			return true
		}
		if pathMatched, _ := doublestar.Match(pattern, normalizedPath); pathMatched {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether an entry is skipped using DefaultIgnoredFolders with the
// legacy substring semantics: name starts with a dot, name is in excludeList, or
// fullPath contains any ignored folder token.
func ShouldIgnore(name string, fullPath string, excludeList []string) bool {
	legacyFilter := Filter{
		IgnoredFolders: DefaultIgnoredFolders,
		Excluded:       excludeList,
		SubstringMatch: true,
	}
	return legacyFilter.ShouldIgnore(name, fullPath)
}
