// Package types defines the cross‑package constants and data structures used by the dirlisting CLI.
package types

const (
	// DefaultListingFileName is the base name of the listing output.
	DefaultListingFileName = "directory_listing.txt"
	// DefaultTreeFileName is the name of the tree output.
	DefaultTreeFileName = "tree.txt"
	// DefaultExcludeFileName is the optional file of extra exclusions read from the root.
	DefaultExcludeFileName = ".dirlistingignore"
	// DefaultMaxFileSize is the listing rotation threshold in bytes.
	DefaultMaxFileSize int64 = 120000
	// DefaultTokenizerModel is the model used for token estimates.
	DefaultTokenizerModel = "gpt-4o"
	// DefaultRoot is the traversal root used when none is configured.
	DefaultRoot = "."

	PhaseListing = "listing"
	PhaseTree    = "tree"

	// FormatRaw selects the plain text run report.
	FormatRaw = "raw"
	// FormatJSON selects the JSON run report.
	FormatJSON = "json"
	// FormatXML selects the XML run report.
	FormatXML = "xml"

	// IndentUnit is the per-depth indentation of every rendered line.
	IndentUnit = "  "
	// EntryPrefix precedes every rendered entry name.
	EntryPrefix = "|-- "
	// DirectorySuffix marks directories in the listing rendering.
	DirectorySuffix = "/"
	// ContentMarker introduces the content block of a file in the listing.
	ContentMarker = "Content:"
	// ContentSectionSeparator divides the structure rendering from the content rendering.
	ContentSectionSeparator = "\n\nFile contents:\n\n"
	// ReadErrorFormat renders an unreadable file in place of its content.
	ReadErrorFormat = "[Error reading file: %v]"
	// BinaryContentOmitted replaces the content of binary files.
	BinaryContentOmitted = "[binary content omitted]"
	// CompletionMessage is printed after a full run.
	CompletionMessage = "The directory listing and tree files have been created."
)

// OutputFile describes one file produced by a run.
type OutputFile struct {
	Phase     string `json:"phase" xml:"phase,attr"`
	Path      string `json:"path" xml:"path"`
	SizeBytes int64  `json:"sizeBytes" xml:"sizeBytes"`
	Size      string `json:"size" xml:"size"`
	Tokens    int    `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Model     string `json:"model,omitempty" xml:"model,omitempty"`
}

// RunReport summarizes the files produced by a run.
type RunReport struct {
	Root  string       `json:"root,omitempty" xml:"root,attr,omitempty"`
	Files []OutputFile `json:"files" xml:"file"`
}
