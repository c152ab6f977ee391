// Package snapshot drives a full run: the directory listing with content, then the tree.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/dirlisting/internal/commands"
	"github.com/temirov/dirlisting/internal/config"
	"github.com/temirov/dirlisting/internal/filter"
	"github.com/temirov/dirlisting/internal/services/clipboard"
	"github.com/temirov/dirlisting/internal/sink"
	"github.com/temirov/dirlisting/internal/tokenizer"
	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

const (
	errorLoadExcludeFileFormat = "load exclusions: %w"
	errorPruneFormat           = "prune rotated listing %s: %w"
	errorListingFormat         = "generate listing: %w"
	errorTreeFormat            = "generate tree: %w"
	errorCloseFormat           = "close %s: %w"
	errorCountTokensFormat     = "count tokens in %s: %w"
)

// Options configures a run.
type Options struct {
	FileSystem      afero.Fs
	Root            string
	Exclude         []string
	ExcludePatterns []string
	// ExcludeFile is read relative to Root when present. Empty disables it.
	ExcludeFile     string
	SelfName        string
	ListingFileName string
	TreeFileName    string
	// MaxFileSize is the listing rotation threshold in bytes. Zero disables rotation;
	// types.DefaultMaxFileSize is the usual value.
	MaxFileSize     int64
	SubstringMatch  bool
	SkipBinary      bool
	PruneRotated    bool
	// TokenCounter, when set, adds a token estimate to every reported file.
	TokenCounter tokenizer.Counter
	TokenModel   string
	// CopyTree copies the tree file through Copier after a run.
	CopyTree bool
	Copier   clipboard.Copier
	Logger   *zap.Logger
}

// Service produces the listing and tree files of one root.
type Service struct {
	options    Options
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewService applies defaults to options and returns a Service. An empty Root,
// ListingFileName or TreeFileName takes the package default. MaxFileSize is used as
// given, so the zero value writes a single unrotated listing.
func NewService(options Options) *Service {
	if options.FileSystem == nil {
		options.FileSystem = afero.NewOsFs()
	}
	if options.Root == "" {
		options.Root = types.DefaultRoot
	}
	if options.ListingFileName == "" {
		options.ListingFileName = types.DefaultListingFileName
	}
	if options.TreeFileName == "" {
		options.TreeFileName = types.DefaultTreeFileName
	}
	return &Service{
		options:    options,
		fileSystem: options.FileSystem,
		logger:     utils.LoggerOrNop(options.Logger),
	}
}

// ListingPath is the base listing file inside the root.
func (service *Service) ListingPath() string {
	return filepath.Join(service.options.Root, service.options.ListingFileName)
}

// TreePath is the tree file inside the root.
func (service *Service) TreePath() string {
	return filepath.Join(service.options.Root, service.options.TreeFileName)
}

// GenerateListing writes the structure of the root, the content separator and the
// structure again with file content, rotating the output as it grows. It returns
// every listing file written, base file first.
func (service *Service) GenerateListing() ([]types.OutputFile, error) {
	traversalOptions, optionsErr := service.traversalOptions()
	if optionsErr != nil {
		return nil, optionsErr
	}
	if service.options.PruneRotated {
		if err := service.pruneRotated(); err != nil {
			return nil, err
		}
	}

	outputSink, openErr := sink.New(service.fileSystem, service.ListingPath(), service.options.MaxFileSize, service.logger)
	if openErr != nil {
		return nil, fmt.Errorf(errorListingFormat, openErr)
	}
	renderErr := renderListing(traversalOptions, outputSink)
	closeErr := outputSink.Close()
	if renderErr != nil {
		return nil, fmt.Errorf(errorListingFormat, renderErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf(errorCloseFormat, service.ListingPath(), closeErr)
	}

	outputFiles := make([]types.OutputFile, 0, len(outputSink.Files()))
	for _, path := range outputSink.Files() {
		outputFile, describeErr := service.describe(types.PhaseListing, path, outputSink.Size(path))
		if describeErr != nil {
			return nil, describeErr
		}
		outputFiles = append(outputFiles, outputFile)
	}
	service.logger.Debug("listing written", zap.Int("files", len(outputFiles)), zap.String("path", service.ListingPath()))
	return outputFiles, nil
}

func renderListing(traversalOptions commands.TraversalOptions, outputSink *sink.Sink) error {
	if err := commands.ListDirectory(traversalOptions, outputSink, false); err != nil {
		return err
	}
	if err := outputSink.Write(types.ContentSectionSeparator); err != nil {
		return err
	}
	return commands.ListDirectory(traversalOptions, outputSink, true)
}

// GenerateTree writes the indented tree of the root without rotation.
func (service *Service) GenerateTree() (types.OutputFile, error) {
	traversalOptions, optionsErr := service.traversalOptions()
	if optionsErr != nil {
		return types.OutputFile{}, optionsErr
	}
	treePath := service.TreePath()
	outputSink, openErr := sink.New(service.fileSystem, treePath, 0, service.logger)
	if openErr != nil {
		return types.OutputFile{}, fmt.Errorf(errorTreeFormat, openErr)
	}
	renderErr := commands.WriteTree(traversalOptions, outputSink)
	closeErr := outputSink.Close()
	if renderErr != nil {
		return types.OutputFile{}, fmt.Errorf(errorTreeFormat, renderErr)
	}
	if closeErr != nil {
		return types.OutputFile{}, fmt.Errorf(errorCloseFormat, treePath, closeErr)
	}
	service.logger.Debug("tree written", zap.String("path", treePath))
	return service.describe(types.PhaseTree, treePath, outputSink.Size(treePath))
}

// Run generates the listing, then the tree, and copies the tree when requested.
func (service *Service) Run() (types.RunReport, error) {
	report := types.RunReport{Root: service.options.Root}
	listingFiles, listingErr := service.GenerateListing()
	if listingErr != nil {
		return types.RunReport{}, listingErr
	}
	report.Files = append(report.Files, listingFiles...)

	treeFile, treeErr := service.GenerateTree()
	if treeErr != nil {
		return types.RunReport{}, treeErr
	}
	report.Files = append(report.Files, treeFile)

	if service.options.CopyTree {
		if err := service.CopyTree(); err != nil {
			return types.RunReport{}, err
		}
	}
	return report, nil
}

// CopyTree copies the tree file to the clipboard.
func (service *Service) CopyTree() error {
	return clipboard.CopyFile(service.options.Copier, service.fileSystem, service.TreePath())
}

// Filter builds the exclusion set shared by both phases: configured names and globs,
// the exclude file entries, the outputs themselves, the running executable and the
// numbered listing files directly under the root.
func (service *Service) Filter() (filter.Filter, error) {
	excluded := append([]string{}, service.options.Exclude...)
	excludePatterns := append([]string{}, service.options.ExcludePatterns...)

	if service.options.ExcludeFile != "" {
		rules, loadErr := config.LoadExcludeFile(service.fileSystem, filepath.Join(service.options.Root, service.options.ExcludeFile))
		if loadErr != nil {
			return filter.Filter{}, fmt.Errorf(errorLoadExcludeFileFormat, loadErr)
		}
		excluded = append(excluded, rules.Names...)
		excludePatterns = append(excludePatterns, rules.Patterns...)
	}

	excluded = append(excluded,
		filepath.Base(service.options.ListingFileName),
		filepath.Base(service.options.TreeFileName),
	)
	if service.options.SelfName != "" {
		excluded = append(excluded, service.options.SelfName)
	}
	runFilter := filter.New(excluded, excludePatterns, service.options.SubstringMatch)
	listingFileName := service.options.ListingFileName
	runFilter.RootExclude = func(name string) bool {
		return sink.IsRotationName(listingFileName, name)
	}
	return runFilter, nil
}

func (service *Service) traversalOptions() (commands.TraversalOptions, error) {
	runFilter, filterErr := service.Filter()
	if filterErr != nil {
		return commands.TraversalOptions{}, filterErr
	}
	return commands.TraversalOptions{
		FileSystem: service.fileSystem,
		Root:       service.options.Root,
		Filter:     runFilter,
		SkipBinary: service.options.SkipBinary,
		Logger:     service.logger,
	}, nil
}

func (service *Service) pruneRotated() error {
	rotated, globErr := sink.RotatedFiles(service.fileSystem, service.ListingPath())
	if globErr != nil {
		return globErr
	}
	for _, path := range rotated {
		if err := service.fileSystem.Remove(path); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
			return fmt.Errorf(errorPruneFormat, path, err)
		}
		service.logger.Debug("pruned rotated listing", zap.String("path", path))
	}
	return nil
}

func (service *Service) describe(phase string, path string, sizeBytes int64) (types.OutputFile, error) {
	outputFile := types.OutputFile{
		Phase:     phase,
		Path:      path,
		SizeBytes: sizeBytes,
		Size:      utils.FormatFileSize(sizeBytes),
	}
	if service.options.TokenCounter == nil {
		return outputFile, nil
	}
	result, countErr := tokenizer.CountFile(service.fileSystem, service.options.TokenCounter, path)
	if countErr != nil {
		return types.OutputFile{}, fmt.Errorf(errorCountTokensFormat, path, countErr)
	}
	if result.Counted {
		outputFile.Tokens = result.Tokens
		outputFile.Model = service.options.TokenModel
	}
	return outputFile, nil
}
