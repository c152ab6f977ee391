// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirlisting/internal/config"
	"github.com/temirov/dirlisting/internal/output"
	"github.com/temirov/dirlisting/internal/services/clipboard"
	"github.com/temirov/dirlisting/internal/services/snapshot"
	"github.com/temirov/dirlisting/internal/tokenizer"
	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

const (
	rootFlagName            = "root"
	exclusionFlagName       = "exclude"
	exclusionFlagShorthand  = "e"
	excludePatternFlagName  = "exclude-pattern"
	substringMatchFlagName  = "substring-match"
	maxSizeFlagName         = "max-size"
	noSkipBinaryFlagName    = "no-skip-binary"
	pruneFlagName           = "prune"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	copyFlagName            = "copy"
	configFlagName          = "config"
	formatFlagName          = "format"
	verboseFlagName         = "verbose"
	versionFlagName         = "version"
	globalFlagName          = "global"
	forceFlagName           = "force"
	versionTemplate         = "dirlisting version: %s\n"
	rootUse                 = "dirlisting"
	rootShortDescription    = "dump a directory tree and listing of a project"
	rootLongDescription     = `dirlisting walks a directory and writes two files into it:
tree.txt with the indented tree of entries, and directory_listing.txt with the
structure followed by the content of source files. The listing rotates to
directory_listing_1.txt, directory_listing_2.txt, ... once it reaches --max-size bytes.`
	rootUsageExample = `  # Dump the current directory
  dirlisting

  # Dump another project, skipping fixtures and every log file
  dirlisting --root ../service -e fixtures --exclude-pattern '**/*.log'

  # Rebuild only the tree and copy it to the clipboard
  dirlisting tree --copy`

	listingUse              = "listing"
	treeUse                 = "tree"
	initUse                 = "init"
	listingAlias            = "l"
	treeAlias               = "t"
	listingShortDescription = "write only the directory listing (" + listingAlias + ")"
	treeShortDescription    = "write only the tree (" + treeAlias + ")"
	initShortDescription    = "write a default configuration file"
	// initLongDescription provides detailed help for the init command.
	initLongDescription = `Write the default configuration to .dirlisting.yaml in the working
directory, or to ~/.dirlisting/config.yaml with --global.`

	rootFlagDescription           = "directory to dump"
	exclusionFlagDescription      = "exclude entries with this exact name"
	excludePatternFlagDescription = "exclude entries whose name or relative path matches this glob"
	substringMatchFlagDescription = "skip any path containing an ignored folder name"
	maxSizeFlagDescription        = "rotate the listing after this many bytes (0 disables rotation)"
	noSkipBinaryFlagDescription   = "dump the content of binary files"
	pruneFlagDescription          = "delete rotated listings left by earlier runs"
	tokensFlagDescription         = "report token counts of written files"
	modelFlagDescription          = "tokenizer model to use for token counting"
	copyFlagDescription           = "copy tree.txt to the clipboard"
	configFlagDescription         = "configuration file to use instead of .dirlisting.yaml"
	formatFlagDescription         = "run report format: raw, json or xml"
	verboseFlagDescription        = "log traversal details"
	versionFlagDescription        = "display application version"
	globalFlagDescription         = "write the configuration into the home directory"
	forceFlagDescription          = "overwrite an existing configuration file"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadConfigurationFormat     = "load configuration: %w"
	tokenizerErrorFormat        = "initialize tokenizer: %w"
	invalidFormatMessage        = "Invalid format value '%s'"
	invalidMaxSizeMessage       = "Invalid max-size value %d: must not be negative"
	phaseCompletionFormat       = "The %s has been written.\n"
	configurationWrittenFormat  = "Configuration written to %s\n"
	listingPhaseDescription     = "directory listing"
	treePhaseDescription        = "tree"
)

// counterFactory builds the token counter for a model.
type counterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// application carries the parsed flags and the collaborators of one CLI invocation.
type application struct {
	flags            runFlags
	fileSystem       afero.Fs
	copier           clipboard.Copier
	newCounter       counterFactory
	workingDirectory string
	selfName         string
	logger           *zap.Logger
}

// runFlags stores the values of the persistent flags.
type runFlags struct {
	root            string
	exclude         []string
	excludePatterns []string
	substringMatch  bool
	maxFileSize     int64
	noSkipBinary    bool
	prune           bool
	tokens          bool
	model           string
	copyTree        bool
	configPath      string
	format          string
	verbose         bool
	showVersion     bool
}

func newApplication() *application {
	return &application{
		fileSystem: afero.NewOsFs(),
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
		selfName:   filepath.Base(os.Args[0]),
		logger:     zap.NewNop(),
	}
}

// Execute runs the dirlisting application.
func Execute() error {
	rootCommand := createRootCommand(newApplication())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if app.flags.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if !output.IsSupportedFormat(app.flags.format) {
				return fmt.Errorf(invalidFormatMessage, app.flags.format)
			}
			logger, loggerErr := utils.NewApplicationLogger(app.flags.verbose)
			if loggerErr != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerErr)
			}
			app.logger = logger
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			service, settings, err := app.newService(command)
			if err != nil {
				return err
			}
			report, runErr := service.Run()
			if runErr != nil {
				return runErr
			}
			return app.writeReport(command.OutOrStdout(), report, settings, types.CompletionMessage+"\n")
		},
	}

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&app.flags.root, rootFlagName, types.DefaultRoot, rootFlagDescription)
	persistentFlags.StringArrayVarP(&app.flags.exclude, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	persistentFlags.StringArrayVar(&app.flags.excludePatterns, excludePatternFlagName, nil, excludePatternFlagDescription)
	persistentFlags.Int64Var(&app.flags.maxFileSize, maxSizeFlagName, types.DefaultMaxFileSize, maxSizeFlagDescription)
	persistentFlags.StringVar(&app.flags.model, modelFlagName, types.DefaultTokenizerModel, modelFlagDescription)
	persistentFlags.StringVar(&app.flags.configPath, configFlagName, "", configFlagDescription)
	persistentFlags.StringVar(&app.flags.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.substringMatch, substringMatchFlagName, false, substringMatchFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.noSkipBinary, noSkipBinaryFlagName, false, noSkipBinaryFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.prune, pruneFlagName, false, pruneFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.tokens, tokensFlagName, false, tokensFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.copyTree, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(persistentFlags, &app.flags.verbose, verboseFlagName, false, verboseFlagDescription)
	persistentFlags.BoolVar(&app.flags.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(
		createListingCommand(app),
		createTreeCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createListingCommand returns the listing subcommand.
func createListingCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     listingUse,
		Aliases: []string{listingAlias},
		Short:   listingShortDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, settings, err := app.newService(command)
			if err != nil {
				return err
			}
			listingFiles, listingErr := service.GenerateListing()
			if listingErr != nil {
				return listingErr
			}
			report := types.RunReport{Root: settings.Root, Files: listingFiles}
			return app.writeReport(command.OutOrStdout(), report, settings, fmt.Sprintf(phaseCompletionFormat, listingPhaseDescription))
		},
	}
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, settings, err := app.newService(command)
			if err != nil {
				return err
			}
			treeFile, treeErr := service.GenerateTree()
			if treeErr != nil {
				return treeErr
			}
			if settings.Copy {
				if err := service.CopyTree(); err != nil {
					return err
				}
			}
			report := types.RunReport{Root: settings.Root, Files: []types.OutputFile{treeFile}}
			return app.writeReport(command.OutOrStdout(), report, settings, fmt.Sprintf(phaseCompletionFormat, treePhaseDescription))
		},
	}
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, path)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// resolveSettings merges configuration files with the flags the user set explicitly.
func (app *application) resolveSettings(command *cobra.Command) (config.Settings, error) {
	workingDirectory := app.workingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return config.Settings{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}
	configuration, loadErr := config.LoadConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.flags.configPath,
	})
	if loadErr != nil {
		return config.Settings{}, fmt.Errorf(loadConfigurationFormat, loadErr)
	}
	settings := configuration.Settings()

	flags := command.Flags()
	if flags.Changed(rootFlagName) {
		settings.Root = app.flags.root
	}
	if !filepath.IsAbs(settings.Root) {
		settings.Root = filepath.Join(workingDirectory, settings.Root)
	}
	settings.Exclude = utils.DeduplicatePatterns(append(settings.Exclude, app.flags.exclude...))
	settings.ExcludePatterns = utils.DeduplicatePatterns(append(settings.ExcludePatterns, app.flags.excludePatterns...))
	if flags.Changed(maxSizeFlagName) {
		if app.flags.maxFileSize < 0 {
			return config.Settings{}, fmt.Errorf(invalidMaxSizeMessage, app.flags.maxFileSize)
		}
		settings.MaxFileSize = app.flags.maxFileSize
	}
	if flags.Changed(substringMatchFlagName) {
		settings.SubstringMatch = app.flags.substringMatch
	}
	if flags.Changed(noSkipBinaryFlagName) {
		settings.SkipBinary = !app.flags.noSkipBinary
	}
	if flags.Changed(pruneFlagName) {
		settings.PruneRotated = app.flags.prune
	}
	if flags.Changed(tokensFlagName) {
		settings.TokensEnabled = app.flags.tokens
	}
	if flags.Changed(modelFlagName) {
		settings.TokenModel = app.flags.model
	}
	if flags.Changed(copyFlagName) {
		settings.Copy = app.flags.copyTree
	}
	return settings, nil
}

func (app *application) newService(command *cobra.Command) (*snapshot.Service, config.Settings, error) {
	settings, settingsErr := app.resolveSettings(command)
	if settingsErr != nil {
		return nil, config.Settings{}, settingsErr
	}
	options := snapshot.Options{
		FileSystem:      app.fileSystem,
		Root:            settings.Root,
		Exclude:         settings.Exclude,
		ExcludePatterns: settings.ExcludePatterns,
		ExcludeFile:     settings.ExcludeFile,
		SelfName:        app.selfName,
		ListingFileName: settings.ListingFile,
		TreeFileName:    settings.TreeFile,
		MaxFileSize:     settings.MaxFileSize,
		SubstringMatch:  settings.SubstringMatch,
		SkipBinary:      settings.SkipBinary,
		PruneRotated:    settings.PruneRotated,
		CopyTree:        settings.Copy,
		Copier:          app.copier,
		Logger:          app.logger,
	}
	if settings.TokensEnabled {
		counter, model, counterErr := app.newCounter(tokenizer.Config{Model: settings.TokenModel})
		if counterErr != nil {
			return nil, config.Settings{}, fmt.Errorf(tokenizerErrorFormat, counterErr)
		}
		options.TokenCounter = counter
		options.TokenModel = model
	}
	app.logger.Debug("resolved settings", zap.String("root", settings.Root), zap.Int64("max_file_size", settings.MaxFileSize))
	return snapshot.NewService(options), settings, nil
}

// writeReport renders the run report. The raw format ends with completionMessage.
func (app *application) writeReport(writer io.Writer, report types.RunReport, settings config.Settings, completionMessage string) error {
	detailed := settings.TokensEnabled || app.flags.verbose
	if err := output.RenderReport(writer, report, app.flags.format, detailed); err != nil {
		return err
	}
	if !strings.EqualFold(app.flags.format, types.FormatRaw) {
		return nil
	}
	_, writeErr := io.WriteString(writer, completionMessage)
	return writeErr
}
