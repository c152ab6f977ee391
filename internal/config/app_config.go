package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/dirlisting/internal/types"
	"github.com/temirov/dirlisting/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Configuration holds the file-level run configuration. Unset pointer fields mean
// "use the default".
type Configuration struct {
	Root            string             `mapstructure:"root"`
	Exclude         []string           `mapstructure:"exclude"`
	ExcludePatterns []string           `mapstructure:"exclude_patterns"`
	ExcludeFile     string             `mapstructure:"exclude_file"`
	ListingFile     string             `mapstructure:"listing_file"`
	TreeFile        string             `mapstructure:"tree_file"`
	MaxFileSize     *int64             `mapstructure:"max_file_size"`
	SubstringMatch  *bool              `mapstructure:"substring_match"`
	SkipBinary      *bool              `mapstructure:"skip_binary"`
	PruneRotated    *bool              `mapstructure:"prune_rotated"`
	Tokens          TokenConfiguration `mapstructure:"tokens"`
	Copy            *bool              `mapstructure:"copy"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// Settings is a Configuration with every default applied.
type Settings struct {
	Root            string
	Exclude         []string
	ExcludePatterns []string
	ExcludeFile     string
	ListingFile     string
	TreeFile        string
	MaxFileSize     int64
	SubstringMatch  bool
	SkipBinary      bool
	PruneRotated    bool
	TokensEnabled   bool
	TokenModel      string
	Copy            bool
}

// LoadConfiguration loads configuration from the global file and then the local one.
func LoadConfiguration(options LoadOptions) (Configuration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return Configuration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged Configuration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return Configuration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return Configuration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return Configuration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Exclude = utils.DeduplicatePatterns(merged.Exclude)
	merged.ExcludePatterns = utils.DeduplicatePatterns(merged.ExcludePatterns)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (Configuration, error) {
	if path == "" {
		return Configuration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return Configuration{}, nil
		}
		return Configuration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return Configuration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return Configuration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config Configuration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return Configuration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config Configuration) Merge(override Configuration) Configuration {
	result := config
	if override.Root != "" {
		result.Root = override.Root
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if len(override.ExcludePatterns) > 0 {
		result.ExcludePatterns = append([]string{}, utils.DeduplicatePatterns(override.ExcludePatterns)...)
	}
	if override.ExcludeFile != "" {
		result.ExcludeFile = override.ExcludeFile
	}
	if override.ListingFile != "" {
		result.ListingFile = override.ListingFile
	}
	if override.TreeFile != "" {
		result.TreeFile = override.TreeFile
	}
	if override.MaxFileSize != nil {
		result.MaxFileSize = cloneInt64(override.MaxFileSize)
	}
	if override.SubstringMatch != nil {
		result.SubstringMatch = cloneBool(override.SubstringMatch)
	}
	if override.SkipBinary != nil {
		result.SkipBinary = cloneBool(override.SkipBinary)
	}
	if override.PruneRotated != nil {
		result.PruneRotated = cloneBool(override.PruneRotated)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// Settings resolves the configuration against the built-in defaults.
func (config Configuration) Settings() Settings {
	settings := Settings{
		Root:            valueOrDefault(config.Root, types.DefaultRoot),
		Exclude:         append([]string{}, config.Exclude...),
		ExcludePatterns: append([]string{}, config.ExcludePatterns...),
		ExcludeFile:     valueOrDefault(config.ExcludeFile, types.DefaultExcludeFileName),
		ListingFile:     valueOrDefault(config.ListingFile, types.DefaultListingFileName),
		TreeFile:        valueOrDefault(config.TreeFile, types.DefaultTreeFileName),
		MaxFileSize:     types.DefaultMaxFileSize,
		SkipBinary:      true,
		TokenModel:      valueOrDefault(config.Tokens.Model, types.DefaultTokenizerModel),
	}
	if config.MaxFileSize != nil && *config.MaxFileSize >= 0 {
		settings.MaxFileSize = *config.MaxFileSize
	}
	if config.SubstringMatch != nil {
		settings.SubstringMatch = *config.SubstringMatch
	}
	if config.SkipBinary != nil {
		settings.SkipBinary = *config.SkipBinary
	}
	if config.PruneRotated != nil {
		settings.PruneRotated = *config.PruneRotated
	}
	if config.Tokens.Enabled != nil {
		settings.TokensEnabled = *config.Tokens.Enabled
	}
	if config.Copy != nil {
		settings.Copy = *config.Copy
	}
	return settings
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
