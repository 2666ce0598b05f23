// Package config loads optional, read-only overrides for the scan constants.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

const defaultConfigType = "yaml"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds values read from configuration files. Unset
// fields keep the built-in defaults.
type ApplicationConfiguration struct {
	Output       string             `mapstructure:"output"`
	MaxFileSize  *int64             `mapstructure:"max_file_size"`
	Exclude      []string           `mapstructure:"exclude"`
	ExcludeExtra []string           `mapstructure:"exclude_extra"`
	Tokens       TokenConfiguration `mapstructure:"tokens"`
	Clipboard    *bool              `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting of the combined output.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the global and local files.
// Missing files are not an error; the local file overrides the global one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if validationErr := merged.validate(); validationErr != nil {
		return ApplicationConfiguration{}, validationErr
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// loadConfigurationFromPath reads one configuration file. A missing file yields
// an empty configuration unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if !isSupportedConfigExtension(filepath.Ext(path)) {
		reader.SetConfigType(defaultConfigType)
	}
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if strings.TrimSpace(override.Output) != "" {
		result.Output = strings.TrimSpace(override.Output)
	}
	if override.MaxFileSize != nil {
		result.MaxFileSize = cloneInt64(override.MaxFileSize)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = utils.DeduplicatePatterns(override.Exclude)
	}
	if len(override.ExcludeExtra) > 0 {
		result.ExcludeExtra = utils.DeduplicatePatterns(append(append([]string{}, result.ExcludeExtra...), override.ExcludeExtra...))
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
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

func (config ApplicationConfiguration) validate() error {
	if config.MaxFileSize != nil && *config.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", *config.MaxFileSize)
	}
	return nil
}

// ScanConfiguration applies the loaded overrides to the built-in defaults.
func (config ApplicationConfiguration) ScanConfiguration(workingDirectory string) types.ScanConfiguration {
	scanConfiguration := types.NewScanConfiguration(workingDirectory)
	if config.Output != "" {
		scanConfiguration.OutputFileName = config.Output
	}
	if config.MaxFileSize != nil {
		scanConfiguration.MaximumFileSize = *config.MaxFileSize
	}
	excludedNames := types.DefaultExcludedDirectoryNames()
	if len(config.Exclude) > 0 {
		excludedNames = append([]string{}, config.Exclude...)
	}
	excludedNames = append(excludedNames, config.ExcludeExtra...)
	scanConfiguration.ExcludedDirectoryNames = types.NewNameSet(utils.DeduplicatePatterns(excludedNames))
	if config.Tokens.Enabled != nil {
		scanConfiguration.TokenCountingEnabled = *config.Tokens.Enabled
	}
	scanConfiguration.TokenModel = config.Tokens.Model
	if config.Clipboard != nil {
		scanConfiguration.CopyOutputToClipboard = *config.Clipboard
	}
	return scanConfiguration
}

func isSupportedConfigExtension(extension string) bool {
	trimmedExtension := strings.TrimPrefix(strings.ToLower(extension), ".")
	for _, supportedExtension := range viper.SupportedExts {
		if trimmedExtension == supportedExtension {
			return true
		}
	}
	return false
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
