package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

type configTestCase struct {
	name              string
	globalContent     string
	localContent      string
	explicitPath      string
	explicitContent   string
	expectOutput      string
	expectMaxFileSize int64
	expectExcluded    []string
	expectNotExcluded []string
	expectTokens      bool
	expectModel       string
	expectClipboard   bool
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:              "defaults_without_files",
			expectOutput:      types.DefaultOutputFileName,
			expectMaxFileSize: types.DefaultMaximumFileSize,
			expectExcluded:    types.DefaultExcludedDirectoryNames(),
		},
		{
			name:              "local_overrides_global",
			globalContent:     "output: global.txt\nmax_file_size: 2048\nclipboard: true\ntokens:\n  enabled: true\n  model: gpt-4\n",
			localContent:      "output: local.txt\nexclude_extra:\n  - vendor\n",
			expectOutput:      "local.txt",
			expectMaxFileSize: 2048,
			expectExcluded:    []string{".git", "node_modules", "vendor"},
			expectTokens:      true,
			expectModel:       "gpt-4",
			expectClipboard:   true,
		},
		{
			name:              "exclude_replaces_deny_set",
			localContent:      "exclude:\n  - target\n",
			expectOutput:      types.DefaultOutputFileName,
			expectMaxFileSize: types.DefaultMaximumFileSize,
			expectExcluded:    []string{"target"},
			expectNotExcluded: []string{".git", "build"},
		},
		{
			name:              "explicit_path_replaces_local",
			localContent:      "output: ignored.txt\n",
			explicitPath:      "custom.yaml",
			explicitContent:   "output: explicit.txt\n",
			expectOutput:      "explicit.txt",
			expectMaxFileSize: types.DefaultMaximumFileSize,
			expectExcluded:    types.DefaultExcludedDirectoryNames(),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.LocalConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			scanConfiguration := loadedConfig.ScanConfiguration(workingDir)

			if scanConfiguration.WorkingDirectory != workingDir {
				t.Fatalf("expected working directory %s, got %s", workingDir, scanConfiguration.WorkingDirectory)
			}
			if scanConfiguration.OutputFileName != testCase.expectOutput {
				t.Fatalf("expected output %s, got %s", testCase.expectOutput, scanConfiguration.OutputFileName)
			}
			if scanConfiguration.MaximumFileSize != testCase.expectMaxFileSize {
				t.Fatalf("expected max size %d, got %d", testCase.expectMaxFileSize, scanConfiguration.MaximumFileSize)
			}
			for _, excludedName := range testCase.expectExcluded {
				if _, excluded := scanConfiguration.ExcludedDirectoryNames[excludedName]; !excluded {
					t.Fatalf("expected %s to be excluded", excludedName)
				}
			}
			for _, retainedName := range testCase.expectNotExcluded {
				if _, excluded := scanConfiguration.ExcludedDirectoryNames[retainedName]; excluded {
					t.Fatalf("expected %s not to be excluded", retainedName)
				}
			}
			if scanConfiguration.TokenCountingEnabled != testCase.expectTokens {
				t.Fatalf("expected tokens %t, got %t", testCase.expectTokens, scanConfiguration.TokenCountingEnabled)
			}
			if scanConfiguration.TokenModel != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, scanConfiguration.TokenModel)
			}
			if scanConfiguration.CopyOutputToClipboard != testCase.expectClipboard {
				t.Fatalf("expected clipboard %t, got %t", testCase.expectClipboard, scanConfiguration.CopyOutputToClipboard)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsInvalidValues(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)

	localPath := filepath.Join(workingDir, utils.LocalConfigFileName)
	if err := os.WriteFile(localPath, []byte("max_file_size: 0\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error for non-positive max_file_size")
	}
}

func TestLoadApplicationConfigurationRequiresExplicitFile(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)

	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir, ExplicitFilePath: "missing.yaml"}); err == nil {
		t.Fatalf("expected error for missing explicit configuration")
	}
}

func TestMergeAccumulatesExtraExclusions(t *testing.T) {
	base := ApplicationConfiguration{ExcludeExtra: []string{"vendor"}}
	merged := base.Merge(ApplicationConfiguration{ExcludeExtra: []string{"target", "vendor"}})
	if len(merged.ExcludeExtra) != 2 || merged.ExcludeExtra[0] != "vendor" || merged.ExcludeExtra[1] != "target" {
		t.Fatalf("unexpected extra exclusions %v", merged.ExcludeExtra)
	}
}
