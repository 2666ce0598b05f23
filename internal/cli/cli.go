// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/combiner/internal/combine"
	"github.com/temirov/combiner/internal/config"
	"github.com/temirov/combiner/internal/output"
	"github.com/temirov/combiner/internal/scan"
	"github.com/temirov/combiner/internal/services/clipboard"
	"github.com/temirov/combiner/internal/shell"
	"github.com/temirov/combiner/internal/tokenizer"
	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

const (
	configFlagName     = "config"
	debugFlagName      = "debug"
	versionFlagName    = "version"
	outputFlagName     = "output"
	copyFlagName       = "copy"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	extensionFlagName  = "ext"
	extensionFlagShort = "x"
	formatFlagName     = "format"

	rootUse              = utils.ApplicationName
	rootShortDescription = "combine the text files of a project directory into one file"
	rootLongDescription  = `combiner concatenates every text file under a chosen directory into a single
output file, each preceded by a banner naming its relative path.
Run without arguments to open the interactive form, which lists the
subdirectories of the working directory and the file extensions found in the
chosen one.`

	extensionsUse              = types.CommandExtensions + " <root>"
	extensionsShortDescription = "list the text file extensions found under a root"
	combineUse                 = types.CommandCombine + " <root>"
	combineShortDescription    = "combine files with the given extensions without the form"
	combineUsageExample        = `  # Combine Go and Markdown files from ./service
  combiner combine service --ext .go --ext md

  # Write to a custom file and copy it to the clipboard
  combiner combine service -x .py --output bundle.txt --copy`

	configFlagDescription    = "path to a configuration file"
	debugFlagDescription     = "enable debug logging"
	versionFlagDescription   = "display application version"
	outputFlagDescription    = "output file name, relative to the working directory"
	copyFlagDescription      = "copy the combined output to the clipboard"
	tokensFlagDescription    = "count tokens of the combined output"
	modelFlagDescription     = "tokenizer model used for token counting"
	extensionFlagDescription = "file extension to include (repeatable)"
	formatFlagDescription    = "report format: raw, json, or xml"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	tokenizerWarningMessage     = "token counting disabled"
	invalidFormatMessage        = "invalid format value '%s'"
)

var errVersionShown = errors.New("version shown")

// ConsoleOpener supplies the interactive console and a function restoring the terminal.
type ConsoleOpener func() (shell.Console, func() error, error)

// Environment carries the process surroundings commands run in.
type Environment struct {
	WorkingDirectory string
	OpenConsole      ConsoleOpener
}

// Execute runs the combiner application.
func Execute() error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	rootCommand := NewRootCommand(Environment{
		WorkingDirectory: workingDirectory,
		OpenConsole: func() (shell.Console, func() error, error) {
			return shell.OpenConsole(os.Stdin, os.Stdout)
		},
	})
	if executeError := rootCommand.Execute(); executeError != nil && !errors.Is(executeError, errVersionShown) {
		return executeError
	}
	return nil
}

// globalOptions stores the persistent flag values.
type globalOptions struct {
	configPath  string
	debug       bool
	showVersion bool
	outputName  string
	model       string
	copyOutput  optionalBoolean
	countTokens optionalBoolean
}

// application is the wiring shared by every command after flags are parsed.
type application struct {
	configuration types.ScanConfiguration
	logger        *zap.Logger
	scanner       *scan.Scanner
	combiner      *combine.Combiner
}

// NewRootCommand builds the root Cobra command. Without a subcommand it opens
// the interactive form.
func NewRootCommand(environment Environment) *cobra.Command {
	var options globalOptions
	var app application

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprint(command.OutOrStdout(), utils.FormatVersionLine())
				return errVersionShown
			}
			built, buildError := buildApplication(environment.WorkingDirectory, options)
			if buildError != nil {
				return buildError
			}
			app = built
			return nil
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return runForm(environment, app)
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.BoolVar(&options.debug, debugFlagName, false, debugFlagDescription)
	flags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	flags.StringVar(&options.outputName, outputFlagName, "", outputFlagDescription)
	flags.StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	registerOptionalBoolean(flags, &options.copyOutput, copyFlagName, copyFlagDescription)
	registerOptionalBoolean(flags, &options.countTokens, tokensFlagName, tokensFlagDescription)

	rootCommand.AddCommand(
		createExtensionsCommand(&app),
		createCombineCommand(&app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// buildApplication loads configuration, applies flag overrides, and wires the
// scanner and combiner.
func buildApplication(workingDirectory string, options globalOptions) (application, error) {
	logger, loggerError := utils.NewApplicationLogger(options.debug)
	if loggerError != nil {
		return application{}, fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	applicationConfiguration, configError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if configError != nil {
		return application{}, configError
	}

	scanConfiguration := applicationConfiguration.ScanConfiguration(workingDirectory)
	if outputName := strings.TrimSpace(options.outputName); outputName != "" {
		scanConfiguration.OutputFileName = outputName
	}
	if model := strings.TrimSpace(options.model); model != "" {
		scanConfiguration.TokenModel = model
	}
	options.copyOutput.apply(&scanConfiguration.CopyOutputToClipboard)
	options.countTokens.apply(&scanConfiguration.TokenCountingEnabled)

	scanner := scan.NewScanner(scanConfiguration, logger)
	var combineOptions []combine.Option
	if scanConfiguration.TokenCountingEnabled {
		counter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: scanConfiguration.TokenModel})
		if counterError != nil {
			logger.Warn(tokenizerWarningMessage, zap.Error(counterError))
		} else {
			combineOptions = append(combineOptions, combine.WithTokenCounter(counter, resolvedModel))
		}
	}
	if scanConfiguration.CopyOutputToClipboard {
		combineOptions = append(combineOptions, combine.WithCopier(clipboard.NewService()))
	}
	logger.Debug("configuration loaded",
		zap.String("workingDirectory", scanConfiguration.WorkingDirectory),
		zap.String("output", scanConfiguration.OutputFileName),
		zap.Int64("maxFileSize", scanConfiguration.MaximumFileSize),
	)

	return application{
		configuration: scanConfiguration,
		logger:        logger,
		scanner:       scanner,
		combiner:      combine.NewCombiner(scanConfiguration, scanner, logger, combineOptions...),
	}, nil
}

// runForm lists the candidate roots and hands control to the interactive form.
func runForm(environment Environment, app application) error {
	roots, listError := app.scanner.ListRootDirectories(environment.WorkingDirectory)
	if listError != nil {
		return listError
	}
	console, restore, openError := environment.OpenConsole()
	if openError != nil {
		return openError
	}
	defer func() {
		if restoreError := restore(); restoreError != nil {
			app.logger.Warn("restore terminal", zap.Error(restoreError))
		}
	}()
	form := shell.NewForm(shell.FormOptions{
		BaseDirectory: environment.WorkingDirectory,
		Roots:         roots,
		Discoverer:    app.scanner,
		Combiner:      app.combiner,
		Console:       console,
		Logger:        app.logger,
	})
	return form.Run()
}

// createExtensionsCommand returns the extensions subcommand.
func createExtensionsCommand(app *application) *cobra.Command {
	outputFormat := types.FormatRaw

	extensionsCommand := &cobra.Command{
		Use:   extensionsUse,
		Short: extensionsShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if !output.IsSupportedFormat(outputFormat) {
				return fmt.Errorf(invalidFormatMessage, outputFormat)
			}
			extensions, discoverError := app.scanner.DiscoverExtensions(app.resolveRoot(arguments[0]))
			if discoverError != nil {
				return discoverError
			}
			return output.RenderExtensions(command.OutOrStdout(), outputFormat, arguments[0], extensions)
		},
	}
	extensionsCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return extensionsCommand
}

// createCombineCommand returns the combine subcommand.
func createCombineCommand(app *application) *cobra.Command {
	var extensions []string
	outputFormat := types.FormatRaw

	combineCommand := &cobra.Command{
		Use:     combineUse,
		Short:   combineShortDescription,
		Example: combineUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if !output.IsSupportedFormat(outputFormat) {
				return fmt.Errorf(invalidFormatMessage, outputFormat)
			}
			result, combineError := app.combiner.Combine(app.resolveRoot(arguments[0]), extensions)
			if combineError != nil {
				return combineError
			}
			return output.RenderCombineResult(command.OutOrStdout(), outputFormat, result)
		},
	}
	combineCommand.Flags().StringArrayVarP(&extensions, extensionFlagName, extensionFlagShort, nil, extensionFlagDescription)
	combineCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return combineCommand
}

// resolveRoot interprets a relative root argument against the working directory.
func (app *application) resolveRoot(rootArgument string) string {
	if rootArgument == "" || filepath.IsAbs(rootArgument) || app.configuration.WorkingDirectory == "" {
		return rootArgument
	}
	return filepath.Join(app.configuration.WorkingDirectory, rootArgument)
}
