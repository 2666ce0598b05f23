package shell

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/combiner/internal/combine"
	"github.com/temirov/combiner/internal/types"
	"github.com/temirov/combiner/internal/utils"
)

const (
	formTitle           = "Project Combiner"
	rootSectionTitle    = "Select Root Directory"
	extensionSection    = "Select File Extensions"
	noTextFilesMessage  = "No text files found"
	noRootChosenMessage = "Choose a root directory to list its extensions"
	helpText            = "Commands: r <n> choose root, <n> [<n>...] toggle extension, a check all, n uncheck all, c combine, q quit, ? help"

	dialogWarning = "Warning"
	dialogError   = "Error"
	dialogDone    = "Done"

	missingRootMessage       = "Please select a directory."
	missingExtensionsMessage = "Select at least one extension."
	noDirectoriesMessage     = "No directories found."
	unknownCommandFormat     = "Unknown command %q. Type ? for help."
	invalidNumberFormat      = "%q is not a number between 1 and %d."
)

// ErrNoRootDirectories reports that the working directory offers nothing to choose from.
var ErrNoRootDirectories = errors.New("no root directories found")

// ExtensionDiscoverer lists the extensions offered for a root.
type ExtensionDiscoverer interface {
	DiscoverExtensions(rootPath string) ([]string, error)
}

// CombineRunner writes the combined output for a root and extension selection.
type CombineRunner interface {
	Combine(rootPath string, allowedExtensions []string) (types.CombineResult, error)
}

// FormOptions wires a Form to its collaborators.
type FormOptions struct {
	BaseDirectory string
	Roots         []string
	Discoverer    ExtensionDiscoverer
	Combiner      CombineRunner
	Console       Console
	Logger        *zap.Logger
}

// Form is the interactive root and extension chooser.
type Form struct {
	baseDirectory string
	roots         []string
	discoverer    ExtensionDiscoverer
	combiner      CombineRunner
	console       Console
	logger        *zap.Logger
	state         SelectionState
}

// NewForm constructs a Form in the idle state.
func NewForm(options FormOptions) *Form {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		baseDirectory: options.BaseDirectory,
		roots:         append([]string(nil), options.Roots...),
		discoverer:    options.Discoverer,
		combiner:      options.Combiner,
		console:       options.Console,
		logger:        logger,
	}
}

// State returns the current selection.
func (form *Form) State() SelectionState {
	return form.state
}

// Run renders the form and processes commands until quit or end of input.
func (form *Form) Run() error {
	if len(form.roots) == 0 {
		form.dialog(dialogError, noDirectoriesMessage)
		return ErrNoRootDirectories
	}
	form.render()
	for {
		line, readError := form.console.ReadLine()
		if errors.Is(readError, io.EOF) {
			return nil
		}
		if readError != nil {
			return fmt.Errorf("read command: %w", readError)
		}
		if quit := form.handle(strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

// handle applies one command and reports whether the form should close.
func (form *Form) handle(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		form.render()
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true
	case "?", "h", "help":
		form.printf("%s\n", helpText)
	case "r", "root":
		if len(fields) != 2 {
			form.printf(unknownCommandFormat+"\n", command)
			return false
		}
		form.chooseRoot(fields[1])
	case "a", "all":
		form.state = SetAllExtensions(form.state, true)
		form.render()
	case "n", "none":
		form.state = SetAllExtensions(form.state, false)
		form.render()
	case "c", "combine":
		form.confirm()
	default:
		if form.state.Phase() == PhaseIdle && len(fields) == 1 {
			form.chooseRoot(fields[0])
			return false
		}
		form.toggle(fields)
	}
	return false
}

func (form *Form) chooseRoot(token string) {
	index, parsed := parseIndex(token, len(form.roots))
	if !parsed {
		form.printf(invalidNumberFormat+"\n", token, len(form.roots))
		return
	}
	rootName := form.roots[index]
	extensions, discoverError := form.discoverer.DiscoverExtensions(form.rootPath(rootName))
	if discoverError != nil {
		form.logger.Warn("extension discovery failed", zap.String("root", rootName), zap.Error(discoverError))
		form.dialog(dialogError, discoverError.Error())
		return
	}
	form.state = SelectRoot(form.state, rootName, extensions)
	form.render()
}

func (form *Form) toggle(tokens []string) {
	if form.state.Phase() == PhaseIdle {
		form.dialog(dialogWarning, missingRootMessage)
		return
	}
	if len(form.state.Extensions) == 0 {
		form.printf("%s\n", noTextFilesMessage)
		return
	}
	next := form.state
	for _, token := range tokens {
		index, parsed := parseIndex(token, len(next.Extensions))
		if !parsed {
			form.printf(unknownCommandFormat+"\n", strings.Join(tokens, " "))
			return
		}
		next = ToggleExtension(next, next.Extensions[index])
	}
	form.state = next
	form.render()
}

func (form *Form) confirm() {
	extensions, validationError := ValidateConfirmation(form.state)
	switch {
	case errors.Is(validationError, combine.ErrRootNotSelected):
		form.dialog(dialogWarning, missingRootMessage)
		return
	case errors.Is(validationError, combine.ErrNoExtensionsSelected):
		form.dialog(dialogWarning, missingExtensionsMessage)
		return
	}

	result, combineError := form.combiner.Combine(form.rootPath(form.state.Root), extensions)
	if combineError != nil {
		form.logger.Error("combine failed", zap.String("root", form.state.Root), zap.Error(combineError))
		form.dialog(dialogError, combineError.Error())
		return
	}
	form.dialog(dialogDone, completionMessage(result))
}

func (form *Form) rootPath(rootName string) string {
	if form.baseDirectory == "" {
		return rootName
	}
	return filepath.Join(form.baseDirectory, rootName)
}

func (form *Form) render() {
	var builder strings.Builder
	builder.WriteString("\n" + formTitle + "\n")
	if form.baseDirectory != "" {
		fmt.Fprintf(&builder, "Working directory: %s\n", form.baseDirectory)
	}

	builder.WriteString("\n" + rootSectionTitle + "\n")
	for index, rootName := range form.roots {
		marker := " "
		if rootName == form.state.Root {
			marker = "*"
		}
		fmt.Fprintf(&builder, " %s %2d) %s\n", marker, index+1, rootName)
	}

	builder.WriteString("\n" + extensionSection + "\n")
	switch {
	case form.state.Phase() == PhaseIdle:
		builder.WriteString("   " + noRootChosenMessage + "\n")
	case len(form.state.Extensions) == 0:
		builder.WriteString("   " + noTextFilesMessage + "\n")
	default:
		for index, extension := range form.state.Extensions {
			checkbox := "[ ]"
			if form.state.IsIncluded(extension) {
				checkbox = "[x]"
			}
			fmt.Fprintf(&builder, "   %s %2d) %s\n", checkbox, index+1, extension)
		}
	}
	builder.WriteString("\n" + helpText + "\n")
	form.printf("%s", builder.String())
}

func (form *Form) dialog(kind string, message string) {
	form.printf("\n[%s] %s\n", kind, message)
}

func (form *Form) printf(format string, arguments ...any) {
	if _, writeError := fmt.Fprintf(form.console, format, arguments...); writeError != nil {
		form.logger.Debug("write to console failed", zap.Error(writeError))
	}
}

func completionMessage(result types.CombineResult) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Combined file created:\n%s\n", result.OutputPath)
	fmt.Fprintf(&builder, "%d files, %s", result.FilesWritten, utils.FormatFileSize(result.BytesWritten))
	if result.TokenModel != "" {
		fmt.Fprintf(&builder, ", %d tokens (%s)", result.Tokens, result.TokenModel)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(&builder, "\nskipped %s: %v", failure.RelativePath, failure.Err)
	}
	return builder.String()
}

// parseIndex converts a 1-based menu number into a slice index.
func parseIndex(token string, count int) (int, bool) {
	number, parseError := strconv.Atoi(token)
	if parseError != nil || number < 1 || number > count {
		return 0, false
	}
	return number - 1, true
}
