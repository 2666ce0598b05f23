package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

const (
	// ApplicationName is used for the binary, the global configuration directory, and help text.
	ApplicationName = "combiner"
	// ConfigFileName is the file name of the global configuration file.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".combiner.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home that holds global configuration.
	GlobalConfigDirectoryName = ".combiner"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal execution errors.
	ApplicationExecutionFailedMessage = "combiner execution failed"
)
