package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "fcom failed"

	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = ".fcom.yaml"
	// GlobalConfigDirectoryName is created under the user's home directory.
	GlobalConfigDirectoryName = ".fcom"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"

	// StdoutOutputPath selects standard output instead of a destination file.
	StdoutOutputPath = "-"
)
