package utils

const (
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".dirlisting.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".dirlisting"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal run error.
	ApplicationExecutionFailedMessage = "dirlisting failed"
)
