// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "fieldtrace.yaml"

	// ConfigEnv names the environment variable holding a config file path.
	ConfigEnv = "FIELDTRACE_CONFIG"

	// EnvPrefix is the prefix of every environment override.
	EnvPrefix = "FIELDTRACE_"

	DefaultLogLevel = "info"

	// DefaultDemangleStyle is how the CLI prints caller names.
	DefaultDemangleStyle = "short"

	DefaultProfileOutput = ""
)
