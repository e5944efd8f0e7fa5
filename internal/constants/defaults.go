package constants

// Input and output defaults shared by the CLI, the MCP server and the config
// loaders.
const (
	// DefaultOutputFormat is used when neither flags nor config pick a format
	DefaultOutputFormat = "text"

	// DefaultIncludePattern selects the sources read from a variant directory
	DefaultIncludePattern = "**/*.java"

	// ConfigFileName is discovered by walking up from the working directory
	ConfigFileName = ".variscan.toml"
)
