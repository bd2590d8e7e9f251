package config

// DefaultServer is used when neither flag, env nor file names a server.
const DefaultServer = "http://localhost:5080"

// CLIConfig is the configuration for notechain-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Caller string `yaml:"caller,omitempty"`
	CAFile string `yaml:"ca_file,omitempty"`
	Output string `yaml:"output"` // table, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: "table",
	}
}
