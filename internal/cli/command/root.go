package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/notechain-go/internal/cli/config"
	"github.com/yndnr/notechain-go/internal/cli/connection"
	"github.com/yndnr/notechain-go/internal/cli/output"
	"github.com/yndnr/notechain-go/internal/infra/buildinfo"
	"github.com/yndnr/notechain-go/internal/infra/tlsroots"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "notechain-cli",
		Usage:   "NoteChain command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			NoteCommand(),
			AdminCommand(),
			StableCommand(),
			VersionCommand(),
		},
		Before: applyFileDefaults,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"NOTECHAIN_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "NoteChain server address (e.g., localhost:5080)",
			EnvVars: []string{"NOTECHAIN_SERVER"},
			Value:   config.DefaultServer,
		},
		&cli.StringFlag{
			Name:    "caller",
			Aliases: []string{"c"},
			Usage:   "Caller identity sent as X-Caller-ID (empty = anonymous)",
			EnvVars: []string{"NOTECHAIN_CALLER"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM bundle trusted in addition to the system roots for https servers",
			EnvVars: []string{"NOTECHAIN_CA_FILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// applyFileDefaults fills global flags the user did not set from the
// CLI config file.
func applyFileDefaults(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	for name, value := range map[string]string{
		"server":  cfg.Server,
		"caller":  cfg.Caller,
		"ca-file": cfg.CAFile,
		"output":  cfg.Output,
	} {
		if value == "" || c.IsSet(name) {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return fmt.Errorf("apply %s from config: %w", name, err)
		}
	}
	return nil
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Caller string
	CAFile string
	Output string // table, json, yaml
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server: c.String("server"),
		Caller: c.String("caller"),
		CAFile: c.String("ca-file"),
		Output: c.String("output"),
	}
}

// newClient builds an HTTP client from the global flags.
func newClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	if flags.CAFile == "" {
		return connection.NewHTTPClient(flags.Server, flags.Caller), nil
	}

	tlsCfg, err := tlsroots.ClientConfig(flags.CAFile)
	if err != nil {
		return nil, fmt.Errorf("--ca-file: %w", err)
	}
	return connection.NewHTTPClient(flags.Server, flags.Caller, connection.WithTLSConfig(tlsCfg)), nil
}

// outputFormat validates --output.
func outputFormat(c *cli.Context) (output.Format, error) {
	return output.ParseFormat(ParseGlobalFlags(c).Output)
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

// writer returns the app's output stream.
func writer(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
