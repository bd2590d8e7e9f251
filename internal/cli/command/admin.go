package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/notechain-go/internal/cli/output"
	"github.com/yndnr/notechain-go/internal/server/localserver"
)

// adminResult is the data of an admin socket reply.
type adminResult map[string]any

func (r adminResult) TableView() *output.Table {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &output.Table{}
	t.SetHeaders("FIELD", "VALUE")
	for _, k := range keys {
		t.AddRow(k, fmt.Sprintf("%v", r[k]))
	}
	return t
}

// AdminCommand returns the admin command, which talks to the server's
// admin socket instead of the HTTP API.
func AdminCommand() *cli.Command {
	socket := &cli.StringFlag{
		Name:     "socket",
		Usage:    "Admin socket path (server.local.socket_path)",
		EnvVars:  []string{"NOTECHAIN_SERVER_LOCAL_SOCKET_PATH"},
		Required: true,
	}

	sub := func(name, usage string) *cli.Command {
		return &cli.Command{
			Name:   name,
			Usage:  usage,
			Flags:  []cli.Flag{socket},
			Action: adminCall(name),
		}
	}

	return &cli.Command{
		Name:  "admin",
		Usage: "Control a local server through its admin socket",
		Subcommands: []*cli.Command{
			sub("status", "Show server status"),
			sub("reload", "Reload the configuration (log level)"),
			sub("snapshot", "Write the note table to the stable medium now"),
			sub("shutdown", "Start a graceful shutdown"),
		},
	}
}

func adminCall(command string) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
		defer cancel()

		reply, err := localserver.Call(ctx, c.String("socket"), command)
		if err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}

		result := adminResult{}
		if len(reply.Data) > 0 {
			dec := json.NewDecoder(bytes.NewReader(reply.Data))
			dec.UseNumber()
			if err := dec.Decode(&result); err != nil {
				return fmt.Errorf("decode %s reply: %w", command, err)
			}
		}
		return printResult(c, result)
	}
}
