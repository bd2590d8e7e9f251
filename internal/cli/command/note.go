package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/notechain-go/internal/cli/connection"
	"github.com/yndnr/notechain-go/internal/cli/output"
)

const requestTimeout = 30 * time.Second

// noteView is a note as returned by the server.
type noteView struct {
	ID        uint64 `json:"id" yaml:"id"`
	Owner     string `json:"owner" yaml:"owner"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt uint64 `json:"created_at" yaml:"created_at"`
}

// TableView implements output.TableViewer.
func (n noteView) TableView() *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("id", strconv.FormatUint(n.ID, 10))
	t.AddRow("owner", n.Owner)
	t.AddRow("title", n.Title)
	t.AddRow("created", formatCreated(n.CreatedAt))
	t.AddRow("content", n.Content)
	return t
}

// notePage is the response of GET /v1/notes.
type notePage struct {
	Items []noteView `json:"items" yaml:"items"`
	Total int        `json:"total" yaml:"total"`
}

// TableView implements output.TableViewer.
func (l notePage) TableView() *output.Table {
	t := &output.Table{Headers: []string{"ID", "TITLE", "CREATED", "CONTENT"}}
	for _, n := range l.Items {
		t.AddRow(strconv.FormatUint(n.ID, 10), n.Title, formatCreated(n.CreatedAt), truncate(n.Content, 40))
	}
	return t
}

// idResult is the response of create, update and delete.
type idResult struct {
	ID uint64 `json:"id" yaml:"id"`
}

// NoteCommand returns the note subcommand group.
func NoteCommand() *cli.Command {
	bodyFlags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Note title",
				Required: required,
			},
			&cli.StringFlag{
				Name:     "content",
				Aliases:  []string{"b"},
				Usage:    "Note content",
				Required: required,
			},
		}
	}

	return &cli.Command{
		Name:  "note",
		Usage: "Manage notes on a running server",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a note owned by the caller",
				Flags:  bodyFlags(true),
				Action: noteCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the caller's notes",
				Action:  noteList,
			},
			{
				Name:      "get",
				Usage:     "Show a note by id",
				ArgsUsage: "NOTE_ID",
				Action:    noteGet,
			},
			{
				Name:      "update",
				Usage:     "Replace the title and content of a note",
				ArgsUsage: "NOTE_ID",
				Flags:     bodyFlags(true),
				Action:    noteUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a note",
				ArgsUsage: "NOTE_ID",
				Action:    noteDelete,
			},
		},
	}
}

func noteCreate(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	client, err := newClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Post(ctx, "/v1/notes", noteBody(c))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result idResult
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return printID(c, "Created", result)
}

func noteList(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	client, err := newClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Get(ctx, "/v1/notes")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result notePage
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format).Format(writer(c), result)
	}
	if err := result.TableView().Render(writer(c)); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "\nTotal: %d notes\n", result.Total)
	return nil
}

func noteGet(c *cli.Context) error {
	id, err := noteIDArg(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	client, err := newClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Get(ctx, "/v1/notes/"+id)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result noteView
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return printResult(c, result)
}

func noteUpdate(c *cli.Context) error {
	id, err := noteIDArg(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	client, err := newClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Put(ctx, "/v1/notes/"+id, noteBody(c))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result idResult
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return printID(c, "Updated", result)
}

func noteDelete(c *cli.Context) error {
	id, err := noteIDArg(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	client, err := newClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Delete(ctx, "/v1/notes/"+id)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result idResult
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return printID(c, "Deleted", result)
}

func noteBody(c *cli.Context) map[string]string {
	return map[string]string{
		"title":   c.String("title"),
		"content": c.String("content"),
	}
}

// noteIDArg returns the first argument after checking it is a note id.
func noteIDArg(c *cli.Context) (string, error) {
	raw := c.Args().First()
	if raw == "" {
		return "", fmt.Errorf("note ID required")
	}
	if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
		return "", fmt.Errorf("invalid note ID %q", raw)
	}
	return raw, nil
}

// printID prints "<verb> note N" for tables and the raw result otherwise.
func printID(c *cli.Context, verb string, result idResult) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		_, err := fmt.Fprintf(writer(c), "%s note %d\n", verb, result.ID)
		return err
	}
	return output.NewFormatter(format).Format(writer(c), result)
}

func formatCreated(ns uint64) string {
	if ns == 0 {
		return "-"
	}
	return time.Unix(0, int64(ns)).UTC().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
