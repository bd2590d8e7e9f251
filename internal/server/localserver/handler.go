package localserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Reply is one response line.
type Reply struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Handler dispatches admin commands. A nil hook makes its command
// report that it is not available.
type Handler struct {
	// Status describes the running server.
	Status func() any

	// Reload re-reads the configuration and applies what can change live.
	Reload func() error

	// Snapshot writes the note table to the stable medium now.
	Snapshot func(ctx context.Context) (any, error)

	// Shutdown starts a graceful shutdown and returns at once.
	Shutdown func()
}

// Commands lists the command names Execute accepts.
var Commands = []string{"status", "reload", "snapshot", "shutdown"}

// Execute runs one command line.
func (h *Handler) Execute(ctx context.Context, line string) Reply {
	cmd := strings.ToLower(strings.TrimSpace(line))

	switch cmd {
	case "status":
		if h.Status == nil {
			return unavailable(cmd)
		}
		return ok(h.Status())

	case "reload":
		if h.Reload == nil {
			return unavailable(cmd)
		}
		if err := h.Reload(); err != nil {
			return failed(err)
		}
		return ok(map[string]string{"reloaded": "config"})

	case "snapshot":
		if h.Snapshot == nil {
			return unavailable(cmd)
		}
		report, err := h.Snapshot(ctx)
		if err != nil {
			return failed(err)
		}
		return ok(report)

	case "shutdown":
		if h.Shutdown == nil {
			return unavailable(cmd)
		}
		h.Shutdown()
		return ok(map[string]string{"shutdown": "started"})

	case "":
		return failed(fmt.Errorf("empty command"))

	default:
		return failed(fmt.Errorf("unknown command: %s", cmd))
	}
}

func ok(data any) Reply {
	if data == nil {
		return Reply{OK: true}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return failed(fmt.Errorf("encode reply: %w", err))
	}
	return Reply{OK: true, Data: raw}
}

func failed(err error) Reply {
	return Reply{Error: err.Error()}
}

func unavailable(cmd string) Reply {
	return Reply{Error: cmd + " is not available"}
}
