package command

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/notechain-go/internal/cli/output"
	"github.com/yndnr/notechain-go/internal/storage/snapshot"
	"github.com/yndnr/notechain-go/internal/storage/stable"
)

// inspection summarizes the snapshot held by a stable medium.
type inspection struct {
	Backend   string     `json:"backend" yaml:"backend"`
	DataDir   string     `json:"data_dir" yaml:"data_dir"`
	Sealed    bool       `json:"sealed" yaml:"sealed"`
	Format    string     `json:"format" yaml:"format"`
	Version   uint32     `json:"version" yaml:"version"`
	Notes     int        `json:"notes" yaml:"notes"`
	Owners    int        `json:"owners" yaml:"owners"`
	NextID    uint64     `json:"next_id" yaml:"next_id"`
	WrittenAt string     `json:"written_at,omitempty" yaml:"written_at,omitempty"`
	Items     []noteView `json:"items,omitempty" yaml:"items,omitempty"`
}

// TableView implements output.TableViewer.
func (i inspection) TableView() *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("backend", i.Backend)
	t.AddRow("data_dir", i.DataDir)
	t.AddRow("sealed", strconv.FormatBool(i.Sealed))
	t.AddRow("format", i.Format)
	t.AddRow("version", strconv.FormatUint(uint64(i.Version), 10))
	t.AddRow("notes", strconv.Itoa(i.Notes))
	t.AddRow("owners", strconv.Itoa(i.Owners))
	t.AddRow("next_id", strconv.FormatUint(i.NextID, 10))
	if i.WrittenAt != "" {
		t.AddRow("written_at", i.WrittenAt)
	}
	return t
}

// StableCommand returns the stable subcommand group.
func StableCommand() *cli.Command {
	return &cli.Command{
		Name:  "stable",
		Usage: "Inspect a server's stable storage offline",
		Subcommands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "Decode the stored snapshot and print a summary",
				Description: "The server must be stopped when inspecting the badger backend, " +
					"since Badger holds an exclusive lock on its directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "backend",
						Usage: "Storage backend: file, badger",
						Value: "file",
					},
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"d"},
						Usage:    "Server data directory",
						EnvVars:  []string{"NOTECHAIN_STORAGE_DATA_DIR"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "encryption-key",
						Usage:   "Hex master key of a sealed medium",
						EnvVars: []string{"NOTECHAIN_SECURITY_ENCRYPTION_KEY"},
					},
					&cli.StringFlag{
						Name:    "encryption-passphrase",
						Usage:   "Passphrase of a sealed medium",
						EnvVars: []string{"NOTECHAIN_SECURITY_ENCRYPTION_PASSPHRASE"},
					},
					&cli.BoolFlag{
						Name:  "notes",
						Usage: "Include every note in the output",
					},
				},
				Action: stableInspect,
			},
			{
				Name:  "keygen",
				Usage: "Print a random hex master key for security.encryption_key",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "length",
						Usage: "Key length in bytes",
						Value: 32,
					},
				},
				Action: stableKeygen,
			},
		},
	}
}

func stableKeygen(c *cli.Context) error {
	key, err := stable.GenerateKey(c.Int("length"))
	if err != nil {
		return err
	}
	defer stable.ZeroKey(key)

	_, err = fmt.Fprintln(writer(c), hex.EncodeToString(key))
	return err
}

func stableInspect(c *cli.Context) error {
	dataDir := c.String("data-dir")
	if _, err := os.Stat(dataDir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	backend := c.String("backend")
	medium, writtenAt, err := openStableMedium(backend, dataDir)
	if err != nil {
		return err
	}

	sealCfg, sealed, err := inspectSealConfig(c)
	if err != nil {
		medium.Close()
		return err
	}
	if sealed {
		sm, err := stable.NewSealedMedium(medium, sealCfg)
		if err != nil {
			medium.Close()
			return err
		}
		medium = sm
	}
	defer medium.Close()

	state, format, err := snapshot.NewCodec().Restore(c.Context, medium)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	result := inspection{
		Backend:   backend,
		DataDir:   dataDir,
		Sealed:    sealed,
		Format:    format.String(),
		Version:   format.Version(),
		Notes:     len(state.Notes),
		NextID:    state.NextID,
		WrittenAt: writtenAt,
	}

	owners := make(map[string]struct{})
	for _, n := range state.Notes {
		owners[n.Owner.String()] = struct{}{}
		if c.Bool("notes") {
			result.Items = append(result.Items, noteView{
				ID:        n.ID,
				Owner:     n.Owner.String(),
				Title:     n.Title,
				Content:   n.Content,
				CreatedAt: n.CreatedAt,
			})
		}
	}
	result.Owners = len(owners)
	sort.Slice(result.Items, func(i, j int) bool { return result.Items[i].ID < result.Items[j].ID })

	outFmt, err := outputFormat(c)
	if err != nil {
		return err
	}
	if outFmt != output.FormatTable {
		return output.NewFormatter(outFmt).Format(writer(c), result)
	}
	if err := result.TableView().Render(writer(c)); err != nil {
		return err
	}
	if len(result.Items) > 0 {
		fmt.Fprintln(writer(c))
		page := notePage{Items: result.Items, Total: len(result.Items)}
		return page.TableView().Render(writer(c))
	}
	return nil
}

// openStableMedium opens the medium for backend. Nothing is written to it.
// writtenAt is filled for framed files.
func openStableMedium(backend, dataDir string) (stable.Medium, string, error) {
	switch backend {
	case "file":
		fm, err := stable.NewFileMedium(dataDir)
		if err != nil {
			return nil, "", err
		}
		var writtenAt string
		info, err := fm.Stat()
		switch {
		case err == nil && info.WrittenAt > 0:
			writtenAt = time.UnixMilli(info.WrittenAt).UTC().Format(time.RFC3339)
		case err != nil && !errors.Is(err, stable.ErrNoState):
			fm.Close()
			return nil, "", err
		}
		return fm, writtenAt, nil
	case "badger":
		cfg := stable.DefaultBadgerConfig(dataDir)
		bm, err := stable.NewBadgerMedium(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			return nil, "", err
		}
		return bm, "", nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q (want file or badger)", backend)
	}
}

func inspectSealConfig(c *cli.Context) (stable.SealConfig, bool, error) {
	key := c.String("encryption-key")
	passphrase := c.String("encryption-passphrase")

	switch {
	case key == "" && passphrase == "":
		return stable.SealConfig{}, false, nil
	case key != "" && passphrase != "":
		return stable.SealConfig{}, false, fmt.Errorf("--encryption-key and --encryption-passphrase are mutually exclusive")
	case passphrase != "":
		return stable.SealConfig{Passphrase: []byte(passphrase)}, true, nil
	}

	raw, err := stable.ParseKey(key)
	if err != nil {
		return stable.SealConfig{}, false, fmt.Errorf("--encryption-key: %w", err)
	}
	return stable.SealConfig{Key: raw}, true, nil
}
