package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/nightreign-tools/relicplanner/internal/build"
	"github.com/nightreign-tools/relicplanner/internal/config"
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/optimizer"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// ShellCmd opens an interactive REPL for iterating on a build against a
// loaded save file without reloading game data on every invocation.
func ShellCmd(cfg config.Config) *Command {
	flags := flag.NewFlagSet("shell", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "shell [flags]",
		Short: "Open an interactive planning session",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			gd, err := gamedata.Load(cfg.ResourceDir)
			if err != nil {
				return fmt.Errorf("loading game data: %w", err)
			}

			r := &shellREPL{gd: gd, cfg: cfg, out: o}

			return r.run()
		},
	}
}

type shellREPL struct {
	gd    *gamedata.Resolver
	cfg   config.Config
	out   *IO
	liner *liner.State

	inventory []relic.OwnedRelic
	build     relic.Build
}

func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".relicctl_history")
}

func (r *shellREPL) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(shellHistoryFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)

		_ = f.Close()
	}

	r.out.Println("relicctl shell. Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("relicctl> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				r.out.Println("bye")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		if cmd == "exit" || cmd == "quit" || cmd == "q" {
			r.out.Println("bye")

			break
		}

		r.dispatch(cmd, args)
	}

	r.saveHistory()

	return nil
}

func (r *shellREPL) saveHistory() {
	path := shellHistoryFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil { //nolint:gosec // user-owned history file
		_, _ = r.liner.WriteHistory(f)

		_ = f.Close()
	}
}

func (r *shellREPL) completer(line string) []string {
	commands := []string{"load", "build", "optimize", "pin", "unpin", "inventory", "help", "exit", "quit"}

	var out []string

	lower := strings.ToLower(line)

	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}

	return out
}

func (r *shellREPL) dispatch(cmd string, args []string) {
	switch cmd {
	case "help", "?":
		r.printHelp()
	case "load":
		r.cmdLoad(args)
	case "build":
		r.cmdBuild(args)
	case "optimize":
		r.cmdOptimize(args)
	case "pin":
		r.cmdPin(args)
	case "unpin":
		r.cmdUnpin(args)
	case "inventory":
		r.cmdInventory()
	default:
		r.out.Println("unknown command:", cmd, "(type 'help')")
	}
}

func (r *shellREPL) printHelp() {
	r.out.Println("Commands:")
	r.out.Println("  load <save-file> [character]   Load an inventory from a save file")
	r.out.Println("  build <build.yaml>              Load a build definition")
	r.out.Println("  pin <handle>                     Add a relic handle to the current build's pins")
	r.out.Println("  unpin <handle>                   Remove a pinned relic handle")
	r.out.Println("  inventory                        Show loaded relic count")
	r.out.Println("  optimize [top-n] [max-per-vessel] Run the optimizer and print results")
	r.out.Println("  help                              Show this help")
	r.out.Println("  exit / quit / q                   Exit")
}

func (r *shellREPL) cmdLoad(args []string) {
	if len(args) < 1 {
		r.out.Println("usage: load <save-file> [character]")

		return
	}

	character := ""
	if len(args) >= 2 {
		character = args[1]
	}

	inv, err := loadInventory(args[0], character, r.gd, r.out)
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.inventory = inv
	r.out.Println("loaded", len(inv), "relics")
}

func (r *shellREPL) cmdBuild(args []string) {
	if len(args) < 1 {
		r.out.Println("usage: build <build.yaml>")

		return
	}

	b, err := build.Load(args[0])
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.build = b
	r.out.Println("loaded build", b.Name)
}

func (r *shellREPL) cmdPin(args []string) {
	if len(args) < 1 {
		r.out.Println("usage: pin <handle>")

		return
	}

	h, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		r.out.Println("error: invalid handle:", args[0])

		return
	}

	r.build.PinnedRelics = append(r.build.PinnedRelics, h)
	r.out.Println("pinned", h)
}

func (r *shellREPL) cmdUnpin(args []string) {
	if len(args) < 1 {
		r.out.Println("usage: unpin <handle>")

		return
	}

	h, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		r.out.Println("error: invalid handle:", args[0])

		return
	}

	out := r.build.PinnedRelics[:0]

	for _, pin := range r.build.PinnedRelics {
		if pin != h {
			out = append(out, pin)
		}
	}

	r.build.PinnedRelics = out
	r.out.Println("unpinned", h)
}

func (r *shellREPL) cmdInventory() {
	r.out.Println(len(r.inventory), "relics loaded;", len(r.build.PinnedRelics), "pinned")
}

func (r *shellREPL) cmdOptimize(args []string) {
	if r.build.Tiers == nil && r.build.FamilyTiers == nil {
		r.out.Println("error: no build loaded (use 'build <file.yaml>')")

		return
	}

	topN := r.cfg.DefaultTopN
	maxPerVessel := r.cfg.DefaultMaxVessel

	if len(args) >= 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			topN = n
		}
	}

	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			maxPerVessel = n
		}
	}

	results := optimizer.Optimize(r.gd, r.build, r.inventory, topN, maxPerVessel)

	enc, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.out.Println(string(enc))
}
