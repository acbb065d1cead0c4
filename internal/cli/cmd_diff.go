package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nightreign-tools/relicplanner/internal/config"
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// ErrMissingDiffArgs is returned when `diff` is invoked without two save
// file paths.
var ErrMissingDiffArgs = errors.New("diff requires <old-save-file> and <new-save-file>")

// diffResult summarizes the fingerprint-level changes between two
// inventory snapshots for one character.
type diffResult struct {
	Added          []relic.OwnedRelic `json:"added"`
	Removed        []relic.OwnedRelic `json:"removed"`
	RemappedHandle []handleRemap      `json:"remapped_handles"`
}

type handleRemap struct {
	Fingerprint relic.Fingerprint `json:"fingerprint"`
	OldHandle   uint32            `json:"old_handle"`
	NewHandle   uint32            `json:"new_handle"`
}

// DiffCmd compares two save file snapshots for a character and reports
// which relics were added, removed, or merely reassigned a new handle.
func DiffCmd(cfg config.Config) *Command {
	flags := flag.NewFlagSet("diff", flag.ContinueOnError)
	character := flags.String("character", "", "Character to diff")

	return &Command{
		Flags: flags,
		Usage: "diff <old-save-file> <new-save-file> [flags]",
		Short: "Show inventory changes between two save snapshots",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return ErrMissingDiffArgs
			}

			gd, err := gamedata.Load(cfg.ResourceDir)
			if err != nil {
				return fmt.Errorf("loading game data: %w", err)
			}

			oldInv, err := loadInventory(args[0], *character, gd, o)
			if err != nil {
				return err
			}

			newInv, err := loadInventory(args[1], *character, gd, o)
			if err != nil {
				return err
			}

			result := diffInventories(oldInv, newInv)

			enc, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}

			o.Println(string(enc))

			return nil
		},
	}
}

func diffInventories(oldInv, newInv []relic.OwnedRelic) diffResult {
	oldByFP := make(map[relic.Fingerprint]relic.OwnedRelic, len(oldInv))
	for _, r := range oldInv {
		oldByFP[r.Fingerprint()] = r
	}

	newByFP := make(map[relic.Fingerprint]relic.OwnedRelic, len(newInv))
	for _, r := range newInv {
		newByFP[r.Fingerprint()] = r
	}

	var result diffResult

	for fp, r := range newByFP {
		old, existed := oldByFP[fp]
		if !existed {
			result.Added = append(result.Added, r)

			continue
		}

		if old.Handle != r.Handle {
			result.RemappedHandle = append(result.RemappedHandle, handleRemap{
				Fingerprint: fp,
				OldHandle:   old.Handle,
				NewHandle:   r.Handle,
			})
		}
	}

	for fp, r := range oldByFP {
		if _, stillPresent := newByFP[fp]; !stillPresent {
			result.Removed = append(result.Removed, r)
		}
	}

	return result
}
