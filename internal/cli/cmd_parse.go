package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nightreign-tools/relicplanner/internal/config"
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/inventory"
	"github.com/nightreign-tools/relicplanner/internal/save"
)

// ErrMissingSavePath is returned when `parse` is invoked without a save
// file argument.
var ErrMissingSavePath = errors.New("parse requires a save file path")

// ParseCmd decodes a save file and prints every character's canonicalized
// relic inventory as JSON.
func ParseCmd(cfg config.Config) *Command {
	flags := flag.NewFlagSet("parse", flag.ContinueOnError)
	character := flags.String("character", "", "Only print the named character's inventory")

	return &Command{
		Flags: flags,
		Usage: "parse <save-file> [flags]",
		Short: "Decode a save file into canonicalized relic inventories",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ErrMissingSavePath
			}

			blobs, err := save.DecodeFile(args[0])
			if err != nil {
				return fmt.Errorf("decoding save: %w", err)
			}

			gd, err := gamedata.Load(cfg.ResourceDir)
			if err != nil {
				return fmt.Errorf("loading game data: %w", err)
			}

			var characters []any

			for _, blob := range blobs {
				ch, err := inventory.ParseCharacter(blob.Data, blob.SlotIndex, gd)
				if err != nil {
					o.Warn(fmt.Sprintf("slot %d: %v", blob.SlotIndex, err))

					continue
				}

				if *character != "" && ch.Name != *character {
					continue
				}

				characters = append(characters, ch)
			}

			enc, err := json.MarshalIndent(characters, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}

			o.Println(string(enc))

			return nil
		},
	}
}
