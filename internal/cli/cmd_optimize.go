package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nightreign-tools/relicplanner/internal/build"
	"github.com/nightreign-tools/relicplanner/internal/config"
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/inventory"
	"github.com/nightreign-tools/relicplanner/internal/optimizer"
	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/resultcache"
	"github.com/nightreign-tools/relicplanner/internal/save"
)

// ErrMissingOptimizeArgs is returned when `optimize` is invoked without
// both a save file and a build definition.
var ErrMissingOptimizeArgs = errors.New("optimize requires <save-file> and <build.yaml>")

// OptimizeCmd runs the full save -> inventory -> optimizer pipeline for one
// build and prints the ranked vessel results as JSON.
func OptimizeCmd(cfg config.Config) *Command {
	flags := flag.NewFlagSet("optimize", flag.ContinueOnError)
	topN := flags.Int("top-n", cfg.DefaultTopN, "Number of vessel results to return")
	maxPerVessel := flags.Int("max-per-vessel", cfg.DefaultMaxVessel, "Alternative assignments considered per vessel")
	character := flags.String("character", "", "Character whose inventory to optimize against")
	cachePath := flags.String("cache", "", "Result cache file path (skipped when empty)")

	return &Command{
		Flags: flags,
		Usage: "optimize <save-file> <build.yaml> [flags]",
		Short: "Compute the best relic-to-slot assignment for a build",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return ErrMissingOptimizeArgs
			}

			b, err := build.Load(args[1])
			if err != nil {
				return fmt.Errorf("loading build: %w", err)
			}

			if *character != "" {
				b.Character = *character
			}

			gd, err := gamedata.Load(cfg.ResourceDir)
			if err != nil {
				return fmt.Errorf("loading game data: %w", err)
			}

			inv, err := loadInventory(args[0], b.Character, gd, o)
			if err != nil {
				return err
			}

			results := optimizer.Optimize(gd, b, inv, *topN, *maxPerVessel)

			if *cachePath != "" {
				if err := cacheResults(*cachePath, b.ID, results); err != nil {
					o.Warn(fmt.Sprintf("result cache not updated: %v", err))
				}
			}

			enc, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}

			o.Println(string(enc))

			return nil
		},
	}
}

func loadInventory(savePath, character string, gd *gamedata.Resolver, o *IO) ([]relic.OwnedRelic, error) {
	blobs, err := save.DecodeFile(savePath)
	if err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}

	var out []relic.OwnedRelic

	for _, blob := range blobs {
		ch, err := inventory.ParseCharacter(blob.Data, blob.SlotIndex, gd)
		if err != nil {
			o.Warn(fmt.Sprintf("slot %d: %v", blob.SlotIndex, err))

			continue
		}

		if character != "" && ch.Name != character {
			continue
		}

		out = append(out, ch.Relics...)
	}

	return out, nil
}

func cacheResults(path, buildID string, results []relic.VesselResult) error {
	c, err := resultcache.Open(path)
	if err != nil {
		return fmt.Errorf("opening result cache: %w", err)
	}

	for _, res := range results {
		c.Put(resultcache.Key{BuildID: buildID, VesselID: res.VesselID}, res)
	}

	if err := c.Save(); err != nil {
		return fmt.Errorf("saving result cache: %w", err)
	}

	return nil
}
