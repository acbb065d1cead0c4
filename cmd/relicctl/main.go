// Command relicctl decodes Nightreign save files, resolves owned relic
// inventories against static game data, and computes optimized
// relic-to-vessel-slot assignments for a user-defined build.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nightreign-tools/relicplanner/internal/cli"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, os.Environ(), sigCh)

	os.Exit(exitCode)
}
