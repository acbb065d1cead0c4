package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/nightreign-tools/relicplanner/internal/config"
	"github.com/nightreign-tools/relicplanner/internal/optimizer"
)

// Run is relicctl's entry point. It parses global flags, loads
// configuration, dispatches to a subcommand, and returns a process exit
// code. sigCh may be nil when signal handling is not needed (e.g. tests).
func Run(_ io.Reader, out, errOut io.Writer, args []string, env []string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("relicctl", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagResourceDir := globalFlags.String("resource-dir", "", "Override resource `directory`")

	if err := globalFlags.Parse(args[1:]); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	workDir := *flagCwd
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}

		workDir = wd
	}

	cfg, _, err := config.Load(workDir, *flagConfig, config.Config{ResourceDir: *flagResourceDir}, *flagResourceDir != "", env)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	if cfg.DeadlineMillis > 0 {
		optimizer.Deadline = time.Duration(cfg.DeadlineMillis) * time.Millisecond
	}

	commands := allCommands(cfg)

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || (len(commandAndArgs) == 0 && globalFlags.NFlag() == 0) {
		printUsage(out, commands)

		return 0
	}

	if len(commandAndArgs) == 0 {
		fmt.Fprintln(errOut, "error: no command provided")
		printUsage(errOut, commands)

		return 1
	}

	cmdName := commandAndArgs[0]

	cmd, ok := commandMap[cmdName]
	if !ok {
		fmt.Fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, commands)

		return 1
	}

	cmdIO := NewIO(out, errOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)

	go func() {
		done <- cmd.Run(ctx, cmdIO, commandAndArgs[1:])
	}()

	select {
	case exitCode := <-done:
		if exitCode != 0 {
			return exitCode
		}

		return cmdIO.Finish()
	case <-sigCh:
		fmt.Fprintln(errOut, "shutting down with 5s timeout...")
		cancel()
	}

	select {
	case <-done:
		fmt.Fprintln(errOut, "graceful shutdown ok (130)")

		return 130
	case <-time.After(5 * time.Second):
		fmt.Fprintln(errOut, "graceful shutdown timed out, forced exit (130)")

		return 130
	case <-sigCh:
		fmt.Fprintln(errOut, "graceful shutdown interrupted, forced exit (130)")

		return 130
	}
}

// allCommands returns every relicctl subcommand in display order.
func allCommands(cfg config.Config) []*Command {
	return []*Command{
		ParseCmd(cfg),
		OptimizeCmd(cfg),
		DiffCmd(cfg),
		ShellCmd(cfg),
	}
}

func printGlobalOptions(w io.Writer) {
	fmt.Fprintln(w, "Global options: -C, --cwd <dir>  -c, --config <file>  --resource-dir <dir>  -h, --help")
}

func printUsage(w io.Writer, commands []*Command) {
	fmt.Fprintln(w, "relicctl — relic planner kernel CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: relicctl [global options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, cmd := range commands {
		fmt.Fprintln(w, cmd.HelpLine())
	}

	fmt.Fprintln(w)
	printGlobalOptions(w)
}
