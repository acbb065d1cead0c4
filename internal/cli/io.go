package cli

import (
	"fmt"
	"io"
)

// IO wraps a command's stdout/stderr streams and collects deferred
// warnings (e.g. a skipped corrupt save slot, a dropped pin) so they
// remain visible to a caller piping or truncating stdout.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO creates an IO wrapping the given streams.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a non-fatal issue. Warnings are flushed to stderr before the
// first stdout write and again at Finish, and cause Finish to return exit
// code 1 even though the command itself otherwise succeeded.
func (o *IO) Warn(issue string) {
	o.warnings = append(o.warnings, issue)
}

// Println writes to stdout, flushing any pending warnings first.
func (o *IO) Println(a ...any) {
	o.flushStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout, flushing any pending warnings
// first.
func (o *IO) Printf(format string, a ...any) {
	o.flushStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr immediately, bypassing the warning buffer.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish flushes any remaining warnings to stderr and returns the exit code
// adjustment: 1 if warnings were recorded, 0 otherwise.
func (o *IO) Finish() int {
	o.flushStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
