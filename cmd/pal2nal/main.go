// Command pal2nal converts batches of protein multiple-sequence alignments
// into the matching codon alignments.
//
// It loads layered configuration, validates the batch layout and the
// genetic code table, and dispatches every alignment pair to a worker pool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	return exitStatus(root.ExecuteContext(context.Background()), os.Stderr)
}

// exitCode carries a process exit status out of a command without an
// additional message; the command has already logged the cause.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

// exitStatus maps a command error to the process exit status, printing
// errors that were not already reported.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(stderr, "pal2nal: %v\n", err)
	return 1
}
