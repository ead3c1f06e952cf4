// covergen writes a captioned cover image next to every video in a folder.
//
// Usage:
//
//	covergen run [folder] [--seek 1.0] [--workers 4] [--font path]
//	covergen render --image still.png --title "My Trip" -o cover.jpg
//	covergen config init|show
//	covergen serve [--bind 127.0.0.1:7490]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/xob0t/covergen/pkg/batch"
)

const (
	exitFatal   = 1
	exitPartial = 2
)

func main() {
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if shouldPrintError(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// shouldPrintError is false for interruptions and for item failures, which
// the printed report already lists.
func shouldPrintError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var partial *batch.PartialFailureError
	return !errors.As(err, &partial)
}

// exitCode is 2 when a batch finished with item failures and 1 otherwise.
func exitCode(err error) int {
	var partial *batch.PartialFailureError
	if errors.As(err, &partial) && !errors.Is(err, context.Canceled) {
		return exitPartial
	}
	return exitFatal
}
