package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/flywaysum/internal/cli"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(flywaysum.ExitPanic)
		}
	}()

	if os.Getenv("FLYWAYSUM_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(flywaysum.ExitCodeForError(err))
	}
}
