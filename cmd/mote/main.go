package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mote-dev/mote/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┌┬┐┌─┐
  ║║║│ │ │ ├┤
  ╩ ╩└─┘ ┴ └─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "mote",
		Short: "DOM utilities for Go, local or over the wire",
		Long: `Mote is a small DOM utility toolkit for Go.

Drive real browser pages over a WebSocket bridge, or in-memory
documents in tests, through one API. Features include:

  • Class and attribute helpers with token semantics
  • Capability-probed selector lookup with a legacy fallback
  • A one-shot ready dispatcher fed by redundant sources
  • Event binding and delegation with a direct-bind fallback
  • One-shot fetches with success/failure callbacks`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		demoCmd(),
		snapshotCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the mote ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
