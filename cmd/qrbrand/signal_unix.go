// Unix/Darwin shutdown signals for watch mode.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).
// Watch mode stops on SIGINT (Ctrl+C) and on SIGTERM, the conventional
// signal sent by process managers and container runtimes.

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// shutdownSignals returns the signals that end watch mode.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}
