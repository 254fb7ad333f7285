// Windows shutdown signals for watch mode.
//
// This file is compiled only on Windows. Windows does not support POSIX
// signals like SIGTERM, so only [os.Interrupt] (Ctrl+C / CTRL_C_EVENT) is
// registered. The Go runtime translates CTRL_BREAK_EVENT and console-close
// events into os.Interrupt as well.

//go:build windows

package main

import "os"

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// shutdownSignals returns the signals that end watch mode.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
