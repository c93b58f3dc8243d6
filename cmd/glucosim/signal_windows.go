//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals cancels in-flight fixture I/O on Ctrl+C.
// SIGTERM does not exist on Windows.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
