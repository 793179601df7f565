//go:build windows
// +build windows

package app

import (
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandling sets up signal handling for Windows.
func (app *App) setupSignalHandling(sigChan chan os.Signal) {
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
}
