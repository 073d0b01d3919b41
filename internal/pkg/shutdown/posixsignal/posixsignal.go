// Package posixsignal implements a shutdown.Manager that triggers a
// graceful shutdown on SIGINT/SIGTERM.
package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/hivegate/internal/pkg/shutdown"
)

type Manager struct {
	signals []os.Signal
}

func NewPosixSignalManager(sig ...os.Signal) *Manager {
	if len(sig) == 0 {
		sig = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &Manager{signals: sig}
}

func (m *Manager) Name() string { return "posix-signal" }

func (m *Manager) Start(gs *shutdown.GracefulShutdown) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, m.signals...)
	go func() {
		sig := <-c
		gs.Shutdown(sig.String())
		os.Exit(0)
	}()
	return nil
}
