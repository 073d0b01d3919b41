// Package shutdown coordinates graceful process termination across several
// independently-started managers (POSIX signals, future ones such as a
// supervisor ping) and a list of cleanup callbacks run in registration order.
package shutdown

import (
	"fmt"
)

// Manager starts watching for its trigger condition and calls back into the
// GracefulShutdown it was registered with when it fires.
type Manager interface {
	Name() string
	Start(gs *GracefulShutdown) error
}

// Func adapts a plain function to the Callback interface.
type Func func(name string) error

func (f Func) OnShutdown(name string) error { return f(name) }

// Callback runs when a shutdown is triggered.
type Callback interface {
	OnShutdown(name string) error
}

// GracefulShutdown owns the registered managers and callbacks.
type GracefulShutdown struct {
	managers  []Manager
	callbacks []Callback
}

func New() *GracefulShutdown {
	return &GracefulShutdown{}
}

func (gs *GracefulShutdown) AddShutdownManager(m Manager) {
	gs.managers = append(gs.managers, m)
}

func (gs *GracefulShutdown) AddShutdownCallback(c Callback) {
	gs.callbacks = append(gs.callbacks, c)
}

// Start starts every registered manager.
func (gs *GracefulShutdown) Start() error {
	for _, m := range gs.managers {
		if err := m.Start(gs); err != nil {
			return fmt.Errorf("shutdown manager %q failed to start: %w", m.Name(), err)
		}
	}
	return nil
}

// Shutdown runs every registered callback, in registration order, continuing
// past individual callback errors so one broken subsystem cannot block the
// rest of the shutdown sequence.
func (gs *GracefulShutdown) Shutdown(reason string) {
	for _, c := range gs.callbacks {
		if err := c.OnShutdown(reason); err != nil {
			fmt.Printf("shutdown callback error: %v\n", err)
		}
	}
}
