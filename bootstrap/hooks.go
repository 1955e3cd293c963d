package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

type phase int

const (
	// after every component started
	phaseStart phase = iota
	// after the ready check, before waiting for a signal
	phaseReady
	// at shutdown, before components stop
	phaseStop
)

var phaseNames = [...]string{"start", "ready", "stop"}

func (p phase) String() string { return phaseNames[p] }

// OnStart registers hooks that run once all components have started.
func (a *App[C]) OnStart(hooks ...Hook) { a.hooks[phaseStart] = append(a.hooks[phaseStart], hooks...) }

// OnReady registers hooks that run after the ready check.
func (a *App[C]) OnReady(hooks ...Hook) { a.hooks[phaseReady] = append(a.hooks[phaseReady], hooks...) }

// OnStop registers hooks that run at shutdown before components stop.
func (a *App[C]) OnStop(hooks ...Hook) { a.hooks[phaseStop] = append(a.hooks[phaseStop], hooks...) }

// run calls the hooks of p in order and stops at the first error.
func (a *App[C]) run(ctx context.Context, p phase) error {
	for i, h := range a.hooks[p] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", p, i, err)
		}
	}
	return nil
}
