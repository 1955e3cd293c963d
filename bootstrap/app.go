package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/drivegate/component"
	"github.com/kbukum/drivegate/logger"
)

// App runs a set of components with a typed config C until it receives
// SIGINT or SIGTERM.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	hooks           map[phase][]Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	s := newSettings(opts)
	base := cfg.GetServiceConfig()

	log := s.logger
	if log == nil {
		logger.Init(&base.Logging)
		log = logger.GetGlobalLogger()
	}

	summary := NewSummary(base.Name, base.Version)
	summary.out = s.summaryOut

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          log,
		Summary:         summary,
		gracefulTimeout: s.gracefulTimeout,
		hooks:           map[phase][]Hook{},
	}, nil
}

// RegisterComponent adds c. Components start in registration order and
// stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck returns an error listing every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var issues []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		issue := fmt.Sprintf("%s=%s", h.Name, h.Status)
		if h.Message != "" {
			issue += " (" + h.Message + ")"
		}
		issues = append(issues, issue)
	}
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("components not healthy: %s", strings.Join(issues, ", "))
}

// Run starts everything, waits for a signal or for ctx to end, then shuts
// down within the graceful timeout.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	a.Logger.Info("Application ready")
	a.WaitForSignal(ctx)
	return a.Shutdown(context.Background())
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := a.run(ctx, phaseStart); err != nil {
		return err
	}
	// an unhealthy component is reported but does not abort startup
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := a.run(ctx, phaseReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(a.Components)
	return nil
}

// WaitForSignal blocks until SIGINT or SIGTERM, returning it, or until ctx
// ends, returning nil.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context done, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and stops every started component. The
// graceful timeout applies on top of any deadline in ctx.
func (a *App[C]) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()
	a.Logger.Info("Shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	hookErr := a.run(ctx, phaseStop)
	if hookErr != nil {
		a.Logger.Error("Stop hook failed", logger.Fields(logger.FieldError, hookErr.Error()))
	}
	stopErr := a.Components.StopAll(ctx)
	if stopErr != nil {
		a.Logger.Error("Components stopped with errors", logger.Fields(logger.FieldError, stopErr.Error()))
	}
	a.Logger.Info("Shutdown complete")
	return errors.Join(hookErr, stopErr)
}
