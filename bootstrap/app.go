package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/config"
	"github.com/kbukum/voicescribe/logger"
)

// Config is satisfied by any struct embedding config.ServiceConfig with
// mapstructure squash, through the promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

// DefaultGracefulTimeout bounds shutdown when WithGracefulTimeout is not
// given.
const DefaultGracefulTimeout = 15 * time.Second

// Hook runs at a fixed point of the lifecycle.
type Hook func(ctx context.Context) error

// Option configures NewApp.
type Option func(*options)

type options struct {
	log             *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
}

// WithLogger replaces the logger NewApp would build from the config's
// logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithGracefulTimeout bounds the whole shutdown sequence.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) { o.gracefulTimeout = d }
}

// WithSummaryOutput redirects the startup summary. io.Discard hides it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *options) { o.summaryOut = w }
}

// App drives a service through its lifecycle:
//
//  1. start registered components in order
//  2. OnStart hooks
//  3. OnConfigure callbacks, which get the typed config
//  4. ready check and OnReady hooks
//  5. wait for SIGINT, SIGTERM or ctx
//  6. OnStop hooks, then stop components in reverse
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onStart         []Hook
	onConfigure     []func(ctx context.Context, app *App[C]) error
	onReady         []Hook
	onStop          []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := options{gracefulTimeout: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		l, err := logger.Init(&base.Logging, base.Name)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		o.log = l
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(o.log),
		Logger:          o.log,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: o.gracefulTimeout,
	}
	if o.summaryOut != nil {
		app.Summary.out = o.summaryOut
	}
	return app, nil
}

// RegisterComponent adds c to the lifecycle. Register dependencies first.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnStart adds hooks that run once every component has started.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnConfigure adds a callback that wires the application from the typed
// config after components are up.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// OnReady adds hooks that run after the ready check. The bot starts
// taking updates here.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop adds hooks that run before components stop, such as stopping
// intake and draining in-flight runs.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

// ReadyCheck fails when any component reports anything but healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		s := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			s += " (" + h.Message + ")"
		}
		bad = append(bad, s)
	}
	if len(bad) > 0 {
		return fmt.Errorf("not ready: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run starts the application and blocks until a termination signal
// arrives or ctx is done, then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.Shutdown(context.Background()); stopErr != nil {
			a.Logger.Warn("shutdown after failed start", logger.MergeWithError(nil, stopErr))
		}
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.Logger.Info("ready, waiting for shutdown signal")
	<-sigCtx.Done()
	if ctx.Err() == nil {
		a.Logger.Info("shutdown signal received")
	}

	return a.Shutdown(context.Background())
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting", map[string]interface{}{"name": a.Name, "version": a.Version})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.MergeWithError(nil, err))
	}
	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Collect(a.Components)
	a.Summary.Display(ctx, a.Components)
	return nil
}

// Shutdown runs OnStop hooks and stops components within the graceful
// timeout. ctx may shorten it further.
func (a *App[C]) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()
	a.Logger.Info("shutting down", map[string]interface{}{"timeout": a.gracefulTimeout.String()})

	hookErr := runHooks(ctx, "stop", a.onStop)
	stopErr := a.Components.StopAll(ctx)
	err := errors.Join(hookErr, stopErr)
	if err != nil {
		a.Logger.Error("shutdown finished with errors", logger.MergeWithError(nil, err))
		return err
	}
	a.Logger.Info("shutdown complete")
	return nil
}

func runHooks(ctx context.Context, phase string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}
