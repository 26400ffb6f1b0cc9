// Command voicescribe runs the Telegram voice transcription bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/voicescribe/bootstrap"
	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/config"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/server"
	"github.com/kbukum/voicescribe/storage"
	_ "github.com/kbukum/voicescribe/storage/local"
	"github.com/kbukum/voicescribe/telegram"
	"github.com/kbukum/voicescribe/transcription"
	_ "github.com/kbukum/voicescribe/transcription/vosk"
	"github.com/kbukum/voicescribe/voice"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched for when empty)")
	envFile := flag.String("env", "", "path to .env (searched for when empty)")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Close() }()

	tel, err := initTelemetry(ctx, &cfg.Observability, app.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			app.Logger.Warn("telemetry shutdown failed", logger.MergeWithError(nil, err))
		}
	}()

	store := storage.NewComponent(cfg.Storage, app.Logger)
	model := transcription.NewModelComponent(transcription.Models, cfg.Model.Provider, cfg.Model.Options(), app.Logger)
	bot, err := telegram.New(cfg.Telegram, app.Logger)
	if err != nil {
		return err
	}
	for _, c := range []component.Component{store, model, bot} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, app.Logger)
		srv.Probes(cfg.Name, app.Components.HealthAll)
		if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
	}

	var (
		orchestrator *voice.Orchestrator
		clients      *clientSet
	)
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
		var err error
		clients, err = newClients(a.Cfg, tel.Metrics, a.Logger)
		if err != nil {
			return err
		}
		orchestrator, err = voice.New(a.Cfg.Voice, voice.Deps{
			Source:     bot,
			Fetcher:    clients.download,
			Converter:  clients.converter,
			Recognizer: transcription.NewRecognizer(model, a.Logger),
			Storage:    store.Storage(),
			Metrics:    tel.Metrics,
		}, a.Logger)
		return err
	})
	app.OnReady(func(context.Context) error {
		return bot.Listen(orchestrator)
	})

	err = app.Run(ctx)
	if clients != nil {
		clients.Close(context.Background())
	}
	return err
}

// telemetry owns the otel providers installed for the process.
type telemetry struct {
	Metrics  *observability.Metrics
	shutdown []func(context.Context) error
}

func initTelemetry(ctx context.Context, cfg *observability.Config, log *logger.Logger) (*telemetry, error) {
	t := &telemetry{}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Tracing)
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		t.shutdown = append(t.shutdown, tp.Shutdown)
		log.Info("trace export enabled", map[string]interface{}{
			"endpoint":    cfg.Tracing.Endpoint,
			"sample_rate": cfg.Tracing.SampleRate,
		})
	}
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Metrics)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("metrics: %w", err)
		}
		t.shutdown = append(t.shutdown, mp.Shutdown)
		log.Info("metric export enabled", map[string]interface{}{
			"endpoint": cfg.Metrics.Endpoint,
			"interval": cfg.Metrics.Interval.String(),
		})
	}

	m, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}
	t.Metrics = m
	return t, nil
}

// Shutdown flushes and stops the providers in reverse order.
func (t *telemetry) Shutdown(ctx context.Context) error {
	var first error
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		if err := t.shutdown[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	t.shutdown = nil
	return first
}
