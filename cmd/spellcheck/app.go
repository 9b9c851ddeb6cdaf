package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/spellcheck/internal/config"
	"github.com/phrazzld/spellcheck/internal/platform/logger"
	"github.com/phrazzld/spellcheck/internal/platform/wordlist"
	"github.com/phrazzld/spellcheck/internal/spellcheck"
	"github.com/phrazzld/spellcheck/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

// application holds the dependencies shared by every command.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	checker  *spellcheck.Spellchecker
	registry *prometheus.Registry
	server   *http.Server
}

// newApplication loads configuration, applies flag overrides and starts the
// spellchecker. The caller must call shutdown.
func newApplication(c *cli.Context) (*application, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("dict-path"); v != "" {
		cfg.Dictionary.SearchPath = v
	}
	if v := c.String("lang"); v != "" {
		cfg.Dictionary.Language = v
	}
	metricsAddr := c.String("metrics-addr")
	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log, err := logger.Setup(cfg.Log, c.App.ErrWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	engine := wordlist.New(wordlist.Config{SearchPath: cfg.Dictionary.SearchPath}, log)
	checker, err := spellcheck.New(engine, spellcheck.OptionsFromConfig(cfg, registry, log))
	if err != nil {
		return nil, fmt.Errorf("failed to start spellchecker: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   log,
		checker:  checker,
		registry: registry,
	}
	if metricsAddr != "" {
		app.server = app.startOpsServer(metricsAddr)
	}

	log.Debug("spellcheck configuration loaded",
		"workers", cfg.Dispatcher.Workers,
		"queue_size", cfg.Dispatcher.QueueSize,
		"search_path", cfg.Dictionary.SearchPath,
		"language", cfg.Dictionary.Language)
	return app, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadDictionary binds the configured language.
func (app *application) loadDictionary() error {
	lang := app.config.Dictionary.Language
	if lang == "" {
		return errors.New("no dictionary language set; use --lang or SPELLCHECK_DICTIONARY_LANGUAGE")
	}
	loaded, err := app.checker.SetDictionary(lang)
	if err != nil {
		return err
	}
	if !loaded {
		return fmt.Errorf("no dictionary for %q in %s", lang, app.config.Dictionary.SearchPath)
	}
	return nil
}

// submit calls fn until the dispatcher accepts the request. While the queue
// is full it delivers completions so that workers can make room.
func (app *application) submit(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if !task.IsRetryable(err) {
			return err
		}
		app.logger.Debug("dispatcher queue full, delivering completions before retry")
		if err := app.pump(ctx); err != nil {
			return err
		}
	}
}

// pump waits for completions and delivers them on the calling goroutine.
func (app *application) pump(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-app.checker.Completions():
		_, err := app.checker.DispatchCompletions()
		return err
	}
}

// wait delivers completions until done reports true.
func (app *application) wait(ctx context.Context, done func() bool) error {
	for !done() {
		if err := app.pump(ctx); err != nil {
			return err
		}
	}
	return nil
}

// shutdown closes the spellchecker within the configured timeout, delivering
// any remaining callbacks, then stops the ops server.
func (app *application) shutdown() error {
	ctx := context.Background()
	if timeout := app.config.Dispatcher.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := app.checker.Close(ctx)
	if err != nil {
		app.logger.Error("spellchecker did not shut down cleanly", "error", err)
	}
	app.logger.Debug("spellchecker stats", "stats", app.checker.Stats())

	if app.server != nil {
		if serr := app.server.Shutdown(ctx); serr != nil {
			app.logger.Error("ops server shutdown failed", "error", serr)
		}
	}
	return err
}
