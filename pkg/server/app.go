// Package server ties the pipeline, the persistence backend, and the HTTP
// API into one application lifecycle.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MakerLens/internal/usecase"
	"MakerLens/pkg/config"
	xhttp "MakerLens/pkg/http"
	applogger "MakerLens/pkg/logger"
)

// App runs one analysis pass and optionally keeps serving the results.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	pipeline   *usecase.Pipeline
	processor  *usecase.ResultProcessor
	runs       *usecase.RunHolder
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	processor *usecase.ResultProcessor,
	runs *usecase.RunHolder,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		pipeline:  pipeline,
		processor: processor,
		runs:      runs,
		handler:   handler,
	}
}

// Run executes the pipeline, persists the result, and, when serve is set,
// blocks serving the API until interrupted.
func (a *App) Run(ctx context.Context, serve bool) error {
	defer a.processor.Close()

	res, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	a.runs.Set(res)

	if err := a.processor.Process(ctx, res); err != nil {
		return err
	}

	if !serve {
		return nil
	}

	a.httpServer = xhttp.NewServer(a.handler, a.l,
		xhttp.WithAddr("0.0.0.0", a.cfg.Server.Port),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		a.l.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.httpServer.Stop(shutdownCtx)
}
