// Command flowforged serves the workflow builder API: stored workflows,
// validation, execution against the external engine, and the agent
// catalogue.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/avi3tal/flowforge/internal/agents"
	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/config"
	"github.com/avi3tal/flowforge/internal/engine"
	"github.com/avi3tal/flowforge/internal/httpapi"
	"github.com/avi3tal/flowforge/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	eng := engine.NewClient(cfg.Engine.Endpoint, engine.WithLogger(log))

	opts := []httpapi.Option{
		httpapi.WithLogger(log),
		httpapi.WithBounds(builder.Bounds{
			Width:      cfg.Canvas.Width,
			Height:     cfg.Canvas.Height,
			NodeWidth:  cfg.Canvas.NodeWidth,
			NodeHeight: cfg.Canvas.NodeHeight,
		}),
	}
	if completer := buildCompleter(cfg, log); completer != nil {
		opts = append(opts, httpapi.WithCompleter(completer))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpapi.New(st, eng, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("flowforged listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func openStore(cfg config.Config, log *zap.Logger) (*store.Store, error) {
	if cfg.Store.InMemory {
		return store.OpenInMemory()
	}
	return store.Open(cfg.Store.Path, log)
}

// buildCompleter sets up the LLM completion service for the agent
// endpoints. The service is optional: without credentials the builder API
// still works, agent runs just return 503.
func buildCompleter(cfg config.Config, log *zap.Logger) agents.Completer {
	model, err := openai.New(openai.WithModel(cfg.LLM.Model))
	if err != nil {
		log.Warn("completion service unavailable", zap.Error(err))
		return nil
	}
	return agents.NewCompleter(model)
}
