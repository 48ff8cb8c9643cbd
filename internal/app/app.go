// Package app assembles the server: storage, cache, deck engine, websocket
// hub, REST surface, and the background sweeper.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tandemchat/backend/internal/api"
	"github.com/tandemchat/backend/internal/cache"
	"github.com/tandemchat/backend/internal/chat"
	"github.com/tandemchat/backend/internal/config"
	"github.com/tandemchat/backend/internal/db"
	"github.com/tandemchat/backend/internal/deck"
	"github.com/tandemchat/backend/internal/lemma"
	"github.com/tandemchat/backend/internal/logging"
	"github.com/tandemchat/backend/internal/maintenance"
	"github.com/tandemchat/backend/internal/validate"
)

const sweepInterval = 5 * time.Minute

// Run starts the application and blocks until shutdown.
func Run(ctx context.Context, cfg *config.Config) error {
	logging.Init(os.Stdout, logging.ParseLevel(cfg.App.LogLevel))
	logging.Info("configuration loaded", map[string]interface{}{
		"http_address": cfg.App.HTTP.Address(),
		"data_dir":     cfg.Data.Dir,
		"log_level":    cfg.App.LogLevel,
	})

	database, err := db.Open(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	repo := db.NewRepository(database)
	defer repo.Close()

	mem := cache.NewMemory()
	sessions := deck.NewSessionStore(mem)

	lemmatizer := lemma.New()
	if kagome, err := lemma.NewKagome(); err != nil {
		logging.Warn("japanese lemmatizer unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		lemmatizer.Register("ja", kagome)
	}
	engine := deck.NewEngine(lemmatizer)
	engine.MinFrontLen = cfg.Matcher.MinTokenLen

	var validator validate.Validator
	if cfg.Validator.Enabled() {
		opts := []validate.Option{validate.WithTimeout(cfg.Validator.Timeout.Std())}
		if cfg.Validator.BaseURL != "" {
			opts = append(opts, validate.WithBaseURL(cfg.Validator.BaseURL))
		}
		if cfg.Validator.Model != "" {
			opts = append(opts, validate.WithModel(cfg.Validator.Model))
		}
		client, err := validate.NewClient(cfg.Validator.APIKey, opts...)
		if err != nil {
			return fmt.Errorf("init validator: %w", err)
		}
		validator = client
	} else {
		logging.Warn("message validation disabled, no API key configured")
	}

	registry := chat.NewManager()
	var reviewer *chat.Reviewer
	if validator != nil {
		reviewer = chat.NewReviewer(sessions, engine, validator, repo)
	}
	pipeline := chat.NewPipeline(repo, registry, mem, reviewer)

	secret := []byte(cfg.Auth.JWTSecret)
	handler := api.NewHandler(repo, mem, sessions)
	router := api.NewRouter(handler, secret, api.WSHandler(secret, registry, pipeline))

	sweeper := maintenance.New(mem, sweepInterval)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start cache sweeper: %w", err)
	}
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("starting http server", map[string]interface{}{
			"address": cfg.App.HTTP.Address(),
		})
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logging.Info("received shutdown signal", map[string]interface{}{
				"signal": sig.String(),
			})
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("http server shutdown error", err)
		}

		// Let in-flight review tasks finish before the process exits.
		pipeline.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("application error", err)
		return err
	}

	logging.Info("server stopped")
	return nil
}
