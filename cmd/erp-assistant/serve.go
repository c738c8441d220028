package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erp-assistant/internal/api"
	"erp-assistant/internal/common/camunda"
	"erp-assistant/internal/common/config"
	"erp-assistant/internal/common/logger"
	answerquestion "erp-assistant/internal/workers/ai-conversation/answer-question"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and, when enabled, the Zeebe job worker",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Address = addr
	}

	log := newLogger(cfg, false)
	log.Info("starting erp-assistant", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx := context.Background()
	a, err := newApp(ctx, cfg, log, 15)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := api.Dependencies{
		Assistant:      a.assistant,
		Store:          a.store,
		Registry:       a.registry,
		Cache:          a.dispatcher,
		Ready:          a.ready,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}
	if a.interactions != nil {
		deps.Interactions = a.interactions
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.NewServer(deps, log).Router(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err := retryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
			return err
		}, 10, retryDelay, log, "Zeebe client initialization")
		if err != nil {
			return err
		}
		handler := answerquestion.NewHandler(newStageConfigs(cfg).worker, a.assistant, log)
		zeebe.StartWorker(answerquestion.TaskType, handler.Handle)
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err})
		}
		closeZeebe(zeebe, log)
		return err

	case sig := <-shutdown:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		closeZeebe(zeebe, log)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown did not complete", map[string]interface{}{"error": err})
			_ = srv.Close()
		}
		log.Info("erp-assistant stopped gracefully", nil)
		return nil
	}
}

func closeZeebe(zeebe *camunda.Client, log logger.Logger) {
	if zeebe == nil {
		return
	}
	if err := zeebe.Close(); err != nil {
		log.Error("error closing Zeebe client", map[string]interface{}{"error": err})
	}
}
