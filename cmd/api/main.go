package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sanashii/Simple-CRUD-API/internal/config"
	"github.com/sanashii/Simple-CRUD-API/internal/handler"
	"github.com/sanashii/Simple-CRUD-API/internal/model/task"
	"github.com/sanashii/Simple-CRUD-API/internal/openapi"
	taskService "github.com/sanashii/Simple-CRUD-API/internal/service/task"
	"github.com/sanashii/Simple-CRUD-API/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logger.New("tasks", cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}
	if envErr != nil {
		log.WithError(envErr).Warn("failed to load .env file, continuing with system environment variables only")
	}

	store, err := newStore(ctx, cfg.Store, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize task store")
	}

	doc, err := openapi.Load(ctx, cfg.Server.PublicURL)
	if err != nil {
		log.WithError(err).Fatal("failed to load API description")
	}

	taskSvc := taskService.NewService(store, cfg.Store.UpdateMode, log)
	router := handler.NewRouter(taskSvc, doc, log)

	startServer(ctx, cfg.Server, router, log.WithField("api_version", doc.Version()))
}

func newStore(ctx context.Context, cfg config.StoreConfig, log logrus.FieldLogger) (task.Store, error) {
	if cfg.Driver == config.StoreDriverMemory {
		log.Warn("using in-memory task store, data is lost on exit")
		return task.NewMemoryStore(nil), nil
	}

	fileStore := task.NewFileStore(cfg.Path)
	if err := fileStore.Init(ctx); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"path":        fileStore.Path(),
		"update_mode": cfg.UpdateMode,
	}).Info("task file store ready")
	return fileStore, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log logrus.FieldLogger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("addr", addr).Info("task API listening")
	if err := runServer(ctx, srv); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
