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

	"github.com/pspoerri/atlas-composer/internal/config"
	"github.com/pspoerri/atlas-composer/internal/logger"
	"github.com/pspoerri/atlas-composer/internal/param"
	"github.com/pspoerri/atlas-composer/internal/preset"
	"github.com/pspoerri/atlas-composer/internal/projection"
	"github.com/pspoerri/atlas-composer/internal/server"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	cfg, err := server.LoadConfig()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	store, err := preset.OpenStore(cfg.PresetDB)
	if err != nil {
		l.Error("store_open_error", "err", err, "path", cfg.PresetDB)
		os.Exit(1)
	}
	defer store.Close()
	l.Info("store_open_ok", "path", cfg.PresetDB)

	svc := &preset.Service{
		Codec: config.NewCodec(param.NewDefaultRegistry(), projection.NewDefaultRegistry()),
		Store: store,
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(l, svc).Handler(),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		l.Info("shutdown_requested")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	l.Info("listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("serve_error", "err", err)
		os.Exit(1)
	}
	<-done
}
