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
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minqi/rush24/internal/config"
	"github.com/minqi/rush24/internal/room"
	"github.com/minqi/rush24/internal/server"
)

// Build metadata injected via -ldflags at build time.
var (
	buildVersion = "dev"
	buildTime    = ""
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Dev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	dir := room.NewDirectory(room.Options{Heartbeat: cfg.Heartbeat()}, log.Logger)
	srv := server.New(dir, buildVersion, buildTime, log.Logger)

	// The original clients are served from another origin, so everything
	// answers with permissive CORS, preflights included.
	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: cors.AllowAll().Handler(srv.Routes()),
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", buildVersion).Msg("rush24 server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown did not finish cleanly")
	}
}
