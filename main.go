package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ferreirogomes/energytradehub/arbitration"
	"github.com/ferreirogomes/energytradehub/config"
	"github.com/ferreirogomes/energytradehub/handlers"
	"github.com/ferreirogomes/energytradehub/listener"
	"github.com/ferreirogomes/energytradehub/services"
	"github.com/ferreirogomes/energytradehub/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "energyhub: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	accts, err := cfg.Validate()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ledgerID := uuid.New()
	opts := services.Options{
		LedgerID:            ledgerID,
		Initializer:         accts.Admin,
		ArbitratorAccount:   accts.Arbitrator,
		MetaEvidenceTarget:  accts.MetaEvidenceTarget,
		EvidenceURI:         cfg.Arbitration.EvidenceURI,
		RequireConsumerRole: cfg.Market.RequireConsumerRole,
		Logger:              logger,
	}

	// O árbitro centralizado é operado pela própria conta do árbitro.
	arb := arbitration.NewCentralized(accts.Arbitrator, logger)
	opts.Arbitrator = arb

	hub, err := services.NewHub(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal handlers.JournalReader
	listenerDone := make(chan struct{})
	if cfg.Database.DSN != "" {
		db, err := storage.NewDB(cfg.Database.Driver, cfg.Database.DSN, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		j := db.Journal(ledgerID)
		journal = j

		// Inicializa e inicia o listener do journal em uma goroutine separada
		l := listener.NewJournalListener(hub.Events(), j, logger)
		go func() {
			defer close(listenerDone)
			l.StartListening(ctx, cfg.Database.SyncInterval)
		}()
	} else {
		close(listenerDone)
		logger.Warn("database.dsn vazio: journal de eventos desativado")
	}
	logger.Info("hub inicializado",
		zap.String("ledger_id", hub.ID().String()),
		zap.String("admin", accts.Admin.String()),
		zap.String("arbitrator", accts.Arbitrator.String()),
		zap.Bool("require_consumer_role", cfg.Market.RequireConsumerRole))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handlers.NewRouter(hub, arb, journal),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("servidor HTTP rodando", zap.String("addr", cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("encerrando servidor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	stop()
	<-listenerDone
	return nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("nível de log inválido %q: %w", cfg.Level, err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
