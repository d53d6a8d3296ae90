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

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/api/handler"
	"github.com/szytools/discount-label-service/internal/config"
	"github.com/szytools/discount-label-service/internal/db"
	"github.com/szytools/discount-label-service/internal/db/repository"
	"github.com/szytools/discount-label-service/internal/lookup"
	"github.com/szytools/discount-label-service/internal/models"
	"github.com/szytools/discount-label-service/internal/printer"
	"github.com/szytools/discount-label-service/internal/router"
	"github.com/szytools/discount-label-service/internal/service"
	"github.com/szytools/discount-label-service/internal/store"
	"github.com/szytools/discount-label-service/internal/websockets"
)

// labelStore keeps and lists printed labels.
type labelStore interface {
	service.LabelHistory
	handler.LabelLister
}

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for this username and exit")
	role := flag.String("role", "operator", "role carried by an issued token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	auth := service.NewAuthService(service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	})

	if *issueToken != "" {
		token, err := auth.GenerateToken(*issueToken, *role)
		if err != nil {
			logger.Fatal("failed to issue token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, auth, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server exited properly")
}

func run(ctx context.Context, cfg *config.Config, auth *service.AuthService, logger *zap.Logger) error {
	kv, labels, health, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	prefs := store.NewPrefs(kv, logger.Named("prefs"))

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websockets.NewHub(logger.Named("ws"))

	var driver printer.Driver
	if cfg.Printer.Driver == config.PrinterESCPOS {
		esc := newESCPOSDriver(cfg.Printer, logger.Named("escpos"))
		defer esc.Close()
		driver = esc
	} else {
		logger.Warn("printer driver disabled, labels will not be printed")
	}
	manager := printer.NewManager(driver, printer.NewConnectionState(), prefs, logger.Named("printer"))
	manager.SetListener(hub)

	if last := manager.LastKnownInfo(ctx); last.Connected() {
		logger.Info("last used printer", zap.String("address", last.Address), zap.String("name", last.Name))
	}

	client := lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.Timeout, logger.Named("lookup"))
	session := service.NewSession(client, hub, logger.Named("session"))
	prints := service.NewPrintService(session, manager, client, labels,
		service.NewDeviceIDService(prefs), hub, cfg.Printer.Settings, logger.Named("print"))

	hub.SetWelcome(func() websockets.Message {
		msg, err := websockets.NewMessage(websockets.TypeSync, struct {
			Session service.SessionSnapshot `json:"session"`
			Printer models.ConnectionInfo   `json:"printer"`
		}{
			Session: session.Snapshot(),
			Printer: manager.CurrentInfo(),
		})
		if err != nil {
			logger.Error("failed to build sync message", zap.Error(err))
		}
		return msg
	})
	go hub.Run(hubCtx)

	r := router.New(router.Handlers{
		Session:   handler.NewSessionHandler(session, prints),
		Printers:  handler.NewPrinterHandler(manager, prefs, prints),
		Labels:    handler.NewLabelHandler(labels),
		Products:  handler.NewProductHandler(client),
		WebSocket: handler.NewWebSocketHandler(hub),
	}, auth, health, logger.Named("http"))

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address), zap.String("mode", cfg.Server.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := manager.Close(shutdownCtx); err != nil {
		logger.Warn("failed to disconnect printer", zap.Error(err))
	}
	return nil
}

// openStorage picks the preference store and print history for the
// configured storage driver.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.KV, labelStore, router.HealthChecker, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		database, err := db.NewPostgres(ctx, cfg.Database, logger.Named("db"))
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(cfg.Database, cfg.Storage.Migrations); err != nil {
			database.Close()
			return nil, nil, nil, noop, fmt.Errorf("failed to run database migrations: %w", err)
		}
		repos := repository.NewRepositories(database)
		return repos.KV, repos.Labels, database, func() { database.Close() }, nil

	case config.StorageFile:
		fs, err := store.NewFileStore(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, nil, noop, err
		}
		logger.Info("using file store", zap.String("path", fs.Path()))
		return fs, store.NewMemoryHistory(0), nil, noop, nil

	default:
		logger.Warn("preferences are kept in memory and lost on restart")
		return store.NewMemoryStore(), store.NewMemoryHistory(0), nil, noop, nil
	}
}

func newESCPOSDriver(cfg config.Printer, logger *zap.Logger) *printer.ESCPOSDriver {
	escCfg := printer.ESCPOSConfig{
		Paired:    cfg.Paired,
		RFCOMM:    cfg.RFCOMM,
		IOTimeout: cfg.IOTimeout,
	}
	if cfg.Discovery.Enabled {
		escCfg.Discoverer = &printer.Discoverer{
			Subnet:       cfg.Discovery.Subnet,
			Port:         cfg.Discovery.Port,
			Workers:      cfg.Discovery.Workers,
			ProbeTimeout: cfg.Discovery.ProbeTimeout,
			Logger:       logger,
		}
	}
	return printer.NewESCPOSDriver(escCfg, logger)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Server.Mode == "development" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
