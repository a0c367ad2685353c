// Package server wires configuration, storage, services and transports into
// the running Mori backend and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mori-tea/mori/internal/cryptox"
	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/otp"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/config"
	"github.com/mori-tea/mori/internal/server/mail"
	"github.com/mori-tea/mori/internal/server/notify"
	"github.com/mori-tea/mori/internal/server/repositories/repomanager"
	"github.com/mori-tea/mori/internal/server/services"

	gs "github.com/mori-tea/mori/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	grpcServer  *gs.GRPCServer
	httpServer  *http.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	key, err := cryptox.ParseKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	cipher, err := cryptox.NewTokenCipher(key)
	if err != nil {
		return nil, fmt.Errorf("token cipher: %w", err)
	}
	codes, err := otp.NewEngine(cipher, otp.Options{Period: c.OTPPeriod, Digits: c.OTPDigits, Skew: c.OTPSkew})
	if err != nil {
		return nil, fmt.Errorf("otp engine: %w", err)
	}
	issuer, err := auth.NewIssuer([]byte(c.JWTSecret), c.JWTAlgorithm,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()

	hub := notify.NewHub(logger)
	logger.Warn(context.Background(), "mail is written to the log, not delivered")

	us, err := services.NewUserService(db, rm, c, cipher, codes, issuer, mail.NewLogSender(logger), logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("user service: %w", err)
	}

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, issuer, gs.Services{
		Users:         us,
		Status:        services.NewStatusService(db, rm, hub, logger),
		Notifications: services.NewNotificationService(db, rm),
		Receipts:      services.NewReceiptService(db, rm, c),
	})

	httpServer := &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           notify.NewMux(hub, issuer, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		userService: us,
		grpcServer:  grpcServer,
		httpServer:  httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting live feed server", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run migrates the schema and serves until ctx is cancelled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "Stopped")
	return nil
}
