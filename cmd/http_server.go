package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/auth"
	authpg "github.com/kdiomande/courrier-registry/internal/auth/postgres"
	"github.com/kdiomande/courrier-registry/internal/courrier"
	courrierpg "github.com/kdiomande/courrier-registry/internal/courrier/postgres"
	"github.com/kdiomande/courrier-registry/internal/directory"
	directorypg "github.com/kdiomande/courrier-registry/internal/directory/postgres"
	"github.com/kdiomande/courrier-registry/internal/instruction"
	instructionpg "github.com/kdiomande/courrier-registry/internal/instruction/postgres"
	"github.com/kdiomande/courrier-registry/internal/organization"
	organizationpg "github.com/kdiomande/courrier-registry/internal/organization/postgres"
	"github.com/kdiomande/courrier-registry/internal/signaling"
	"github.com/kdiomande/courrier-registry/internal/transport/rest"
	"github.com/kdiomande/courrier-registry/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API and signaling requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger

	orgRepo := organizationpg.NewOrganizationRepository(deps.Gorm)
	orgService := organization.NewHierarchyService(orgRepo, lg)

	dirRepo := directorypg.NewDirectoryRepository(deps.Gorm)
	dirService := directory.NewService(dirRepo, lg)

	instrRepo := instructionpg.NewInstructionRepository(deps.Gorm)
	instrService := instruction.NewService(instrRepo, lg)

	courrierRepo := courrierpg.NewCourrierRepository(deps.Gorm)
	courrierService := courrier.NewService(courrierRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewAccountRepository(deps.Gorm), tokenGen, lg)

	hub := signaling.NewHub(lg)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		Organization: organization.NewHandler(orgService),
		Directory:    directory.NewHandler(dirService),
		Instruction:  instruction.NewHandler(instrService),
		Courrier:     courrier.NewHandler(courrierService),
		Signaling:    signaling.NewHandler(hub),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the pgx connection once and hands the same pool to GORM, so
// pool limits apply to everything.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return dbConn, gormDB, nil
}
