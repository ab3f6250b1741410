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

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soapnote/soapnote/internal/config"
	"github.com/soapnote/soapnote/internal/domain/audio"
	"github.com/soapnote/soapnote/internal/domain/audit"
	"github.com/soapnote/soapnote/internal/domain/note"
	"github.com/soapnote/soapnote/internal/domain/patient"
	"github.com/soapnote/soapnote/internal/domain/provider"
	"github.com/soapnote/soapnote/internal/domain/suggest"
	"github.com/soapnote/soapnote/internal/platform/auth"
	"github.com/soapnote/soapnote/internal/platform/blobstore"
	"github.com/soapnote/soapnote/internal/platform/db"
	"github.com/soapnote/soapnote/internal/platform/middleware"
	"github.com/soapnote/soapnote/internal/platform/soapgen"
	"github.com/soapnote/soapnote/internal/platform/speech"
)

const serverVersion = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "soapnote-server",
		Short: "SOAP Note API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the SOAP note API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Platform clients
	store := blobstore.NewInMemoryBlobStore()
	transcriber := speech.NewClient(speech.Config{
		Key:      cfg.SpeechKey,
		Region:   cfg.SpeechRegion,
		Endpoint: cfg.SpeechEndpoint,
	})
	generator := soapgen.NewGenerator(soapgen.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})

	// Repositories and services
	providerSvc := provider.NewService(provider.NewRepo(pool))
	patientSvc := patient.NewService(patient.NewRepo(pool))
	audioSvc := audio.NewService(audio.NewRepo(pool), store)
	noteSvc := note.NewService(note.NewRepo(pool))
	auditRepo := audit.NewRepo(pool)
	suggestRepo := suggest.NewRepo(pool)

	pipeline := note.NewPipeline(noteSvc, providerSvc, patientSvc, audioSvc, transcriber, generator, auditRepo, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M", "100M"))
	e.Use(middleware.RequestTimeout(60 * time.Second))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     "soapnote",
			SigningKey: []byte(cfg.JWTSecret),
			Skipper:    auth.AuthSkipper,
		}))
	}

	// Audit middleware persists access records through the audit repository.
	e.Use(middleware.Audit(logger, audit.NewRecorder(auditRepo)))

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Login mints tokens for known providers. The path is public; everything
	// else requires a bearer token outside development.
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), "soapnote", time.Duration(cfg.JWTExpiryHrs)*time.Hour)
	e.POST("/auth/login", loginHandler(providerSvc, issuer))

	// Health checks
	e.GET("/health", db.HealthHandler(pool, serverVersion, func() map[string]string {
		speechStatus := "not_configured"
		if cfg.SpeechConfigured() {
			speechStatus = "configured"
		}
		llmStatus := "not_configured"
		if cfg.LLMConfigured() {
			llmStatus = "configured"
		}
		return map[string]string{
			"speech":         speechStatus,
			"soap_generator": llmStatus,
		}
	}))
	e.GET("/health/db", db.PoolHealthHandler(pool))

	// Domain routes
	provider.NewHandler(providerSvc).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	audio.NewHandler(audioSvc).RegisterRoutes(apiV1)
	note.NewHandler(noteSvc, providerSvc, pipeline).RegisterRoutes(apiV1)
	audit.NewHandler(auditRepo).RegisterRoutes(apiV1)
	suggest.NewHandler(suggestRepo).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Provider    *provider.Provider `json:"provider"`
}

// loginHandler authenticates a provider by email and returns a bearer token.
// Unknown or deactivated providers are rejected without distinguishing the
// two cases.
func loginHandler(providers *provider.Service, issuer *auth.TokenIssuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Email == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "email is required")
		}

		p, err := providers.GetProviderByEmail(c.Request().Context(), req.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
		if !p.IsActive {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}

		token, expiresAt, err := issuer.Issue(p.Email, []string{"provider"})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}

		return c.JSON(http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   expiresAt,
			Provider:    p,
		})
	}
}
