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

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/target-creator/backend/internal/api"
	"github.com/target-creator/backend/internal/config"
	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/geometry"
	"github.com/target-creator/backend/internal/notify"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/session"
	"github.com/target-creator/backend/internal/storage"
	"github.com/target-creator/backend/internal/upload"
	"github.com/target-creator/backend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor API server (default)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "override the configured listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	fileStore, err := storage.NewLocalStore(cfg.GetScenesDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	codecs := exchange.NewRegistry()
	codecs.Register(exchange.DuckDBCodec{TempDir: cfg.Storage.TempDirectory})

	hub := notify.NewHub()
	sessionMgr := session.NewManager(session.Options{
		MaxSessions: cfg.Editor.MaxSessions,
		GridSize:    cfg.Editor.GridSize,
		Endpoints:   geometry.NewEndpointCache(cfg.EndpointCacheTTL()),
		Notifiers: func(sessionID string) pathcreation.Notifier {
			return hub.Notifier(sessionID)
		},
		OnClose: hub.CloseSession,
	})
	importMgr := upload.NewManager(fileStore, sessionMgr, codecs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runCleanup(ctx, cfg, sessionMgr, importMgr)

	e := echo.New()
	e.HideBanner = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging:   cfg.Advanced.EnableRequestLogging,
		EnableCORS:       cfg.Server.EnableCORS,
		AllowOrigins:     cfg.Server.AllowOrigins,
		EnableGzip:       cfg.Editor.EnableCompression,
		CompressionLevel: cfg.Editor.CompressionLevel,
		BodyLimit:        cfg.Server.BodyLimit,
		ShowErrorDetails: cfg.Advanced.ShowErrorDetails,
	})

	handlers := api.NewHandlers(&api.Dependencies{
		Store:             fileStore,
		SessionMgr:        sessionMgr,
		ImportMgr:         importMgr,
		Hub:               hub,
		Codecs:            codecs,
		Version:           Version,
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
	})
	api.RegisterRoutes(e, handlers)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(path, cfg, embeddedMode)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	importMgr.Wait()
	return nil
}

// runCleanup evicts idle sessions and finished import jobs until ctx ends.
func runCleanup(ctx context.Context, cfg *config.AppConfig, sessions *session.Manager, jobs *upload.Manager) {
	ticker := time.NewTicker(cfg.CleanupInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.CleanupOldSessions(cfg.SessionTimeout()); n > 0 {
				fmt.Printf("[Cleanup] Removed %d idle sessions\n", n)
			}
			if n := jobs.CleanupOldJobs(cfg.JobRetention()); n > 0 {
				fmt.Printf("[Cleanup] Removed %d finished import jobs\n", n)
			}
		}
	}
}

func printBanner(configPath string, cfg *config.AppConfig, embeddedMode bool) {
	mode := "Development"
	if embeddedMode {
		mode = "Air-Gapped (Embedded)"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Target Creator Server                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Scenes:    %-46s║\n", cfg.GetScenesDir())
	fmt.Printf("║  Grid:      %-46d║\n", cfg.Editor.GridSize)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
