package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/jjenkins/revera/internal/auth"
	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/handlers"
	"github.com/jjenkins/revera/internal/obs"
)

const janitorInterval = time.Minute

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the showroom web server",
	Long:  `Start the web server for the Revéra buy and rent showroom.`,
	Run: func(cmd *cobra.Command, args []string) {
		// runServe returns only after its deferred closes have run
		if err := runServe(cmd); err != nil {
			log.Printf("Error: %v", err)
			os.Exit(1)
		}
	},
}

func runServe(cmd *cobra.Command) error {
	// Use PORT env var unless the flag was given
	if !cmd.Flags().Changed("port") {
		port = cfg.Port
	}

	ctx := context.Background()

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog backend %q: %w", cfg.CatalogBackend, err)
	}
	defer closeSource()

	var engine *catalog.Engine
	viewCache, redisClient, err := openViewCache(ctx, cfg)
	switch {
	case err != nil:
		obs.Logger.Warn("view_cache_disabled", "addr", cfg.RedisAddr, "error", err)
		engine = catalog.NewEngine(source, nil)
	case viewCache != nil:
		defer redisClient.Close()
		engine = catalog.NewEngine(source, viewCache)
	default:
		engine = catalog.NewEngine(source, nil)
	}

	// Auth flow
	policy := auth.Policy{
		AllowedDomains: auth.NewDomains(cfg.AllowedDomains...),
		MaxImageBytes:  cfg.MaxImageBytes,
	}
	client := auth.NewClient(cfg.AuthBackendURL, cfg.AuthTimeout)
	previews := auth.NewMemoryPreviews()
	sessions := auth.NewSessions(func() *auth.Flow {
		return auth.NewFlow(policy, client, previews)
	}, cfg.SessionIdleTimeout)
	sessions.SetLimit(cfg.MaxSessions)
	sessions.StartJanitor(janitorInterval)
	defer sessions.Stop()

	limiter := handlers.NewAuthLimiter(cfg.AuthRatePerMinute)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCleanup:
				return
			case <-ticker.C:
				if n := limiter.Cleanup(); n > 0 {
					obs.Logger.Debug("auth_limiter_cleanup", "removed", n)
				}
			}
		}
	}()

	authHandlers := handlers.NewAuthHandlers(sessions, previews, client, cfg.AllowedDomains, cfg.MaxImageBytes)

	app := fiber.New(fiber.Config{
		AppName:   "Revéra Showroom",
		BodyLimit: int(cfg.MaxImageBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Static("/static", "./static")

	handlers.Register(app, engine, authHandlers, limiter)

	// Shut down cleanly on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	obs.Logger.Info("server_starting", "port", port, "backend", cfg.CatalogBackend, "view_cache", viewCache != nil)
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
