package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/loader"
	"ganeti-netbox-sync/core/logger"
	"ganeti-netbox-sync/core/metrics"
	"ganeti-netbox-sync/core/middleware/auth"
	"ganeti-netbox-sync/core/middleware/rayid"
	"ganeti-netbox-sync/feature/syncer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync API server",
	Long: `Starts the HTTP server exposing sync runs per profile, health and
Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, l, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.New()
	svc := syncer.NewService(cfg, l, syncer.WithMetrics(recorder), syncer.WithBaseContext(ctx))

	app, err := newServer(cfg, l, recorder, svc)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("Starting server", zap.String("address", cfg.Server.Address()), zap.Int("profiles", len(cfg.Profiles)))
		errCh <- app.Listen(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	l.Info("Shutting down server...")
	return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout())
}

// newServer builds the fiber app with middlewares and feature routes.
func newServer(cfg *config.Config, l *zap.Logger, recorder *metrics.Recorder, svc *syncer.Service) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every log line below carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		rl := logger.WithRayID(l, c)
		rl.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			rl.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))

	if !cfg.Server.AuthEnabled() {
		l.Warn("No API key configured, sync endpoints are unauthenticated")
	}
	app.Use(auth.New(auth.Config{
		ApiKey: cfg.Server.ApiKey,
		Public: []string{"/health", "/metrics"},
	}))

	mgr := loader.NewManager(l)
	mgr.Register(syncer.NewFeature(svc))
	if err := mgr.LoadAll(app); err != nil {
		return nil, err
	}

	return app, nil
}
