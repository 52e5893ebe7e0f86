// Command booking runs the Booking Now API and its maintenance tasks.
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

	"github.com/deppfellow/booking-now/internal/config"
	"github.com/deppfellow/booking-now/internal/database"
	"github.com/deppfellow/booking-now/internal/handler"
	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/deppfellow/booking-now/internal/logger"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/router"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second
	migrateTimeout  = 2 * time.Minute
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "booking",
		Short:         "Multi-tenant appointment booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd(), emailPreviewCmd())
	return cmd
}

// app is what every sub-command starts from: config plus the loggers.
type app struct {
	cfg           *config.Config
	log           zerolog.Logger
	loggerService *logger.LoggerService
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{cfg: cfg, log: log, loggerService: loggerService}, nil
}

// newServer connects the database and Redis and wires the service layer.
func (a *app) newServer() (*server.Server, *service.Services, error) {
	srv, err := server.New(a.cfg, &a.log, a.loggerService)
	if err != nil {
		return nil, nil, err
	}

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	if err != nil {
		srv.Close()
		return nil, nil, err
	}

	return srv, services, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, then serve the API with background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
	err := database.Migrate(migrateCtx, &a.log, a.cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	srv, services, err := a.newServer()
	if err != nil {
		return err
	}

	err = srv.Scheduler.Register(a.cfg.Booking.ReminderSchedule, "booking_reminders", func(ctx context.Context) error {
		_, err := services.Notification.SendDueReminders(ctx)
		return err
	})
	if err != nil {
		srv.Close()
		return err
	}

	if err := srv.StartWorkers(); err != nil {
		srv.Close()
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.log.Info().Msg("server exited properly")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			return database.Migrate(ctx, &a.log, a.cfg)
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Ensure the super-admin account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(services *service.Services) error {
				return services.Seed.MainSeed(cmd.Context())
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "availability",
		Short: "Replace all availability with the default weekly schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(services *service.Services) error {
				result, err := services.Seed.SeedServiceAvailability(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded availability for %d services (%d windows)\n",
					result.Services, result.Windows)
				return nil
			})
		},
	})

	return cmd
}

// withServices runs fn against a fully wired service layer and releases the
// connections afterwards.
func withServices(fn func(services *service.Services) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.loggerService.Shutdown()

	srv, services, err := a.newServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	return fn(services)
}

func emailPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "email-preview <template>",
		Short:     "Render an email template with sample data to stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: templateNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			client, err := email.NewClient(a.cfg, &a.log)
			if err != nil {
				return err
			}

			html, err := client.Preview(email.Template(args[0]))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
}

func templateNames() []string {
	names := make([]string, len(email.Templates))
	for i, t := range email.Templates {
		names[i] = string(t)
	}
	return names
}
