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

	"elca-web/internal/config"
	"elca-web/internal/database"
	"elca-web/internal/handlers"
	"elca-web/internal/logging"
	"elca-web/internal/models"
	"elca-web/internal/server"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "elca-web",
		Short:         "eLCA web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database and seed reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			database.Init(cfg)
			logging.Log.Info("database is up to date")
			return nil
		},
	})

	cmd.AddCommand(useraddCmd())
	return cmd
}

func useraddCmd() *cobra.Command {
	var (
		email    string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "useradd <auth-name>",
		Short: "Create a confirmed user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg := setup()
			database.Init(cfg)

			role := models.RoleUser
			if admin {
				role = models.RoleAdmin
			}
			user, err := database.CreateUser(database.DB, args[0], email, password, role)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			database.CreateAuditLog(user.ID, "user", user.ID, "create", "Created from command line as "+string(role))
			fmt.Printf("created %s user %s (id %d)\n", role, user.AuthName, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	return cmd
}

func setup() *config.Config {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg
}

func serve() error {
	cfg := setup()
	database.Init(cfg)

	env, cleanup, err := server.NewEnv(cfg)
	defer cleanup()
	if err != nil {
		return err
	}
	handlers.Init(env)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           server.NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Log.Infof("starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
