// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, database, services and routes into a
// running HTTP server.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/taskmanager/internal/config"
	"codeberg.org/oliverandrich/taskmanager/internal/database"
	"codeberg.org/oliverandrich/taskmanager/internal/handlers"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/services/account"
	"codeberg.org/oliverandrich/taskmanager/internal/services/email"
	"codeberg.org/oliverandrich/taskmanager/internal/services/google"
	"codeberg.org/oliverandrich/taskmanager/internal/services/task"
	"codeberg.org/oliverandrich/taskmanager/internal/services/token"
	"codeberg.org/oliverandrich/taskmanager/internal/templates"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	e, err := NewEcho(cfg, db)
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(e, cfg)
}

// NewEcho builds the fully wired Echo instance. Exported so tests can run
// the complete application against an in-memory database.
func NewEcho(cfg *config.Config, db *sqlx.DB) (*echo.Echo, error) {
	repo := repository.New(db)

	tokens, err := token.NewService(cfg.Auth.SigningSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	var mailer account.Mailer
	if cfg.SMTP.Host != "" {
		mailSvc, mailErr := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if mailErr != nil {
			return nil, fmt.Errorf("failed to set up mail: %w", mailErr)
		}
		mailer = mailSvc
	} else {
		slog.Warn("smtp not configured, outgoing mail disabled")
	}

	accounts := account.NewService(repo, tokens, mailer)
	tasks := task.NewService(repo)
	googleSvc := google.NewService(&cfg.Google)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	setupMiddleware(e, cfg, tokens, repo)
	setupRoutes(e, cfg, accounts, tasks, tokens, googleSvc)

	return e, nil
}

func setupRoutes(e *echo.Echo, cfg *config.Config, accounts *account.Service, tasks *task.Service, tokens *token.Service, googleSvc *google.Service) {
	h := handlers.New(cfg, accounts, tasks, tokens, googleSvc)

	e.GET("/health", h.Health)
	e.GET("/", h.Index)
	e.GET("/dashboard", h.Dashboard, h.RequireAuth)

	users := e.Group("/users")
	users.GET("/register", h.RegisterPage)
	users.POST("/register", h.Register)
	users.GET("/verify-email", h.VerifyEmail)
	users.GET("/resend-verification", h.ResendVerificationPage)
	users.POST("/resend-verification", h.ResendVerification)
	users.GET("/login", h.LoginPage)
	users.POST("/login", h.Login)
	users.GET("/logout", h.Logout)
	users.POST("/logout", h.Logout)
	users.GET("/forgot-password", h.ForgotPasswordPage)
	users.POST("/forgot-password", h.ForgotPassword)
	users.GET("/reset-password", h.ResetPasswordPage)
	users.POST("/reset-password", h.ResetPassword)

	tasksGroup := e.Group("/tasks", h.RequireAuth)
	tasksGroup.POST("/add", h.AddTask)
	tasksGroup.GET("/edit/:id", h.EditTaskPage)
	tasksGroup.POST("/edit/:id", h.EditTask)
	tasksGroup.POST("/complete/:id", h.CompleteTask)
	tasksGroup.POST("/delete/:id", h.DeleteTask)

	oauth := e.Group("/auth/google")
	oauth.GET("/login", h.GoogleLogin)
	oauth.GET("/callback", h.GoogleCallback)
}

// errorHandler renders unhandled errors as HTML pages.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}

	message := "Something went wrong. Please try again."
	if code == http.StatusNotFound {
		message = "The page you are looking for does not exist."
	}

	var buf bytes.Buffer
	renderErr := templates.Render(&buf, "error.html", map[string]any{
		"Status":  fmt.Sprintf("%d %s", code, http.StatusText(code)),
		"Message": message,
	})
	if renderErr != nil {
		_ = c.NoContent(code)
		return
	}
	_ = c.HTMLBlob(code, buf.Bytes())
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
