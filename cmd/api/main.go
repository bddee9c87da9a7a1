package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/vdappdev2/vtimestamp/internal/config"
	"github.com/vdappdev2/vtimestamp/internal/handler"
	"github.com/vdappdev2/vtimestamp/internal/middleware"
	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/registry"
	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/service"
	"github.com/vdappdev2/vtimestamp/internal/signing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	rpcClient, err := rpc.NewClient(rpc.Config{
		PrimaryURL:  cfg.RPCPrimaryURL,
		FallbackURL: cfg.RPCFallbackURL,
		User:        cfg.RPCUser,
		Password:    cfg.RPCPassword,
		Timeout:     cfg.RPCTimeout,
	})
	if err != nil {
		slog.Error("invalid rpc configuration", "error", err)
		os.Exit(1)
	}

	signer := signing.NewSigner(rpcClient, cfg.SigningIdentity, cfg.ChainID)

	loginRegistry := registry.New[model.LoginPending, model.LoginResult](cfg.PendingTTL, cfg.CompletedTTL)
	defer loginRegistry.Stop()
	timestampRegistry := registry.New[model.TimestampPending, model.TimestampResult](cfg.PendingTTL, cfg.CompletedTTL)
	defer timestampRegistry.Stop()

	authService := service.NewAuthService(rpcClient, signer, loginRegistry, cfg.JWTSecret, cfg.JWTExpiry, slog.Default())
	authHandler := handler.NewAuthHandler(authService)

	timestampService := service.NewTimestampService(rpcClient, signer, timestampRegistry, cfg.CallbackBaseURL, slog.Default())
	timestampHandler := handler.NewTimestampHandler(timestampService)

	hashHandler := handler.NewHashHandler(service.NewHashService())

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()
		if _, err := rpcClient.BlockCount(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("chain unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/v1/hash", hashHandler.HandleHash)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		r.Get("/api/v1/verify", timestampHandler.HandleVerify)
	})

	r.Get("/api/v1/auth/status", authHandler.HandleStatus)
	r.Post("/api/v1/auth/callback", authHandler.HandleCallback)
	r.Get("/api/v1/auth/callback", authHandler.HandleCallback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Post("/api/v1/timestamp/create", timestampHandler.HandleCreate)
	})

	r.Get("/api/v1/timestamp/status", timestampHandler.HandleStatus)
	r.Post("/api/v1/timestamp/callback", timestampHandler.HandleCallback)
	r.Get("/api/v1/timestamp/callback", timestampHandler.HandleCallback)
	r.Get("/api/v1/timestamp/check", timestampHandler.HandleCheck)
	r.Get("/api/v1/timestamps", timestampHandler.HandleList)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "chain", cfg.ChainID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
