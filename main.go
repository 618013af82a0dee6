package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"goldpawn/api"
	"goldpawn/api/token"
)

func main() {
	args := ParseArgs()
	setupLogger(args.LogLevel)
	if missing := args.Validate(); len(missing) > 0 {
		slog.Error("Missing arguments", slog.String("names", strings.Join(missing, ", ")))
		os.Exit(2)
	}

	key, err := token.LoadPrivateKey(args.PrivateKeyFile)
	if err != nil {
		panic(err)
	}
	args.ServerConfig.Auth.PrivateKey = key
	if args.ServerConfig.ID == "" {
		args.ServerConfig.ID, _ = os.Hostname()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := api.NewServer(ctx, args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer server.Close()
	if err := server.Start(ctx); err != nil {
		panic(err)
	}

	router := gin.Default()
	server.RegisterHandlers(router)
	httpServer := &http.Server{
		Addr:    args.ServerURL,
		Handler: router,
	}
	httpServer.RegisterOnShutdown(server.CloseEvents)

	go func() {
		slog.Info("Listening", slog.String("addr", args.ServerURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Fail to shut down HTTP server gracefully", slog.Any("error", err))
	}
}

func setupLogger(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
