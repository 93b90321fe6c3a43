package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gameday/aggregation-api/cmd/rest-api/controllers"
	"github.com/gameday/aggregation-api/cmd/rest-api/routing"
	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	ioc "github.com/gameday/aggregation-api/pkg/infra/ioc"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: controllers.LogLevel}))
	slog.SetDefault(logger)

	builder := ioc.NewContainerBuilder()
	c := builder.WithEnvFile().With(ioc.InjectMongoDB).WithInboundPorts().Build()

	var store out.Store
	if err := c.Resolve(&store); err != nil {
		slog.ErrorContext(ctx, "failed to resolve out.Store", "error", err)
		panic(err)
	}

	var config common.Config
	if err := c.Resolve(&config); err != nil {
		slog.ErrorContext(ctx, "failed to resolve config", "error", err)
		panic(err)
	}

	if err := ioc.BootstrapIndexes(ctx, store, config.MongoDB.SinkCollection); err != nil {
		slog.ErrorContext(ctx, "index bootstrap failed", "error", err)
	}

	router := routing.NewRouter(ctx, c)

	port := config.ExpressPort
	if port == "" {
		port = "8080"
	}

	slog.InfoContext(ctx, "starting server", "port", port, "service", config.ServiceName)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-shutdownChan
		slog.InfoContext(ctx, "received shutdown signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "server shutdown error", "error", err)
		}

		var client *mongo.Client
		if err := c.Resolve(&client); err == nil && client != nil {
			if err := client.Disconnect(shutdownCtx); err != nil {
				slog.ErrorContext(ctx, "mongo disconnect error", "error", err)
			}
		}

		cancel()
		slog.InfoContext(ctx, "server shutdown complete")
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.ErrorContext(ctx, "server error", "err", err)
		os.Exit(1)
	}
}
