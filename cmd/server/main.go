package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/mama165/sdk-go/logs"

	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/moderation"
	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := server.NewConfigFromEnv()
	if err != nil {
		return 1, fmt.Errorf("config error: %w", err)
	}
	server.SetConfig(config)

	log := logs.GetLoggerFromString(config.LogLevel)
	slog.SetDefault(log)
	log.Info("Starting room chat server...")

	moderator, err := moderation.NewModerator(log, moderation.DefaultWords)
	if err != nil {
		return 1, fmt.Errorf("profanity filter: %w", err)
	}

	hub := server.NewHub(
		presence.NewDirectory(log),
		moderator,
		message.NewFactory(nil),
		log,
	)
	server.StartHub(hub)

	httpServer := server.CreateServer(config.Port, server.SetupRoutes(hub))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.StartServer(httpServer)
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.ShutdownServer(ctx, httpServer)
			},
			"hub": func(context.Context) error {
				return hub.Shutdown(config.ShutdownTimeout)
			},
		},
	)

	// A nil serve error means the shutdown operation closed the server; the
	// exit code still comes from wait.
	if err := <-serveErr; err != nil {
		_ = hub.Shutdown(config.ShutdownTimeout)
		return 1, fmt.Errorf("http server: %w", err)
	}

	code := <-wait
	log.Info("Server exited", "code", code)
	return code, nil
}
