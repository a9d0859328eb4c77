package main

import (
	"context"
	"os"
	"os/signal"

	"cirrus/internal/cli"
	"cirrus/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Logs go to stderr so progress output on stdout stays readable
	logger := config.NewLogger(os.Stderr, "prod")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, cli.EnvFromOS(logger), os.Args[1:])
	stop()
	os.Exit(code)
}
