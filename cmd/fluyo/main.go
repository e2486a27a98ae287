package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fluyo: %v\n", err)
		os.Exit(1)
	}
}

// run reads config (defaults, .env, environment, flags; later wins) and serves until ctx is done
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) error {
	c := NewConfig()

	if err := c.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("can't read .env file: %w", err)
	}
	if err := c.LoadEnv(getenv); err != nil {
		return fmt.Errorf("can't read environment: %w", err)
	}
	if err := c.ParseFlags(args); err != nil {
		return fmt.Errorf("can't parse flags: %w", err)
	}

	srv, err := NewServerApp(ctx, c)
	if err != nil {
		return fmt.Errorf("can't initialize app, sorry: %w", err)
	}

	return srv.Run(ctx)
}
