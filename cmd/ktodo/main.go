// Package main is the entry point for the ktodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ktodo/internal/auth"
	"ktodo/internal/backend/todoapi"
	"ktodo/internal/cli"
	"ktodo/internal/commands"
	"ktodo/internal/config"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Cancel on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	sessions := func(cfg *config.Config) (*session.Controller, error) {
		identity := auth.NewIdentityClient(cfg)
		store := auth.NewFileStore(cfg.CredentialsPath())
		return session.New(identity, store), nil
	}

	services := func(ctx context.Context, cfg *config.Config, sess *session.Controller) (service.Service, error) {
		identity := auth.NewIdentityClient(cfg)
		store := auth.NewFileStore(cfg.CredentialsPath())
		manager := auth.NewManager(identity, store)
		transport := auth.NewTransport(manager, nil, sess.HandleAuthExpired)
		return todoapi.New(cfg, transport.Client()), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, sessions, services)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
