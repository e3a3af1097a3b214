package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aifahao/streamticket/internal/app"
	"github.com/aifahao/streamticket/internal/config"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const usage = `streamticket: streaming subscription storefront

Usage:
  streamticket [serve]      [--config path]
  streamticket migrate      [--config path]
  streamticket seed         [--config path]
  streamticket create-admin --username name --password secret [--email addr] [--config path]
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.WithError(err).Error("streamticket failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "--config") {
		args = append([]string{"serve"}, args...)
	}
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}
	command, rest := args[0], args[1:]

	var cfg config.AppConfig
	flagSet := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flagSet.StringVar(&cfg.ConfigPath, "config", "", "path to config.yaml (env "+config.ConfigPathEnv+")")

	switch command {
	case "serve":
		if err := flagSet.Parse(rest); err != nil {
			return err
		}
		return app.RunServer(ctx, cfg)
	case "migrate":
		if err := flagSet.Parse(rest); err != nil {
			return err
		}
		if err := app.Migrate(ctx, cfg); err != nil {
			return err
		}
		log.Info("migration complete")
		return nil
	case "seed":
		if err := flagSet.Parse(rest); err != nil {
			return err
		}
		if err := app.Seed(ctx, cfg); err != nil {
			return err
		}
		log.Info("seed complete")
		return nil
	case "create-admin":
		var params app.CreateAdminParams
		flagSet.StringVar(&params.Username, "username", "", "administrator username")
		flagSet.StringVar(&params.Password, "password", "", "administrator password")
		flagSet.StringVar(&params.Email, "email", "", "administrator email")
		if err := flagSet.Parse(rest); err != nil {
			return err
		}
		if params.Username == "" || params.Password == "" {
			return errors.New("create-admin: --username and --password are required")
		}
		if err := app.CreateAdmin(ctx, cfg, params); err != nil {
			return err
		}
		log.WithField("username", params.Username).Info("administrator ready")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
