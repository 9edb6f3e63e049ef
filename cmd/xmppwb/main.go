// Copyright 2024-2026 Aiku AI

// Command xmppwb bridges XMPP (direct chats and multi-user rooms) with
// webhook-based services, making it possible to connect XMPP to chat
// services with a webhook API such as Rocket.Chat, Mattermost or Slack.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"

	"github.com/aiku/xmppwb/pkg/daemon"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "xmppwb",
	Short:        "Bridge XMPP chats and rooms with webhooks",
	Version:      "0.5.0",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "xmppwb.yml", "config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "increase output verbosity")
}

func run(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger().Level(level)
	exzerolog.SetupDefaults(&log)

	log.Info().Str("path", configPath).Msg("Using config file")
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return err
	}

	d, err := daemon.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize bridge")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Bridge exited with error")
		return err
	}
	log.Info().Msg("xmppwb exited")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
