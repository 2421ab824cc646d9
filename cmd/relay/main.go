package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fpt/klein-relay/internal/gateway"
	"github.com/fpt/klein-relay/internal/history"
	"github.com/fpt/klein-relay/internal/infra"
	"github.com/fpt/klein-relay/pkg/client"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// version is set at build time via ldflags.
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	envFile    string
	console    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay Discord channel messages to a language model",
		Long: `relay answers messages in allow-listed Discord channels with a language model,
keeping a short rolling history per channel and posting a message of its own
when a channel stays quiet for too long.

Examples:
  relay
  relay --console
  relay --config ./relay.yaml --log-level debug
  relay history list`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelay(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file, YAML or JSON (default: $HOME/.klein/relay/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default: ./.env if present)")
	rootCmd.Flags().BoolVar(&opts.console, "console", false, "Also serve a local console channel on stdin/stdout")

	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

// loadConfig reads .env, the config file and the environment. An explicit
// --config or --env-file must exist; the defaults may be absent.
func loadConfig(opts *rootOptions) (*gateway.Config, error) {
	if err := gateway.LoadDotEnv(opts.envFile, opts.envFile != ""); err != nil {
		return nil, err
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = gateway.DefaultConfigPath()
	}
	cfg, err := gateway.LoadConfig(cfgPath, opts.configPath != "")
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func runRelay(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.console {
		cfg.Console.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Keep stdout for the console channel when it is in use
	var out io.Writer = os.Stdout
	if cfg.Console.Enabled {
		out = os.Stderr
	}
	level := pkgLogger.LogLevel(opts.logLevel)
	pkgLogger.SetGlobalLoggerWithConsoleWriter(level, out)
	logger := pkgLogger.NewLoggerWithConsoleWriter(level, out)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	llm, err := client.NewLLMClient(ctx, cfg.Settings)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	store := history.NewStore(infra.NewHistoryFileRepository(cfg.HistoryFile), cfg.HistoryLimit, logger.WithComponent("history"))

	gw, err := gateway.NewGateway(cfg, llm, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer func() {
		if err := gw.Close(); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.InfoWithIntention(pkgLogger.IntentionStatus, "Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(out, "klein-relay starting...")
	fmt.Fprintf(out, "  Model: %s\n", llm.ModelID())
	fmt.Fprintf(out, "  History: %s (last %d turns per channel)\n", cfg.HistoryFile, store.Limit())
	fmt.Fprintf(out, "  Inactivity: %s\n", cfg.Window())
	if cfg.DiscordEnabled() {
		fmt.Fprintf(out, "  Discord: %d channel(s)\n", len(cfg.Discord.AllowedChannelIDs))
	}
	if cfg.Console.Enabled {
		fmt.Fprintf(out, "  Console: channel %q\n", cfg.Console.ChannelID)
	}
	fmt.Fprintln(out)

	if err := gw.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("gateway error: %w", err)
	}
	return nil
}
