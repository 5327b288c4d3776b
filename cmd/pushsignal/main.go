package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abdulachik/pushsignal/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pushsignal",
	Short: "Send push notifications through OneSignal",
	Long: `PushSignal builds multi-language OneSignal notifications, posts them to
the OneSignal REST API and keeps a local log of every delivery attempt.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel))
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
