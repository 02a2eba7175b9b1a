// Command leanbrew filters the X home timeline in a Chrome tab it drives.
//
// Usage:
//
//	leanbrew run -c leanbrew.yaml               # launch Chrome and filter the feed
//	leanbrew toggles list                       # show the five filter toggles
//	leanbrew toggles set oneLinerFilterEnabled on
//	leanbrew scan-file home.html --out clean.html --digest kept.md
//	leanbrew mcp                                # serve the toggle tools over stdio
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/leanbrew/feedfilter"
)

// Global flags
var (
	configPath string
	logLevel   string
	storePath  string
)

var rootCmd = &cobra.Command{
	Use:   "leanbrew",
	Short: "Remove one-liners and stale posts from the X home timeline as it renders",
	Long: `leanbrew drives a Chrome tab showing the X home timeline and removes
posts matching the enabled filters: one-liners, posts older than a day,
and the ad, AI-reply and term hooks. Each post is decided once.

Toggles live in a SQLite file and are read when the feed is opened.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to leanbrew.yaml (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "toggle store path (overrides store.path)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(togglesCmd)
	rootCmd.AddCommand(scanFileCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "leanbrew: "+err.Error())
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(logLevel)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func loadConfig() (*feedfilter.Config, error) {
	cfg := feedfilter.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = feedfilter.LoadConfigFile(configPath); err != nil {
			return nil, err
		}
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	return cfg, nil
}
