package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ayusman/flashgesture/internal/config"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "flashgesture",
	Short:         "Flashcards rated with thumb gestures",
	Long:          "Flashgesture serves a spaced-repetition flashcard app whose cards can be rated by holding a thumbs up, sideways or down gesture.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opt := logger.FromEnv()
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			opt.Level = lvl
		}
		logger.Init(opt)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides FLASHGESTURE_DB, default in-memory)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDSN returns the database DSN: --db flag, then FLASHGESTURE_DB, then in-memory.
func resolveDSN(cmd *cobra.Command, cfg config.Config) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	return cfg.Store.DSN
}

func openStore(ctx context.Context, cmd *cobra.Command, cfg config.Config) (*store.Store, error) {
	dsn := resolveDSN(cmd, cfg)
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	logger.Named("cli").Debug().Str("dsn", dsn).Msg("store opened")
	return st, nil
}
