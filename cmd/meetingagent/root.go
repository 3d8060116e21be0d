package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/voocel/meetingagent/config"
	"github.com/voocel/meetingagent/llm"
)

var cfgPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "meetingagent",
		Short:         "Real-time AI meeting assistant",
		Long:          "Tracks a meeting agenda against the live transcript, surfaces suggestions, and writes the closing summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (TOML)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newCostCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

func buildLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.JSON {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func buildGenerator(cfg config.LLMConfig) (llm.Generator, error) {
	return llm.NewLiteLLMGenerator(llm.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}
