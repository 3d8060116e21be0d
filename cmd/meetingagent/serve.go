package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	meetingagent "github.com/voocel/meetingagent"
	"github.com/voocel/meetingagent/config"
	"github.com/voocel/meetingagent/server"
	"github.com/voocel/meetingagent/store"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host meeting agents over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Log)

			gen, err := buildGenerator(cfg.LLM)
			if err != nil {
				return err
			}

			snapshots, err := buildSnapshotStore(cfg.Snapshots)
			if err != nil {
				return err
			}
			defer snapshots.Close()

			if listen == "" {
				listen = cfg.Server.Listen
			}

			srv := server.New(server.Config{
				Generator:        gen,
				Registry:         meetingagent.NewRegistry(),
				Snapshots:        snapshots,
				AnalysisInterval: time.Duration(cfg.Agent.AnalysisIntervalSeconds) * time.Second,
				Logger:           logger,
			})

			httpServer := &http.Server{
				Addr:        listen,
				Handler:     srv.Handler(),
				ReadTimeout: 10 * time.Second,
			}
			logger.Info().Str("listen", listen).Msg("meeting agent server listening")
			return httpServer.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func buildSnapshotStore(cfg config.SnapshotConfig) (store.SnapshotStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "./snapshots"
		}
		return store.NewFileStore(dir)
	case "redis":
		redisCfg := store.DefaultRedisConfig()
		if cfg.RedisAddr != "" {
			redisCfg.Addr = cfg.RedisAddr
		}
		redisCfg.DB = cfg.RedisDB
		return store.NewRedisStore(redisCfg)
	default:
		return nil, fmt.Errorf("unknown snapshot backend: %s", cfg.Backend)
	}
}
