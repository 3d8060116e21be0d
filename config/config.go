// Package config loads application settings from an optional TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Agent      AgentConfig      `toml:"agent"`
	Server     ServerConfig     `toml:"server"`
	Snapshots  SnapshotConfig   `toml:"snapshots"`
	Transcribe TranscribeConfig `toml:"transcribe"`
	Log        LogConfig        `toml:"log"`
}

// LLMConfig selects and authenticates the generation backend.
type LLMConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// AgentConfig tunes the meeting agent.
type AgentConfig struct {
	AnalysisIntervalSeconds int `toml:"analysis_interval_seconds"`
}

// ServerConfig configures the HTTP/WebSocket host.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// SnapshotConfig selects the snapshot backend.
type SnapshotConfig struct {
	Backend   string `toml:"backend"` // memory, file, or redis
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// TranscribeConfig configures the speech-to-text collaborator.
type TranscribeConfig struct {
	APIKey      string `toml:"api_key"`
	PricingTier string `toml:"pricing_tier"`
	HistoryFile string `toml:"history_file"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Load reads the config file (if present) and applies defaults and
// environment overrides. path may be empty to use the default location.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Agent:  AgentConfig{AnalysisIntervalSeconds: 45},
		Server: ServerConfig{Listen: "localhost:8780"},
		Snapshots: SnapshotConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Transcribe: TranscribeConfig{
			PricingTier: "pro",
			HistoryFile: defaultHistoryFile(),
		},
		Log: LogConfig{Level: "info"},
	}

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv keeps compatibility with the environment variables the agent has
// always honored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MEETING_AGENT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("MEETING_AGENT_ANALYSIS_INTERVAL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.Agent.AnalysisIntervalSeconds = seconds
		}
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" && cfg.Transcribe.APIKey == "" {
		cfg.Transcribe.APIKey = v
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "meetingagent", "config.toml")
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".meetingagent", "elevenlabs_costs.json")
}
