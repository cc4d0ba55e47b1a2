package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Mode string `yaml:"mode"` // cautious | aggressive

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	AI struct {
		Provider     string `yaml:"provider"` // openai | ollama | none
		OpenAIAPIKey string `yaml:"openaiApiKey"`
		OpenAIModel  string `yaml:"openaiModel"`
		OllamaHost   string `yaml:"ollamaHost"`
		OllamaModel  string `yaml:"ollamaModel"`
	} `yaml:"ai"`

	// Job cadences in minutes.
	Scheduler struct {
		ShadowRulesInterval   int `yaml:"shadowRulesInterval"`
		HypothesisInterval    int `yaml:"hypothesisInterval"`
		ThreatFeedInterval    int `yaml:"threatFeedInterval"`
		BountyRefreshInterval int `yaml:"bountyRefreshInterval"`
		ScanQueueInterval     int `yaml:"scanQueueInterval"`
		WorkerSweepInterval   int `yaml:"workerSweepInterval"`
	} `yaml:"scheduler"`

	Workers struct {
		OfflineAfterMinutes int `yaml:"offlineAfterMinutes"`
	} `yaml:"workers"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8000
	cfg.Mode = "cautious"
	cfg.Database.Path = "data/sentinel.db"
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIModel = "gpt-4o-mini"
	cfg.AI.OllamaHost = "http://localhost:11434"
	cfg.AI.OllamaModel = "llama3.1:8b"
	cfg.Scheduler.ShadowRulesInterval = 10
	cfg.Scheduler.HypothesisInterval = 15
	cfg.Scheduler.ThreatFeedInterval = 30
	cfg.Scheduler.BountyRefreshInterval = 20
	cfg.Scheduler.ScanQueueInterval = 10
	cfg.Scheduler.WorkerSweepInterval = 5
	cfg.Workers.OfflineAfterMinutes = 5
	return &cfg
}

// Load baca file config.yaml; file yang tidak ada bukan error, defaults saja.
// Environment variables menimpa nilai file untuk secrets dan knob utama.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SENTINEL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("SENTINEL_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("SENTINEL_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.AI.OpenAIModel = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.AI.OllamaHost = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.AI.OllamaModel = v
	}
	if v := os.Getenv("WORKER_OFFLINE_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			c.Workers.OfflineAfterMinutes = m
		}
	}
}

// WorkerOfflineAfter is the staleness threshold as a duration.
func (c *Config) WorkerOfflineAfter() time.Duration {
	return time.Duration(c.Workers.OfflineAfterMinutes) * time.Minute
}

// PrioritizerInterval derives the path-prioritizer cadence from the
// hypothesis-loop cadence, floored at 5 minutes.
func (c *Config) PrioritizerInterval() int {
	half := c.Scheduler.HypothesisInterval / 2
	if half < 5 {
		return 5
	}
	return half
}
