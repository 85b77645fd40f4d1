// Package config loads recall configuration from environment variables
// with an optional YAML overlay file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the overlay file could not be read or parsed.
// Load still returns a usable config built from defaults and environment.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Embedding provider
	EmbedProvider  string // "ollama", "openai", "bedrock"
	EmbedModel     string
	EmbedDimension int
	EmbedTimeout   time.Duration
	OllamaHost     string
	OpenAIAPIKey   string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Significance classification
	ErrorPatterns     []string
	IgnoreCommands    []string
	ImportantCommands []string

	// Retrieval triggers
	TriggerOnError        bool
	TriggerOnRepeat       bool
	TriggerOnProjectEntry bool
	TriggerOnBranchChange bool

	// Confidence scoring
	SemanticWeight float64
	ProjectWeight  float64
	CommandWeight  float64
	MinConfidence  float64

	// Episode synthesis
	SequenceWindow    time.Duration
	MinSequenceLength int

	// Session tracking
	RepeatWindow time.Duration

	// Result shaping
	MaxResults     int
	CandidateLimit int
}

// fileConfig is the YAML overlay shape. Only set fields override.
type fileConfig struct {
	ErrorPatterns     []string `yaml:"error_patterns"`
	IgnoreCommands    []string `yaml:"ignore_commands"`
	ImportantCommands []string `yaml:"important_commands"`

	Triggers *struct {
		Error        *bool `yaml:"error"`
		Repeat       *bool `yaml:"repeat"`
		ProjectEntry *bool `yaml:"project_entry"`
		BranchChange *bool `yaml:"branch_change"`
	} `yaml:"triggers"`

	Weights *struct {
		Semantic *float64 `yaml:"semantic"`
		Project  *float64 `yaml:"project"`
		Command  *float64 `yaml:"command"`
	} `yaml:"weights"`

	MinConfidence     *float64 `yaml:"min_confidence"`
	SequenceWindow    *string  `yaml:"sequence_window"`
	MinSequenceLength *int     `yaml:"min_sequence_length"`
	RepeatWindow      *string  `yaml:"repeat_window"`
	MaxResults        *int     `yaml:"max_results"`
	CandidateLimit    *int     `yaml:"candidate_limit"`
}

// Load reads configuration from environment variables, then applies the
// YAML overlay named by RECALL_CONFIG (if set). A broken overlay returns
// ErrInvalidConfig alongside the environment-derived config so callers
// can decide whether to proceed on defaults.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "recall"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "memory"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		EmbedProvider:  getEnv("RECALL_EMBED_PROVIDER", "ollama"),
		EmbedModel:     getEnv("RECALL_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("RECALL_EMBED_DIMENSION", 384),
		EmbedTimeout:   getEnvDuration("RECALL_EMBED_TIMEOUT", 10*time.Second),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),

		LogFile:  getEnv("RECALL_LOG_FILE", "/tmp/recall.log"),
		LogLevel: parseLogLevel(getEnv("RECALL_LOG_LEVEL", "INFO")),

		ErrorPatterns:     getEnvList("RECALL_ERROR_PATTERNS", defaultErrorPatterns),
		IgnoreCommands:    getEnvList("RECALL_IGNORE_COMMANDS", defaultIgnoreCommands),
		ImportantCommands: getEnvList("RECALL_IMPORTANT_COMMANDS", defaultImportantCommands),

		TriggerOnError:        getEnvBool("RECALL_TRIGGER_ERROR", true),
		TriggerOnRepeat:       getEnvBool("RECALL_TRIGGER_REPEAT", true),
		TriggerOnProjectEntry: getEnvBool("RECALL_TRIGGER_PROJECT_ENTRY", true),
		TriggerOnBranchChange: getEnvBool("RECALL_TRIGGER_BRANCH_CHANGE", false),

		SemanticWeight: getEnvFloat("RECALL_WEIGHT_SEMANTIC", 0.5),
		ProjectWeight:  getEnvFloat("RECALL_WEIGHT_PROJECT", 0.3),
		CommandWeight:  getEnvFloat("RECALL_WEIGHT_COMMAND", 0.2),
		MinConfidence:  getEnvFloat("RECALL_MIN_CONFIDENCE", 0.3),

		SequenceWindow:    getEnvDuration("RECALL_SEQUENCE_WINDOW", 10*time.Minute),
		MinSequenceLength: getEnvInt("RECALL_MIN_SEQUENCE_LENGTH", 3),

		RepeatWindow: getEnvDuration("RECALL_REPEAT_WINDOW", 10*time.Minute),

		MaxResults:     getEnvInt("RECALL_MAX_RESULTS", 3),
		CandidateLimit: getEnvInt("RECALL_CANDIDATE_LIMIT", 100),
	}

	path := os.Getenv("RECALL_CONFIG")
	if path == "" {
		return cfg, nil
	}
	if err := cfg.applyFile(path); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.ErrorPatterns != nil {
		c.ErrorPatterns = fc.ErrorPatterns
	}
	if fc.IgnoreCommands != nil {
		c.IgnoreCommands = fc.IgnoreCommands
	}
	if fc.ImportantCommands != nil {
		c.ImportantCommands = fc.ImportantCommands
	}
	if fc.Triggers != nil {
		setBool(&c.TriggerOnError, fc.Triggers.Error)
		setBool(&c.TriggerOnRepeat, fc.Triggers.Repeat)
		setBool(&c.TriggerOnProjectEntry, fc.Triggers.ProjectEntry)
		setBool(&c.TriggerOnBranchChange, fc.Triggers.BranchChange)
	}
	if fc.Weights != nil {
		setFloat(&c.SemanticWeight, fc.Weights.Semantic)
		setFloat(&c.ProjectWeight, fc.Weights.Project)
		setFloat(&c.CommandWeight, fc.Weights.Command)
	}
	setFloat(&c.MinConfidence, fc.MinConfidence)
	setInt(&c.MinSequenceLength, fc.MinSequenceLength)
	setInt(&c.MaxResults, fc.MaxResults)
	setInt(&c.CandidateLimit, fc.CandidateLimit)

	if fc.SequenceWindow != nil {
		d, err := time.ParseDuration(*fc.SequenceWindow)
		if err != nil {
			return fmt.Errorf("sequence_window: %v", err)
		}
		c.SequenceWindow = d
	}
	if fc.RepeatWindow != nil {
		d, err := time.ParseDuration(*fc.RepeatWindow)
		if err != nil {
			return fmt.Errorf("repeat_window: %v", err)
		}
		c.RepeatWindow = d
	}

	return nil
}

var defaultErrorPatterns = []string{
	"error",
	"failed",
	"fatal",
	"exception",
	"panic:",
	"traceback",
	"not found",
	"permission denied",
	"command not found",
	"no such file",
}

var defaultIgnoreCommands = []string{
	"ls", "cd", "pwd", "clear", "exit", "history", "echo", "cat", "which", "man",
}

var defaultImportantCommands = []string{
	"git", "npm", "yarn", "pnpm", "docker", "docker-compose", "kubectl",
	"make", "cargo", "go", "pip", "python", "terraform", "ssh", "curl",
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
