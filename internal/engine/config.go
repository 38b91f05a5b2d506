package engine

import (
	"os"
	"strconv"
	"time"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/profile"
	"github.com/alexanderramin/attune/internal/rank"
)

// Config bundles the tunables for one engine instance.
type Config struct {
	Classifier classify.Config
	Learner    profile.Config
	Ranker     rank.Config

	// VerifyEnabled turns the NLI gate on; rules backstop still runs when
	// off or degraded.
	VerifyEnabled bool

	// EmbedWarmup pre-computes advice embeddings during WarmUp when the
	// model backend is reachable.
	EmbedWarmup bool

	// EmbedWarmupWorkers bounds warm-up concurrency.
	EmbedWarmupWorkers int

	// EmbedWarmupCap bounds how many corpus items get embedded.
	EmbedWarmupCap int

	// HistoryKeep bounds the per-user profile event log.
	HistoryKeep int

	// Location resolves day keys; nil means UTC.
	Location *time.Location
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Classifier:         classify.DefaultConfig(),
		Learner:            profile.DefaultConfig(),
		Ranker:             rank.DefaultConfig(),
		VerifyEnabled:      false,
		EmbedWarmup:        false,
		EmbedWarmupWorkers: 4,
		EmbedWarmupCap:     64,
		HistoryKeep:        500,
	}
}

// LoadConfig reads engine configuration from environment variables, falling
// back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ATTUNE_VERIFY_ENABLED"); v != "" {
		cfg.VerifyEnabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ATTUNE_EMBED_WARMUP"); v != "" {
		cfg.EmbedWarmup, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ATTUNE_EMBED_WARMUP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbedWarmupWorkers = n
		}
	}
	if v := os.Getenv("ATTUNE_EMBED_WARMUP_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbedWarmupCap = n
		}
	}
	if v := os.Getenv("ATTUNE_HISTORY_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryKeep = n
		}
	}
	if v := os.Getenv("ATTUNE_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Learner.DailyLimit = n
		}
	}
	if v := os.Getenv("ATTUNE_LEARNING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Learner.LearningDays = n
		}
	}
	if v := os.Getenv("ATTUNE_TIMEZONE"); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			cfg.Location = loc
		}
	}

	return cfg
}

func (c Config) sanitized() Config {
	if c.EmbedWarmupWorkers <= 0 {
		c.EmbedWarmupWorkers = 4
	}
	if c.EmbedWarmupCap <= 0 {
		c.EmbedWarmupCap = 64
	}
	if c.HistoryKeep <= 0 {
		c.HistoryKeep = 500
	}
	return c
}
