package similarity

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the near-duplicate detection thresholds. The values are
// empirically chosen; they are exposed here (and via environment overrides)
// rather than hard-coded so operators can tune them without a rebuild.
type Config struct {
	// TitleThreshold flags a candidate whose approximate title scores above
	// this word-set Jaccard similarity against a stored title. Cheapest and
	// most decisive signal, checked first. Default: 0.5.
	TitleThreshold float64

	// WordThreshold flags a candidate whose full text scores above this
	// word-set Jaccard similarity against a stored title+body. Default: 0.6.
	WordThreshold float64

	// BigramThreshold flags a candidate whose bigram set scores above this
	// Jaccard similarity against a stored title+body. Catches paraphrases
	// that shuffle word choice but keep phrase structure. Default: 0.55.
	BigramThreshold float64

	// WindowSize is how many recent posts to compare against. Default: 200.
	WindowSize int

	// TitlePrefixLen is how many leading characters approximate the
	// candidate's title. Default: 50.
	TitlePrefixLen int
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{
		TitleThreshold:  0.5,
		WordThreshold:   0.6,
		BigramThreshold: 0.55,
		WindowSize:      200,
		TitlePrefixLen:  50,
	}
}

// ConfigFromEnv builds a Config from defaults plus environment overrides:
//
//	BUZZMILL_SIM_TITLE_THRESHOLD
//	BUZZMILL_SIM_WORD_THRESHOLD
//	BUZZMILL_SIM_BIGRAM_THRESHOLD
//	BUZZMILL_SIM_WINDOW_SIZE
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("BUZZMILL_SIM_TITLE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid BUZZMILL_SIM_TITLE_THRESHOLD: %w", err)
		}
		cfg.TitleThreshold = f
	}
	if v := os.Getenv("BUZZMILL_SIM_WORD_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid BUZZMILL_SIM_WORD_THRESHOLD: %w", err)
		}
		cfg.WordThreshold = f
	}
	if v := os.Getenv("BUZZMILL_SIM_BIGRAM_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid BUZZMILL_SIM_BIGRAM_THRESHOLD: %w", err)
		}
		cfg.BigramThreshold = f
	}
	if v := os.Getenv("BUZZMILL_SIM_WINDOW_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid BUZZMILL_SIM_WINDOW_SIZE: %w", err)
		}
		cfg.WindowSize = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks threshold and window sanity.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"title_threshold":  c.TitleThreshold,
		"word_threshold":   c.WordThreshold,
		"bigram_threshold": c.BigramThreshold,
	} {
		if v <= 0.0 || v >= 1.0 {
			return fmt.Errorf("%s must be in (0.0, 1.0) (got %.2f)", name, v)
		}
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive (got %d)", c.WindowSize)
	}
	if c.TitlePrefixLen <= 0 {
		return fmt.Errorf("title_prefix_len must be positive (got %d)", c.TitlePrefixLen)
	}
	return nil
}
