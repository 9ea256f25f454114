// Package harvest collects candidate topics from a registry of heterogeneous
// sources, applies per-source quotas, and filters exact duplicates against
// the content store before any generation cost is incurred.
package harvest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"buzzmill/internal/fingerprint"
	"buzzmill/internal/types"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

// FingerprintIndex is the slice of the content store the harvester consults:
// the existence-by-fingerprint predicate. This check is cost avoidance, not
// the correctness guarantee; the store's unique constraint is.
type FingerprintIndex interface {
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
}

// Config holds harvester tuning.
type Config struct {
	// MinTitleLen discards entries with shorter titles. Default: 10.
	MinTitleLen int

	// FetchTimeout bounds each source fetch. A source that never responds
	// is treated as a parse failure for the cycle. Default: 12s.
	FetchTimeout time.Duration

	// FetchInterval is the minimum spacing between outbound fetches, a
	// politeness limit across all sources. Default: 500ms.
	FetchInterval time.Duration
}

// DefaultConfig returns the default harvester configuration.
func DefaultConfig() Config {
	return Config{
		MinTitleLen:   10,
		FetchTimeout:  12 * time.Second,
		FetchInterval: 500 * time.Millisecond,
	}
}

// entry is one parsed (title, link, publish-marker) triple. Every strategy
// reduces its source format to a sequence of these.
type entry struct {
	Title     string
	Link      string
	Published string
}

// Result carries the harvested topics plus aggregate counts for the cycle
// summary log.
type Result struct {
	Topics        []types.RawTopic
	DupSkipped    int
	FailedSources int
	TotalSources  int
}

// Harvester fetches and normalizes candidate topics.
type Harvester struct {
	sources []Source
	index   FingerprintIndex
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	log     *zap.Logger
}

// New creates a harvester over the given source registry.
func New(sources []Source, index FingerprintIndex, cfg Config, log *zap.Logger) (*Harvester, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	for _, s := range sources {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.MinTitleLen == 0 {
		cfg.MinTitleLen = DefaultConfig().MinTitleLen
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	if cfg.FetchInterval == 0 {
		cfg.FetchInterval = DefaultConfig().FetchInterval
	}

	return &Harvester{
		sources: sources,
		index:   index,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Every(cfg.FetchInterval), 1),
		cfg:     cfg,
		log:     log.Named("harvest"),
	}, nil
}

// FetchLatestTopics collects up to maxTopics exact-duplicate-free candidates.
// Each source contributes at most max(2, maxTopics/len(sources)) so no single
// source can exhaust the global budget. A fetch or parse failure on one
// source is logged and contributes zero candidates; the harvest continues.
func (h *Harvester) FetchLatestTopics(ctx context.Context, maxTopics int) Result {
	result := Result{TotalSources: len(h.sources)}
	if maxTopics <= 0 {
		return result
	}

	perSource := maxTopics / len(h.sources)
	if perSource < 2 {
		perSource = 2
	}

	for _, source := range h.sources {
		if len(result.Topics) >= maxTopics {
			break
		}

		entries, err := h.fetchSource(ctx, source)
		if err != nil {
			result.FailedSources++
			h.log.Warn("source fetch failed",
				zap.String("category", source.Category),
				zap.String("url", source.URL),
				zap.Error(err))
			continue
		}

		taken := 0
		for _, e := range entries {
			if len(result.Topics) >= maxTopics || taken >= perSource {
				break
			}
			if !h.acceptable(e) {
				continue
			}

			fp := fingerprint.Compute(e.Link, e.Title)
			exists, err := h.index.ExistsByFingerprint(ctx, fp)
			if err != nil {
				// A broken store check poisons the whole source this
				// cycle; the next cycle retries it.
				result.FailedSources++
				h.log.Warn("fingerprint check failed",
					zap.String("category", source.Category), zap.Error(err))
				break
			}
			if exists {
				result.DupSkipped++
				continue
			}

			result.Topics = append(result.Topics, types.RawTopic{
				Title:       e.Title,
				Link:        e.Link,
				Published:   e.Published,
				Category:    source.Category,
				Fingerprint: fp,
			})
			taken++
		}
	}

	h.log.Info("harvest complete",
		zap.Int("collected", len(result.Topics)),
		zap.Int("dup_skipped", result.DupSkipped),
		zap.Int("failed_sources", result.FailedSources),
		zap.Int("total_sources", result.TotalSources))
	return result
}

// acceptable applies the uniform post-parse filters: minimum title length and
// promotional markers.
func (h *Harvester) acceptable(e entry) bool {
	if len([]rune(e.Title)) < h.cfg.MinTitleLen {
		return false
	}
	if containsPromo(e.Title) {
		return false
	}
	return e.Link != ""
}

// fetchSource rate-limits, fetches, and parses one source via its strategy.
func (h *Harvester) fetchSource(ctx context.Context, source Source) ([]entry, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	switch source.Strategy {
	case StrategyRSS:
		return h.parseFeed(ctx, source.URL)
	case StrategyClien:
		return h.parseClien(ctx, source.URL)
	case StrategyPpomppu:
		return h.parsePpomppu(ctx, source.URL)
	default:
		return nil, fmt.Errorf("unknown strategy %q", source.Strategy)
	}
}
