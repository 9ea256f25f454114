// Package scheduler drives the pipeline: a short-interval cycle that harvests
// topics and generates posts plus replies under a per-cycle cap, and a
// long-interval cycle that requests curated batch production. One topic's
// failure never aborts a cycle; one cycle's failure never stops the schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"buzzmill/internal/compose"
	"buzzmill/internal/factory"
	"buzzmill/internal/harvest"
	"buzzmill/internal/storage"
	"buzzmill/internal/types"
)

// Harvester yields deduplicated candidate topics.
type Harvester interface {
	FetchLatestTopics(ctx context.Context, maxTopics int) harvest.Result
}

// Composer turns one topic into an unsaved post.
type Composer interface {
	ComposePost(ctx context.Context, store compose.Store, topic types.RawTopic) (*types.Post, error)
}

// ReplyGenerator writes the persona reply round for a committed post.
type ReplyGenerator interface {
	GenerateReplies(ctx context.Context, post *types.Post) error
}

// Producer submits downstream production and curation requests.
type Producer interface {
	RequestProduction(ctx context.Context, postID int64, videoType string) error
	RequestCuration(ctx context.Context, req factory.CurationRequest) (*factory.CurationResult, error)
}

// Config holds cycle tuning.
type Config struct {
	// HarvestMax is how many topics each short cycle requests. Over-fetched
	// relative to CycleCap to absorb duplicate and generation losses.
	// Default: 15.
	HarvestMax int

	// CycleCap is the maximum posts created per short cycle. Default: 3.
	CycleCap int

	// ShortInterval is the spacing between short cycles. Default: 30m.
	ShortInterval time.Duration

	// LongSchedule is the cron spec for the curation cycle.
	// Default: "0 9,21 * * *" (daily at 09:00 and 21:00).
	LongSchedule string

	// Curation is the batch request sent by the long cycle.
	Curation factory.CurationRequest
}

// DefaultConfig returns the default cycle configuration.
func DefaultConfig() Config {
	return Config{
		HarvestMax:    15,
		CycleCap:      3,
		ShortInterval: 30 * time.Minute,
		LongSchedule:  "0 9,21 * * *",
		Curation:      factory.DefaultCurationRequest(),
	}
}

// Summary reports one short cycle's outcome.
type Summary struct {
	RunID   string
	Created int
	Skipped int
	Total   int
}

// Scheduler owns the two periodic jobs.
type Scheduler struct {
	store     storage.Storage
	harvester Harvester
	composer  Composer
	replies   ReplyGenerator
	producer  Producer
	cfg       Config
	cron      *cron.Cron
	log       *zap.Logger
}

// New creates a scheduler. Zero config fields fall back to defaults.
func New(store storage.Storage, harvester Harvester, composer Composer, replies ReplyGenerator, producer Producer, cfg Config, log *zap.Logger) *Scheduler {
	def := DefaultConfig()
	if cfg.HarvestMax == 0 {
		cfg.HarvestMax = def.HarvestMax
	}
	if cfg.CycleCap == 0 {
		cfg.CycleCap = def.CycleCap
	}
	if cfg.ShortInterval == 0 {
		cfg.ShortInterval = def.ShortInterval
	}
	if cfg.LongSchedule == "" {
		cfg.LongSchedule = def.LongSchedule
	}
	if cfg.Curation == (factory.CurationRequest{}) {
		cfg.Curation = def.Curation
	}

	return &Scheduler{
		store:     store,
		harvester: harvester,
		composer:  composer,
		replies:   replies,
		producer:  producer,
		cfg:       cfg,
		log:       log.Named("scheduler"),
	}
}

// RunShortCycle executes one harvest-and-generate pass.
func (s *Scheduler) RunShortCycle(ctx context.Context) Summary {
	summary := Summary{RunID: uuid.NewString()}
	log := s.log.With(zap.String("run_id", summary.RunID))
	log.Info("short cycle started",
		zap.Int("harvest_max", s.cfg.HarvestMax),
		zap.Int("cycle_cap", s.cfg.CycleCap))

	result := s.harvester.FetchLatestTopics(ctx, s.cfg.HarvestMax)
	summary.Total = len(result.Topics)
	if summary.Total == 0 {
		log.Warn("no topics harvested, all duplicates or sources failed",
			zap.Int("failed_sources", result.FailedSources))
		return summary
	}

	for _, topic := range result.Topics {
		if summary.Created >= s.cfg.CycleCap {
			break
		}

		post, err := s.createPost(ctx, topic)
		if err != nil {
			summary.Skipped++
			if errors.Is(err, compose.ErrNearDuplicate) || errors.Is(err, storage.ErrDuplicateFingerprint) {
				log.Info("topic skipped as duplicate",
					zap.String("topic_title", topic.Title), zap.Error(err))
			} else {
				log.Error("post generation failed",
					zap.String("topic_title", topic.Title), zap.Error(err))
			}
			continue
		}

		if err := s.replies.GenerateReplies(ctx, post); err != nil {
			log.Error("reply generation failed", zap.Int64("post_id", post.ID), zap.Error(err))
		}

		videoType := post.VideoType()
		if err := s.producer.RequestProduction(ctx, post.ID, videoType); err != nil {
			// Production is decoupled and retryable; the post stays committed.
			log.Warn("production request failed",
				zap.Int64("post_id", post.ID),
				zap.String("video_type", videoType),
				zap.Error(err))
		} else {
			log.Info("production requested",
				zap.Int64("post_id", post.ID), zap.String("video_type", videoType))
		}

		summary.Created++
	}

	log.Info("short cycle complete",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("total", summary.Total))
	return summary
}

// createPost composes and commits one post inside its own transaction. Any
// error rolls the whole topic back so no partial content item survives.
func (s *Scheduler) createPost(ctx context.Context, topic types.RawTopic) (*types.Post, error) {
	var post *types.Post
	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Storage) error {
		p, err := s.composer.ComposePost(ctx, tx, topic)
		if err != nil {
			return err
		}
		if err := tx.CreatePost(ctx, p); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// RunLongCycle executes one curated production pass.
func (s *Scheduler) RunLongCycle(ctx context.Context) error {
	s.log.Info("long cycle started",
		zap.Int("agro_count", s.cfg.Curation.AgroCount),
		zap.Int("info_count", s.cfg.Curation.InfoCount),
		zap.Float64("min_quality", s.cfg.Curation.MinQualityScore))

	result, err := s.producer.RequestCuration(ctx, s.cfg.Curation)
	if err != nil {
		s.log.Error("curation request failed", zap.Error(err))
		return fmt.Errorf("curation: %w", err)
	}
	s.log.Info("curation complete",
		zap.Int("agro_selected", len(result.Agro)),
		zap.Int("info_selected", len(result.Info)))

	s.requestBatch(ctx, result.Agro, types.VideoTypeAgro)
	s.requestBatch(ctx, result.Info, types.VideoTypeInfo)
	return nil
}

// requestBatch issues production requests for curated IDs, logging per-item
// outcomes without aborting the batch.
func (s *Scheduler) requestBatch(ctx context.Context, ids []int64, videoType string) {
	for _, id := range ids {
		if err := s.producer.RequestProduction(ctx, id, videoType); err != nil {
			s.log.Error("curated production request failed",
				zap.Int64("post_id", id), zap.String("video_type", videoType), zap.Error(err))
			continue
		}
		s.log.Info("curated production requested",
			zap.Int64("post_id", id), zap.String("video_type", videoType))
	}
}

// Start registers both cycles with cron and begins the schedule. Cycles never
// overlap themselves; a still-running invocation makes the next tick skip.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := &cronLogger{log: s.log.Named("cron")}
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	shortSpec := fmt.Sprintf("@every %s", s.cfg.ShortInterval)
	if _, err := s.cron.AddFunc(shortSpec, func() { s.RunShortCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule short cycle: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.LongSchedule, func() {
		if err := s.RunLongCycle(ctx); err != nil {
			s.log.Error("long cycle failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule long cycle: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("short_schedule", shortSpec),
		zap.String("long_schedule", s.cfg.LongSchedule))
	return nil
}

// Stop halts the schedule and waits for any running cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
