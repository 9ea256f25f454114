package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"buzzmill/internal/ai"
	"buzzmill/internal/compose"
	"buzzmill/internal/factory"
	"buzzmill/internal/harvest"
	"buzzmill/internal/persona"
	"buzzmill/internal/scheduler"
	"buzzmill/internal/similarity"
	"buzzmill/internal/storage"
)

// pipeline wires the full generation stack. Commands that only need a slice
// of it (harvest, seed-personas) use openStore / newHarvester directly.
type pipeline struct {
	store     storage.Storage
	harvester *harvest.Harvester
	sched     *scheduler.Scheduler
}

func openStore(ctx context.Context) (storage.Storage, error) {
	return storage.New(ctx, cfg.StorageConfig())
}

func loadSources() ([]harvest.Source, error) {
	if cfg.RegistryPath != "" {
		return harvest.LoadRegistry(cfg.RegistryPath)
	}
	return harvest.DefaultRegistry(), nil
}

func newHarvester(store storage.Storage) (*harvest.Harvester, error) {
	sources, err := loadSources()
	if err != nil {
		return nil, err
	}
	hcfg := harvest.DefaultConfig()
	if cfg.Harvest.MinTitleLen > 0 {
		hcfg.MinTitleLen = cfg.Harvest.MinTitleLen
	}
	if cfg.Harvest.Timeout > 0 {
		hcfg.FetchTimeout = cfg.Harvest.Timeout
	}
	return harvest.New(sources, store, hcfg, logger)
}

// buildPipeline constructs everything the daemon needs. Fails fast on missing
// ANTHROPIC_API_KEY or FACTORY_API_KEY so a misconfigured deploy dies at
// startup, not mid-cycle.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	harvester, err := newHarvester(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	completer, err := ai.New(ai.Config{}, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	simCfg, err := similarity.ConfigFromEnv()
	if err != nil {
		store.Close()
		return nil, err
	}
	detector := similarity.NewDetector(simCfg, logger)

	composer := compose.New(completer, "", detector, logger)
	replies := persona.NewGenerator(store, completer, ai.SimpleModel(), logger)

	producer, err := factory.New(cfg.FactoryClientConfig(), store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	sched := scheduler.New(store, harvester, composer, replies, producer, cfg.SchedulerConfig(), logger)
	return &pipeline{store: store, harvester: harvester, sched: sched}, nil
}

func (p *pipeline) Close() {
	if err := p.store.Close(); err != nil {
		logger.Warn("store close failed", zap.Error(err))
	}
}
