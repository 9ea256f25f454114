package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/buzzmill.db", cfg.DBPath)
	assert.Equal(t, 15, cfg.Harvest.MaxTopics)
	assert.Equal(t, 3, cfg.Cycle.Cap)
	assert.Equal(t, 30*time.Minute, cfg.Cycle.ShortInterval)
	assert.Equal(t, "0 9,21 * * *", cfg.Cycle.LongSchedule)
	assert.Equal(t, 6.5, cfg.Curation.MinQualityScore)
	assert.Equal(t, "http://localhost:5001", cfg.Factory.URL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buzzmill.yaml")
	doc := `db_path: /var/lib/buzzmill/app.db
log_level: debug
harvest:
  max_topics: 20
cycle:
  cap: 5
  short_interval: 15m
factory:
  url: http://factory.internal:5001
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/buzzmill/app.db", cfg.DBPath)
	assert.Equal(t, 20, cfg.Harvest.MaxTopics)
	assert.Equal(t, 5, cfg.Cycle.Cap)
	assert.Equal(t, 15*time.Minute, cfg.Cycle.ShortInterval)
	assert.Equal(t, "http://factory.internal:5001", cfg.Factory.URL)
	// Untouched values keep defaults
	assert.Equal(t, 2, cfg.Curation.AgroCount)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BUZZMILL_CYCLE_CAP", "4")
	t.Setenv("BUZZMILL_HARVEST_MAX_TOPICS", "25")
	t.Setenv("BUZZMILL_FACTORY_URL", "http://override:5001")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Cycle.Cap)
	assert.Equal(t, 25, cfg.Harvest.MaxTopics)
	assert.Equal(t, "http://override:5001", cfg.Factory.URL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Cycle.Cap = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Cycle.Cap = 20
	assert.Error(t, bad.Validate(), "cap above harvest budget can never be filled")

	bad = *cfg
	bad.Cycle.ShortInterval = 5 * time.Second
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Curation.MinQualityScore = 11
	assert.Error(t, bad.Validate())
}

func TestSchedulerConfigConversion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	sc := cfg.SchedulerConfig()
	assert.Equal(t, 15, sc.HarvestMax)
	assert.Equal(t, 3, sc.CycleCap)
	assert.Equal(t, 2, sc.Curation.AgroCount)
	assert.Equal(t, 6.5, sc.Curation.MinQualityScore)
}
