package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buzzmill/internal/ai"
	"buzzmill/internal/compose"
	"buzzmill/internal/factory"
	"buzzmill/internal/harvest"
	"buzzmill/internal/persona"
	"buzzmill/internal/storage"
	"buzzmill/internal/types"
)

type fakeHarvester struct {
	result harvest.Result
}

func (f *fakeHarvester) FetchLatestTopics(context.Context, int) harvest.Result {
	return f.result
}

type fakeComposer struct {
	failTitles map[string]bool
}

func (f *fakeComposer) ComposePost(_ context.Context, _ compose.Store, topic types.RawTopic) (*types.Post, error) {
	if f.failTitles[topic.Title] {
		return nil, fmt.Errorf("model exploded")
	}
	return &types.Post{
		PersonaID:    "p00",
		Category:     topic.Category,
		Title:        topic.Title,
		Content:      "Generated body reacting to " + topic.Title,
		ShortsScript: "[INFO] narration for " + topic.Title,
		Writer:       "Persona 0",
		Fingerprint:  topic.Fingerprint,
		SourceURL:    topic.Link,
	}, nil
}

type productionCall struct {
	postID    int64
	videoType string
}

type fakeProducer struct {
	calls       []productionCall
	failIDs     map[int64]bool
	curation    *factory.CurationResult
	curationErr error
}

func (f *fakeProducer) RequestProduction(_ context.Context, postID int64, videoType string) error {
	f.calls = append(f.calls, productionCall{postID: postID, videoType: videoType})
	if f.failIDs[postID] {
		return fmt.Errorf("renderer offline")
	}
	return nil
}

func (f *fakeProducer) RequestCuration(context.Context, factory.CurationRequest) (*factory.CurationResult, error) {
	if f.curationErr != nil {
		return nil, f.curationErr
	}
	return f.curation, nil
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(context.Context, ai.CompletionRequest) (*ai.CompletionResult, error) {
	return &ai.CompletionResult{
		Text: "That matches what the numbers have shown for a while. The next quarter will be the real test of it.",
	}, nil
}

func makeTopics(n int) []types.RawTopic {
	topics := make([]types.RawTopic, n)
	for i := range topics {
		topics[i] = types.RawTopic{
			Title:       fmt.Sprintf("Harvested topic number %d with enough length", i+1),
			Link:        fmt.Sprintf("https://example.com/topic/%d", i+1),
			Category:    "tech_trends",
			Fingerprint: fmt.Sprintf("%064d", i+1),
		}
	}
	return topics
}

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.New(context.Background(), &storage.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	personas := make([]*types.Persona, 6)
	for i := range personas {
		personas[i] = &types.Persona{
			ID:     fmt.Sprintf("p%02d", i),
			Name:   fmt.Sprintf("Persona %d", i),
			Job:    "commenter",
			Prompt: "Write in your own voice.",
		}
	}
	require.NoError(t, store.SeedPersonas(context.Background(), personas))
	return store
}

func newTestScheduler(store storage.Storage, topics []types.RawTopic, composer Composer, producer Producer, cfg Config) *Scheduler {
	log := zap.NewNop()
	replies := persona.NewGenerator(store, fakeCompleter{}, "test-model", log)
	harvester := &fakeHarvester{result: harvest.Result{Topics: topics, TotalSources: 12}}
	return New(store, harvester, composer, replies, producer, cfg, log)
}

func TestShortCycleEndToEnd(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{}
	s := newTestScheduler(store, makeTopics(3), &fakeComposer{}, producer, Config{})

	summary := s.RunShortCycle(context.Background())

	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, summary.Total)
	assert.NotEmpty(t, summary.RunID)

	// Exactly 3 production requests
	require.Len(t, producer.calls, 3)
	for _, call := range producer.calls {
		assert.Equal(t, types.VideoTypeInfo, call.videoType)
	}

	// 3 posts, 5 replies each
	posts, err := store.RecentPosts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, post := range posts {
		replies, err := store.RepliesByPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Len(t, replies, 5)
	}
}

func TestShortCyclePartialFailureIsolation(t *testing.T) {
	store := newTestStore(t)
	topics := makeTopics(5)
	composer := &fakeComposer{failTitles: map[string]bool{topics[1].Title: true}}
	producer := &fakeProducer{}
	s := newTestScheduler(store, topics, composer, producer, Config{CycleCap: 5})

	summary := s.RunShortCycle(context.Background())

	assert.Equal(t, 4, summary.Created, "topics after the failure must still be attempted")
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 5, summary.Total)

	// Nothing persisted for the failed topic
	exists, err := store.ExistsByFingerprint(context.Background(), topics[1].Fingerprint)
	require.NoError(t, err)
	assert.False(t, exists)

	posts, err := store.RecentPosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, posts, 4)
}

func TestShortCycleRespectsCap(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{}
	s := newTestScheduler(store, makeTopics(10), &fakeComposer{}, producer, Config{CycleCap: 3})

	summary := s.RunShortCycle(context.Background())

	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 10, summary.Total)
	assert.Len(t, producer.calls, 3)
}

func TestShortCycleEmptyHarvestIsClean(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{}
	s := newTestScheduler(store, nil, &fakeComposer{}, producer, Config{})

	summary := s.RunShortCycle(context.Background())

	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Total)
	assert.Empty(t, producer.calls)
}

func TestShortCycleProductionFailureKeepsPost(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{failIDs: map[int64]bool{1: true}}
	s := newTestScheduler(store, makeTopics(1), &fakeComposer{}, producer, Config{})

	summary := s.RunShortCycle(context.Background())

	assert.Equal(t, 1, summary.Created, "production failure must not undo the post")

	posts, err := store.RecentPosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestShortCycleDuplicateFingerprintIsSkip(t *testing.T) {
	store := newTestStore(t)
	topics := makeTopics(2)
	topics[1].Fingerprint = topics[0].Fingerprint
	producer := &fakeProducer{}
	s := newTestScheduler(store, topics, &fakeComposer{}, producer, Config{CycleCap: 5})

	summary := s.RunShortCycle(context.Background())

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
}

func TestLongCycle(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{
		curation: &factory.CurationResult{Agro: []int64{3, 5}, Info: []int64{8}},
		failIDs:  map[int64]bool{5: true},
	}
	s := newTestScheduler(store, nil, &fakeComposer{}, producer, Config{})

	require.NoError(t, s.RunLongCycle(context.Background()))

	// All three attempted despite the failure on ID 5
	require.Len(t, producer.calls, 3)
	assert.Equal(t, productionCall{postID: 3, videoType: types.VideoTypeAgro}, producer.calls[0])
	assert.Equal(t, productionCall{postID: 5, videoType: types.VideoTypeAgro}, producer.calls[1])
	assert.Equal(t, productionCall{postID: 8, videoType: types.VideoTypeInfo}, producer.calls[2])
}

func TestLongCycleCurationFailure(t *testing.T) {
	store := newTestStore(t)
	producer := &fakeProducer{curationErr: fmt.Errorf("service down")}
	s := newTestScheduler(store, nil, &fakeComposer{}, producer, Config{})

	err := s.RunLongCycle(context.Background())
	assert.Error(t, err)
	assert.Empty(t, producer.calls)
}
