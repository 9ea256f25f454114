// Package compose turns a harvested topic into a generated post: one model
// call for the body and shorts script, a near-duplicate gate against recent
// posts, and a persona author sampled from the pool.
package compose

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"buzzmill/internal/ai"
	"buzzmill/internal/similarity"
	"buzzmill/internal/types"
)

// ErrNearDuplicate means the generated draft is too close to a recent post.
// The cycle treats it as a skip, not a failure.
var ErrNearDuplicate = errors.New("near-duplicate of recent post")

// ErrEmptyPool means no personas exist to author the post.
var ErrEmptyPool = errors.New("persona pool is empty")

const composeMaxTokens = 3000

// Store is the slice of the content store the composer reads. The scheduler
// passes its transaction-scoped store so the similarity window is read on the
// same connection that will commit the post.
type Store interface {
	RecentPosts(ctx context.Context, limit int) ([]*types.Post, error)
	ListPersonas(ctx context.Context) ([]*types.Persona, error)
}

// draft is the JSON shape the model is asked to emit.
type draft struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ShortsScript string `json:"shorts_script"`
}

// Composer generates posts from topics.
type Composer struct {
	ai       ai.Completer
	model    string
	detector *similarity.Detector
	rng      *rand.Rand
	log      *zap.Logger
}

// New creates a composer using the given model for post bodies.
func New(completer ai.Completer, model string, detector *similarity.Detector, log *zap.Logger) *Composer {
	return &Composer{
		ai:       completer,
		model:    model,
		detector: detector,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log.Named("compose"),
	}
}

// ComposePost generates an unsaved post for the topic. The caller persists it;
// an ErrNearDuplicate return means the draft was rejected by the similarity
// gate and the topic should be skipped.
func (c *Composer) ComposePost(ctx context.Context, store Store, topic types.RawTopic) (*types.Post, error) {
	personas, err := store.ListPersonas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	if len(personas) == 0 {
		return nil, ErrEmptyPool
	}
	author := personas[c.rng.Intn(len(personas))]

	result, err := c.ai.Complete(ctx, ai.CompletionRequest{
		System:    author.Prompt,
		Prompt:    c.composeTask(author, topic),
		Model:     c.model,
		MaxTokens: composeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("post generation: %w", err)
	}

	var d draft
	if err := extractJSON(result.Text, &d); err != nil {
		return nil, fmt.Errorf("post generation output: %w", err)
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	if d.Title == "" || d.Content == "" {
		return nil, fmt.Errorf("post generation output: empty title or content")
	}

	window, err := store.RecentPosts(ctx, c.detector.WindowSize())
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	if flagged, match := c.detector.TooSimilar(d.Title+" "+d.Content, window); flagged {
		c.log.Info("draft rejected as near-duplicate",
			zap.String("topic_title", topic.Title),
			zap.String("matched_title", match.Title),
			zap.String("tier", match.Tier),
			zap.Float64("score", match.Score))
		return nil, fmt.Errorf("%w: %q matched %q on %s tier (%.2f)",
			ErrNearDuplicate, d.Title, match.Title, match.Tier, match.Score)
	}

	return &types.Post{
		PersonaID:    author.ID,
		Category:     topic.Category,
		Title:        d.Title,
		Content:      d.Content,
		ShortsScript: d.ShortsScript,
		Writer:       author.Name,
		Fingerprint:  topic.Fingerprint,
		SourceURL:    topic.Link,
	}, nil
}

func (c *Composer) composeTask(author *types.Persona, topic types.RawTopic) string {
	return fmt.Sprintf(`You are %s (%s), writing a post for an online community board.

Source headline: %s
Category: %s
Source link: %s

Write an engaging post reacting to this headline in your own voice. Strong
hook, concrete details, a clear stance. Then write a 45-second vertical video
narration script for the same story. The script must start with either the
tag [AGRO] (provocative, debate-bait angle) or [INFO] (explainer angle),
whichever fits the story better.

Respond with ONLY a JSON object, no surrounding prose:
{
  "title": "post title, punchy, under 80 characters",
  "content": "post body, 3 or more paragraphs",
  "shorts_script": "[AGRO] or [INFO] followed by the narration"
}`,
		author.Name, author.Job, topic.Title, topic.Category, topic.Link)
}
