// Package persona generates the five-archetype reaction set for a committed
// post: distinct commenter identities, a minimum-quality bar per reply, and
// individual persistence so one bad reply never takes down the round.
package persona

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"buzzmill/internal/ai"
	"buzzmill/internal/types"
)

const (
	// previewLen bounds how much post content is quoted into the prompt.
	previewLen = 300

	// minReplyLen is the hard floor. Anything shorter after cleaning and one
	// repair attempt is replaced by fallbackReply.
	minReplyLen = 10

	// replyMaxTokens bounds each reply completion.
	replyMaxTokens = 512

	fallbackReply = "This one deserves more thought than it is getting at first glance. It really does not look like a simple story to me."
)

// Store is the slice of the content store the generator needs.
type Store interface {
	ListPersonas(ctx context.Context) ([]*types.Persona, error)
	CreateReply(ctx context.Context, reply *types.Reply) error
}

// Generator produces persona replies for committed posts.
type Generator struct {
	store Store
	ai    ai.Completer
	model string
	rng   *rand.Rand
	log   *zap.Logger
}

// NewGenerator creates a reply generator. model selects the completion model
// for reply text; replies tolerate a cheaper model than post bodies.
func NewGenerator(store Store, completer ai.Completer, model string, log *zap.Logger) *Generator {
	return &Generator{
		store: store,
		ai:    completer,
		model: model,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log.Named("persona"),
	}
}

// GenerateReplies writes five archetype replies for the post. A pool with
// fewer than 2 personas makes this a no-op. Model failures degrade to the
// fallback text; store failures on one reply are logged and the round
// continues.
func (g *Generator) GenerateReplies(ctx context.Context, post *types.Post) error {
	personas, err := g.store.ListPersonas(ctx)
	if err != nil {
		return fmt.Errorf("list personas: %w", err)
	}
	if len(personas) < 2 {
		g.log.Warn("persona pool too small, skipping replies",
			zap.Int("pool_size", len(personas)), zap.Int64("post_id", post.ID))
		return nil
	}

	preview := contentPreview(post.Content)
	sel := newSelector(personas, g.rng, post.PersonaID)

	for i, archetype := range archetypes {
		replier := sel.pick()

		text := g.complete(ctx, replier.Prompt, g.replyTask(replier, archetype, post, preview))
		clean := cleanReply(text)

		if countSentences(clean) < 2 {
			g.log.Debug("reply too short, attempting repair",
				zap.String("archetype", archetype.Name), zap.Int64("post_id", post.ID))
			repaired := cleanReply(g.complete(ctx, "",
				"Expand the following comment to at least two sentences. No filler reactions. Add a concrete opinion: "+clean))
			if len([]rune(repaired)) > len([]rune(clean)) {
				clean = repaired
			}
		}

		if len([]rune(clean)) < minReplyLen {
			clean = fallbackReply
		}

		reply := &types.Reply{
			PostID:    post.ID,
			PersonaID: replier.ID,
			Writer:    replier.Name,
			Content:   clean,
			Position:  i + 1,
		}
		if err := g.store.CreateReply(ctx, reply); err != nil {
			g.log.Warn("reply persist failed",
				zap.String("archetype", archetype.Name),
				zap.Int("position", i+1),
				zap.Int64("post_id", post.ID),
				zap.Error(err))
			continue
		}

		g.log.Debug("reply created",
			zap.Int("position", i+1),
			zap.String("writer", replier.Name),
			zap.String("archetype", archetype.Name))
	}

	g.log.Info("reply round complete", zap.Int64("post_id", post.ID))
	return nil
}

// complete runs one model call. Any failure is degraded to empty output so
// the quality gate and hard floor decide the outcome.
func (g *Generator) complete(ctx context.Context, system, prompt string) string {
	result, err := g.ai.Complete(ctx, ai.CompletionRequest{
		System:    system,
		Prompt:    prompt,
		Model:     g.model,
		MaxTokens: replyMaxTokens,
	})
	if err != nil {
		g.log.Warn("reply completion failed", zap.Error(err))
		return ""
	}
	return result.Text
}

func (g *Generator) replyTask(replier *types.Persona, archetype Archetype, post *types.Post, preview string) string {
	return fmt.Sprintf(`You are %s (%s), leaving a comment on an online community post.

[Role instruction]
%s

[Comment rules]
- Write at least 2 sentences
- Never answer with filler-only reactions or bare exclamations
- Always include your own perspective or extra information
- Formal or casual register is your choice, matching your persona
- Do not prepend prefixes like "Reply:" or "Comment:"
- Give a concrete opinion tied directly to the post content

[Post]
Title: %s
Category: %s
Content summary: %s

Output only the comment.`,
		replier.Name, replier.Job, archetype.Instruction,
		post.Title, post.Category, preview)
}

func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}

var (
	markdownMarks = strings.NewReplacer("#", "", "*", "")
	replyPrefix   = regexp.MustCompile(`(?i)^(reply|comment|answer)\s*:?\s*`)
	sentenceEnd   = regexp.MustCompile(`[.?!。]+`)
)

// cleanReply normalizes raw model output: keep at most the first 3 non-empty
// lines joined by spaces, strip markdown emphasis, reply-style prefixes, and
// wrapping quotes. Lines shorter than 3 characters after stripping are
// dropped as noise.
func cleanReply(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = markdownMarks.Replace(trimmed)
		trimmed = replyPrefix.ReplaceAllString(trimmed, "")
		trimmed = strings.TrimPrefix(trimmed, `"`)
		trimmed = strings.TrimSuffix(trimmed, `"`)
		trimmed = strings.TrimSpace(trimmed)
		if len([]rune(trimmed)) < 3 {
			continue
		}
		parts = append(parts, trimmed)
		if len(parts) >= 3 {
			break
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// countSentences counts fragments longer than 5 characters between
// sentence-ending punctuation, with a floor of 1 for any non-empty text.
func countSentences(text string) int {
	if text == "" {
		return 0
	}
	count := 0
	for _, frag := range sentenceEnd.Split(text, -1) {
		if len([]rune(strings.TrimSpace(frag))) > 5 {
			count++
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}
