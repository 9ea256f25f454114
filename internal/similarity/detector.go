// Package similarity implements heuristic near-duplicate detection for
// generated content. The exact-duplicate fingerprint check upstream catches
// identical (link, title) pairs; this package catches the model paraphrasing
// a story that already ran under a different source URL.
//
// Detection is a safety net over text-overlap measures, not a semantic
// equivalence oracle.
package similarity

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"buzzmill/internal/types"
)

var nonWord = regexp.MustCompile(`\W+`)

// Match describes which stored post flagged a candidate and on which tier.
type Match struct {
	PostID int64
	Title  string
	Tier   string // "title", "word", or "bigram"
	Score  float64
}

// Detector scores candidate text against a window of recent posts.
// It holds no storage reference; callers fetch the window and pass it in,
// which keeps the detector pure and the comparison set explicit.
type Detector struct {
	cfg Config
	log *zap.Logger
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config, log *zap.Logger) *Detector {
	return &Detector{cfg: cfg, log: log.Named("similarity")}
}

// WindowSize returns how many recent posts the caller should fetch.
func (d *Detector) WindowSize() int { return d.cfg.WindowSize }

// TooSimilar reports whether candidate is too close to any post in the
// window. It short-circuits on the first match, checking the three tiers in
// order of cost: title, full-text words, bigrams.
func (d *Detector) TooSimilar(candidate string, window []*types.Post) (bool, *Match) {
	candTitle := approximateTitle(candidate, d.cfg.TitlePrefixLen)
	candWords := wordSet(candidate)
	candBigrams := bigramSet(candidate)

	for _, post := range window {
		existing := post.Title + " " + post.Content

		if score := jaccard(wordSet(post.Title), wordSet(candTitle)); score > d.cfg.TitleThreshold {
			d.logMatch(post, "title", score)
			return true, &Match{PostID: post.ID, Title: post.Title, Tier: "title", Score: score}
		}

		if score := jaccard(wordSet(existing), candWords); score > d.cfg.WordThreshold {
			d.logMatch(post, "word", score)
			return true, &Match{PostID: post.ID, Title: post.Title, Tier: "word", Score: score}
		}

		if score := jaccard(bigramSet(existing), candBigrams); score > d.cfg.BigramThreshold {
			d.logMatch(post, "bigram", score)
			return true, &Match{PostID: post.ID, Title: post.Title, Tier: "bigram", Score: score}
		}
	}
	return false, nil
}

func (d *Detector) logMatch(post *types.Post, tier string, score float64) {
	d.log.Debug("near-duplicate flagged",
		zap.Int64("post_id", post.ID),
		zap.String("post_title", post.Title),
		zap.String("tier", tier),
		zap.Float64("score", score))
}

// approximateTitle extracts the candidate's title: its first prefixLen
// characters, or the whole text if it contains no whitespace.
func approximateTitle(text string, prefixLen int) string {
	if !strings.Contains(text, " ") {
		return text
	}
	runes := []rune(text)
	if len(runes) <= prefixLen {
		return text
	}
	return string(runes[:prefixLen])
}

// wordSet tokenizes text into an unordered set of lowercase words.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}

// bigramSet builds the set of contiguous two-word sequences.
func bigramSet(text string) map[string]struct{} {
	words := tokenize(text)
	set := make(map[string]struct{}, len(words))
	for i := 0; i+1 < len(words); i++ {
		set[words[i]+" "+words[i+1]] = struct{}{}
	}
	return set
}

func tokenize(text string) []string {
	fields := nonWord.Split(strings.ToLower(text), -1)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// jaccard computes |A∩B| / |A∪B|, defined as 0 when the union is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
