// Package types defines the shared domain entities for the buzzmill pipeline:
// harvested topics, published posts, persona replies, and the persona pool.
package types

import (
	"strings"
	"time"
)

// RawTopic is an ephemeral candidate produced by the harvester and consumed
// once by the cycle orchestrator. It is never persisted directly.
type RawTopic struct {
	// Title is the headline text as extracted from the source.
	Title string `json:"title"`

	// Link is the source URL for the topic.
	Link string `json:"link"`

	// Published is the publish marker from the source. The format is
	// source-dependent (RFC1123, ISO 8601, or empty for page scrapes).
	Published string `json:"published,omitempty"`

	// Category is the label of the source registry entry that produced
	// this topic (e.g. "tech_trends", "community_clien").
	Category string `json:"category"`

	// Fingerprint is SHA-256(link + "|" + title), lowercase hex.
	// It is the exact-duplicate identity key.
	Fingerprint string `json:"fingerprint"`
}

// Post is a generated content item. The fingerprint column carries a UNIQUE
// constraint in the store; that constraint, not the application-level
// existence check, is the authoritative duplicate guard.
type Post struct {
	ID           int64     `json:"id"`
	PersonaID    string    `json:"persona_id"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ShortsScript string    `json:"shorts_script,omitempty"`
	Writer       string    `json:"writer"`
	Hits         int       `json:"hits"`
	Fingerprint  string    `json:"fingerprint"`
	SourceURL    string    `json:"source_url"`
	CreatedAt    time.Time `json:"created_at"`

	// Replies is populated by queries that join replies; create paths
	// leave it nil and persist replies individually.
	Replies []*Reply `json:"replies,omitempty"`
}

// Video type tags understood by the production service.
const (
	VideoTypeAgro = "AGRO"
	VideoTypeInfo = "INFO"
)

// VideoType classifies a post for downstream production. Derived from the
// generated shorts script rather than declared by the source.
func (p *Post) VideoType() string {
	if strings.Contains(p.ShortsScript, VideoTypeAgro) {
		return VideoTypeAgro
	}
	return VideoTypeInfo
}

// Reply is one persona reaction to a post. Position is the 1-based archetype
// assignment order within the generation round.
type Reply struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	PersonaID string    `json:"persona_id"`
	Writer    string    `json:"writer"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Persona is a member of the commenter pool. Prompt is the persona's own
// voice instruction, combined with an archetype instruction at generation
// time.
type Persona struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Job       string `json:"job"`
	Prompt    string `json:"prompt"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
