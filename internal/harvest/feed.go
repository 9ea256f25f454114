package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// promoMarkers are checked case-insensitively against titles. Entries
// carrying them are discarded before dedup.
var promoMarkers = []string{"sponsored", "ad:"}

func containsPromo(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range promoMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseFeed handles RSS and Atom sources. gofeed normalizes both formats,
// including Atom's <link href="..."/> shape.
func (h *Harvester) parseFeed(ctx context.Context, url string) ([]entry, error) {
	parser := gofeed.NewParser()
	parser.Client = h.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed parse: %w", err)
	}

	entries := make([]entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		entries = append(entries, entry{
			Title:     title,
			Link:      link,
			Published: item.Published,
		})
	}
	return entries, nil
}
