package harvest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parsing strategies. Feed sources share one parser; page-scrape sources each
// get a strategy keyed to that site's markup.
const (
	StrategyRSS     = "rss"
	StrategyClien   = "html_clien"
	StrategyPpomppu = "html_ppomppu"
)

// Source is one registry entry: where to fetch, how to parse, and the
// category label stamped onto every topic it yields.
type Source struct {
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Strategy string `yaml:"strategy"`
}

// Validate checks that the source can be dispatched.
func (s Source) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("source url is required")
	}
	if s.Category == "" {
		return fmt.Errorf("source category is required (url=%s)", s.URL)
	}
	switch s.Strategy {
	case StrategyRSS, StrategyClien, StrategyPpomppu:
		return nil
	default:
		return fmt.Errorf("unknown strategy %q (url=%s)", s.Strategy, s.URL)
	}
}

// DefaultRegistry is the compiled-in source set: zero-cost RSS feeds plus two
// community sites scraped from static HTML (no headless browser needed).
// Categories target broad-appeal issues only.
func DefaultRegistry() []Source {
	return []Source{
		// Reddit RSS (free, no API key)
		{URL: "https://www.reddit.com/r/entertainment/top/.rss?t=day", Category: "entertainment_global", Strategy: StrategyRSS},
		{URL: "https://www.reddit.com/r/sports/top/.rss?t=day", Category: "sports_global", Strategy: StrategyRSS},
		{URL: "https://www.reddit.com/r/todayilearned/top/.rss?t=day", Category: "life_facts", Strategy: StrategyRSS},
		{URL: "https://www.reddit.com/r/technology/top/.rss?t=day", Category: "tech_trends", Strategy: StrategyRSS},
		{URL: "https://www.reddit.com/r/worldnews/top/.rss?t=day", Category: "world_issues", Strategy: StrategyRSS},

		// Domestic media RSS
		{URL: "https://www.chosun.com/arc/outboundfeeds/rss/category/entertainments/?outputType=xml", Category: "entertainment_kr", Strategy: StrategyRSS},
		{URL: "https://www.hankyung.com/feed/sports", Category: "sports_kr", Strategy: StrategyRSS},
		{URL: "https://www.hani.co.kr/rss/science/", Category: "science_life", Strategy: StrategyRSS},

		// Global news RSS
		{URL: "https://news.google.com/rss/search?q=trending+viral&hl=ko&gl=KR", Category: "trending_global", Strategy: StrategyRSS},
		{URL: "https://www.theverge.com/rss/index.xml", Category: "tech_trends", Strategy: StrategyRSS},

		// Community sites (HTML parsing)
		{URL: "https://www.clien.net/service/group/community?&od=T31", Category: "community_clien", Strategy: StrategyClien},
		{URL: "https://www.ppomppu.co.kr/zboard/zboard.php?id=freeboard", Category: "community_ppomppu", Strategy: StrategyPpomppu},
	}
}

// LoadRegistry reads a source registry from a YAML file:
//
//	sources:
//	  - url: https://example.com/feed.xml
//	    category: tech_trends
//	    strategy: rss
func LoadRegistry(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var doc struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if len(doc.Sources) == 0 {
		return nil, fmt.Errorf("registry %s contains no sources", path)
	}
	for _, s := range doc.Sources {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("registry %s: %w", path, err)
		}
	}
	return doc.Sources, nil
}
