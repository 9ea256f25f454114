package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buzzmill/internal/fingerprint"
)

type fakeIndex struct {
	existing map[string]bool
	err      error
}

func (f *fakeIndex) ExistsByFingerprint(_ context.Context, fp string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.existing[fp], nil
}

func rssBody(sourceID, n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>test</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b,
			`<item><title>Source %d headline number %d with enough length</title>`+
				`<link>https://example.com/s%d/item%d</link>`+
				`<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>`,
			sourceID, i, sourceID, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func fastConfig() Config {
	return Config{
		MinTitleLen:   10,
		FetchTimeout:  2 * time.Second,
		FetchInterval: time.Millisecond,
	}
}

// newRSSServer serves a distinct RSS feed per path /feed/<n>.
func newRSSServer(t *testing.T, itemsPerFeed int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/feed/%d", &id)
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody(id, itemsPerFeed))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rssSources(srv *httptest.Server, n int) []Source {
	sources := make([]Source, n)
	for i := range sources {
		sources[i] = Source{
			URL:      fmt.Sprintf("%s/feed/%d", srv.URL, i),
			Category: fmt.Sprintf("cat_%d", i),
			Strategy: StrategyRSS,
		}
	}
	return sources
}

func TestFetchLatestTopicsPerSourceQuota(t *testing.T) {
	srv := newRSSServer(t, 10)

	// 12 sources, budget 15: per-source floor is max(2, 15/12) = 2, so the
	// harvest fills the global budget two entries at a time.
	h, err := New(rssSources(srv, 12), &fakeIndex{}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	result := h.FetchLatestTopics(context.Background(), 15)
	assert.Len(t, result.Topics, 15)
	assert.Equal(t, 0, result.FailedSources)

	perSource := map[string]int{}
	for _, topic := range result.Topics {
		perSource[topic.Category]++
		assert.Len(t, topic.Fingerprint, 64)
	}
	for category, count := range perSource {
		assert.LessOrEqual(t, count, 2, "category %s over quota", category)
	}
}

func TestFetchLatestTopicsLargerShare(t *testing.T) {
	srv := newRSSServer(t, 10)

	// 3 sources, budget 15: each source may contribute up to 5.
	h, err := New(rssSources(srv, 3), &fakeIndex{}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	result := h.FetchLatestTopics(context.Background(), 15)
	assert.Len(t, result.Topics, 15)

	perSource := map[string]int{}
	for _, topic := range result.Topics {
		perSource[topic.Category]++
	}
	for _, count := range perSource {
		assert.Equal(t, 5, count)
	}
}

func TestFetchLatestTopicsSkipsKnownFingerprints(t *testing.T) {
	srv := newRSSServer(t, 4)
	sources := rssSources(srv, 1)

	seen := fingerprint.Compute(
		"https://example.com/s0/item0",
		"Source 0 headline number 0 with enough length")
	h, err := New(sources, &fakeIndex{existing: map[string]bool{seen: true}}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	result := h.FetchLatestTopics(context.Background(), 10)
	assert.Equal(t, 1, result.DupSkipped)
	for _, topic := range result.Topics {
		assert.NotEqual(t, seen, topic.Fingerprint)
	}
}

func TestFetchLatestTopicsSourceFailureIsIsolated(t *testing.T) {
	good := newRSSServer(t, 5)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	sources := []Source{
		{URL: good.URL + "/feed/0", Category: "ok_first", Strategy: StrategyRSS},
		{URL: bad.URL, Category: "broken", Strategy: StrategyRSS},
		{URL: good.URL + "/feed/1", Category: "ok_second", Strategy: StrategyRSS},
	}
	h, err := New(sources, &fakeIndex{}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	result := h.FetchLatestTopics(context.Background(), 12)
	assert.Equal(t, 1, result.FailedSources)
	assert.Equal(t, 3, result.TotalSources)

	categories := map[string]bool{}
	for _, topic := range result.Topics {
		categories[topic.Category] = true
	}
	assert.True(t, categories["ok_first"])
	assert.True(t, categories["ok_second"], "sources after a failure must still run")
	assert.False(t, categories["broken"])
}

func TestFetchLatestTopicsIndexErrorPoisonsSource(t *testing.T) {
	srv := newRSSServer(t, 5)
	h, err := New(rssSources(srv, 1), &fakeIndex{err: fmt.Errorf("db locked")}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	result := h.FetchLatestTopics(context.Background(), 10)
	assert.Empty(t, result.Topics)
	assert.Equal(t, 1, result.FailedSources)
}

func TestAcceptableFilters(t *testing.T) {
	h := &Harvester{cfg: fastConfig()}

	tests := []struct {
		name  string
		entry entry
		want  bool
	}{
		{"normal", entry{Title: "A perfectly ordinary headline", Link: "https://x.test/1"}, true},
		{"too short", entry{Title: "Short one", Link: "https://x.test/2"}, false},
		{"sponsored", entry{Title: "Sponsored: amazing new product launch", Link: "https://x.test/3"}, false},
		{"ad prefix", entry{Title: "AD: limited time offer on everything", Link: "https://x.test/4"}, false},
		{"embedded marker", entry{Title: "This story is sponsored by nobody", Link: "https://x.test/5"}, false},
		{"missing link", entry{Title: "A perfectly ordinary headline", Link: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.acceptable(tt.entry))
		})
	}
}

func TestParseClien(t *testing.T) {
	page := `<html><body>
	<div class="list_item symph_row">
	  <div class="list_title"><span class="subject_fixed" title="first">
	    <a href="/service/board/park/1001">Community thread about something fun</a>
	  </span></div>
	</div>
	<div class="list_item symph_row">
	  <div class="list_title"><span class="subject_fixed" title="second">
	    <a href="/service/board/park/1002">Another long discussion thread here</a>
	  </span></div>
	</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)

	h, err := New([]Source{{URL: srv.URL, Category: "c", Strategy: StrategyClien}},
		&fakeIndex{}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	entries, err := h.parseClien(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Community thread about something fun", entries[0].Title)
	assert.Equal(t, "https://www.clien.net/service/board/park/1001", entries[0].Link)
}

func TestParsePpomppuLegacyLayout(t *testing.T) {
	page := `<html><body><table>
	<tr class="list0"><td class="list_vspace"><span class="list_title">
	  <a href="view.php?id=freeboard&no=42">Deal discussion thread with details</a>
	</span></td></tr>
	</table></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)

	h, err := New([]Source{{URL: srv.URL, Category: "p", Strategy: StrategyPpomppu}},
		&fakeIndex{}, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	entries, err := h.parsePpomppu(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://www.ppomppu.co.kr/view.php?id=freeboard&no=42", entries[0].Link)
}

func TestDefaultRegistryValid(t *testing.T) {
	sources := DefaultRegistry()
	require.NotEmpty(t, sources)
	for _, s := range sources {
		assert.NoError(t, s.Validate())
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `sources:
  - url: https://example.com/feed.xml
    category: tech_trends
    strategy: rss
  - url: https://www.clien.net/service/group/community
    category: community_clien
    strategy: html_clien
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	sources, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, StrategyClien, sources[1].Strategy)
}

func TestLoadRegistryRejectsBadStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `sources:
  - url: https://example.com/feed.xml
    category: tech
    strategy: carrier_pigeon
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
