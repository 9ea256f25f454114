package harvest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fetchDocument GETs a page and parses it into a goquery document. The
// harvester's HTTP client enforces the fetch timeout.
func (h *Harvester) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// parseClien scrapes the Clien community board. Each row is a
// .list_item .subject_fixed element wrapping the post link; hrefs are
// site-relative.
func (h *Harvester) parseClien(ctx context.Context, url string) ([]entry, error) {
	doc, err := h.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	var entries []entry
	doc.Find(".list_item .subject_fixed").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		if link.Length() == 0 {
			return
		}
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		entries = append(entries, entry{
			Title: title,
			Link:  "https://www.clien.net" + href,
		})
	})
	return entries, nil
}

// parsePpomppu scrapes the Ppomppu free board. The site has shipped two list
// layouts; try the newer selector first and fall back to the legacy table.
func (h *Harvester) parsePpomppu(ctx context.Context, url string) ([]entry, error) {
	doc, err := h.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	rows := doc.Find(".common_list .list_vspace a.baseList-title")
	if rows.Length() == 0 {
		rows = doc.Find("tr .list_title a")
	}

	var entries []entry
	rows.Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.ppomppu.co.kr" + ensureLeadingSlash(href)
		}
		entries = append(entries, entry{
			Title: title,
			Link:  href,
		})
	})
	return entries, nil
}

func ensureLeadingSlash(href string) string {
	if strings.HasPrefix(href, "/") {
		return href
	}
	return "/" + href
}
