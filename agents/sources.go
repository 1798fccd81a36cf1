package agents

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ttpunch/blog/log"
)

var sourceClient = &http.Client{Timeout: 10 * time.Second}

// enrichSources fetches each source URL and annotates it with the page title.
// Purely best effort: unreachable or non-HTML sources pass through untouched,
// and a model that emitted plain citations instead of URLs is left alone.
func enrichSources(ctx context.Context, sources []string) []string {
	enriched := make([]string, 0, len(sources))
	for _, source := range sources {
		url := strings.TrimSpace(source)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			enriched = append(enriched, source)
			continue
		}

		title := fetchPageTitle(ctx, url)
		if title == "" {
			enriched = append(enriched, source)
			continue
		}
		enriched = append(enriched, url+" ("+title+")")
	}
	return enriched
}

func fetchPageTitle(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := sourceClient.Do(req)
	if err != nil {
		log.Debug("source fetch failed for %s: %v", url, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}
