// Package fetcher downloads RSS/Atom feeds and turns their items into cards.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ampere/internal/model"
)

const maxSubtitle = 300

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	now     func() time.Time
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

// Fetch downloads and parses a feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Ampere/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// SourceCards fetches src and converts its items.
func (f *Fetcher) SourceCards(ctx context.Context, src model.Source) ([]model.Card, error) {
	feed, err := f.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	return f.Cards(feed, src), nil
}

// Cards converts feed items into cards stamped with the source metadata.
func (f *Fetcher) Cards(feed *gofeed.Feed, src model.Source) []model.Card {
	if feed == nil {
		return nil
	}
	now := f.now()
	cards := make([]model.Card, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		c := model.Card{
			ID:            ItemGUID(item),
			Title:         strings.TrimSpace(item.Title),
			Subtitle:      truncate(strings.TrimSpace(item.Description), maxSubtitle),
			PlatformID:    src.PlatformID,
			PlatformLabel: src.PlatformLabel,
			League:        src.League,
			Genre:         src.Genre,
			URL:           item.Link,
			ImageURL:      imageURL(item),
		}
		if c.Genre == "" {
			for _, cat := range item.Categories {
				if !isLive(cat) && strings.TrimSpace(cat) != "" {
					c.Genre = strings.TrimSpace(cat)
					break
				}
			}
		}
		if item.PublishedParsed != nil {
			at := item.PublishedParsed.UTC()
			c.PublishedAt = &at
		}
		switch {
		case hasLiveCategory(item):
			c.Badge = model.BadgeLive
		case c.PublishedAt != nil && c.PublishedAt.After(now):
			c.Badge = model.BadgeUpcoming
		}
		cards = append(cards, c)
	}
	return cards
}

// ItemGUID returns the GUID for a feed item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

func hasLiveCategory(item *gofeed.Item) bool {
	for _, cat := range item.Categories {
		if isLive(cat) {
			return true
		}
	}
	return false
}

func isLive(cat string) bool {
	return strings.EqualFold(strings.TrimSpace(cat), "live")
}

func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
