package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/quakewatch/pkg/domain"
)

// Generator republishes delivered bulletins as RSS 2.0
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed from history records, escalated ones are tagged
func (g *Generator) GenerateRSS(records []domain.Record) (string, error) {
	items := make([]*RSSItem, 0, len(records))
	for _, r := range records {
		items = append(items, g.convertToRSSItem(r))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         "quakewatch - earthquake bulletins",
			Link:          g.baseURL + "/",
			Description:   "Earthquake bulletins delivered by quakewatch",
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

func (g *Generator) convertToRSSItem(r domain.Record) *RSSItem {
	categories := []string{r.Kind}
	if r.Escalated {
		categories = append(categories, "escalated")
	}
	return &RSSItem{
		Title:       r.Title,
		Link:        r.Link,
		GUID:        r.EntryID,
		Description: r.Text,
		PubDate:     r.ReportTime.Format(time.RFC1123Z),
		Categories:  categories,
	}
}
