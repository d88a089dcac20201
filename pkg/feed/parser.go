package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/quakewatch/pkg/domain"
)

// parseEntries decodes atom document into entries, keeping document order
func parseEntries(data []byte) ([]domain.Entry, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	res := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entry := domain.Entry{
			ID:      item.GUID,
			Title:   item.Title,
			Content: item.Content,
			Link:    item.Link,
		}
		if entry.Link == "" && len(item.Links) > 0 {
			entry.Link = item.Links[0]
		}
		if entry.Content == "" {
			entry.Content = item.Description
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			entry.Author = item.Authors[0].Name
		}
		if item.UpdatedParsed != nil {
			entry.Updated = *item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			entry.Updated = *item.PublishedParsed
		}
		res = append(res, entry)
	}
	return res, nil
}
