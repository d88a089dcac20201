package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// discordMaxContent is the limit on message content length, in characters
const discordMaxContent = 2000

// Discord posts messages to a Discord webhook
type Discord struct {
	name string
	url  string
	poster
}

// NewDiscord makes discord target for webhook url
func NewDiscord(name, url string, cfg HTTPConfig) *Discord {
	if name == "" {
		name = "discord"
	}
	return &Discord{name: name, url: url, poster: newPoster(cfg)}
}

// Name of the target
func (d *Discord) Name() string { return d.name }

// Send posts text as message content, long text is truncated
func (d *Discord) Send(ctx context.Context, text string) error {
	payload := struct {
		Content string `json:"content"`
	}{Content: truncate(text, discordMaxContent)}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("make discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if _, err := d.do(ctx, req); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
