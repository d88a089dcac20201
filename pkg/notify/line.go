package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LINENotifyURL is the LINE Notify api endpoint
const LINENotifyURL = "https://notify-api.line.me/api/notify"

// LINE posts messages to LINE Notify with an access token
type LINE struct {
	name  string
	url   string
	token string
	poster
}

// NewLINE makes LINE Notify target. Empty endpoint means LINENotifyURL.
func NewLINE(name, endpoint, token string, cfg HTTPConfig) *LINE {
	if name == "" {
		name = "line"
	}
	if endpoint == "" {
		endpoint = LINENotifyURL
	}
	return &LINE{name: name, url: endpoint, token: token, poster: newPoster(cfg)}
}

// Name of the target
func (l *LINE) Name() string { return l.name }

// Send posts text as form field "message"
func (l *LINE) Send(ctx context.Context, text string) error {
	form := url.Values{"message": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("make line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+l.token)

	if _, err := l.do(ctx, req); err != nil {
		// line reports failure reason as {"status":401,"message":"Invalid access token"}
		var se *StatusError
		if errors.As(err, &se) {
			var resp struct {
				Message string `json:"message"`
			}
			if jerr := json.Unmarshal([]byte(se.Body), &resp); jerr == nil && resp.Message != "" {
				return fmt.Errorf("line notify: %s: %w", resp.Message, err)
			}
		}
		return fmt.Errorf("line notify: %w", err)
	}
	return nil
}
