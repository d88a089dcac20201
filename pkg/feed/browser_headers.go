package feed

import "net/http"

// addFeedHeaders sets accept headers for feed fetching
func addFeedHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")
}
