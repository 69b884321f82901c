package client

import (
	"net/http"
	"strings"
)

const bodySnippetLimit = 200

// readableError derives a short diagnostic from an error response body.
// Proxy-layer failures often come back as HTML pages; those are stripped to
// their title rather than surfaced as raw markup.
func readableError(body string, status int) string {
	trimmed := strings.TrimSpace(body)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		if title := htmlTitle(trimmed); title != "" {
			return "Server error: " + title
		}
		return "Server error (HTML error page received)"
	}

	if trimmed != "" {
		if len(trimmed) > bodySnippetLimit {
			return trimmed[:bodySnippetLimit] + "..."
		}
		return trimmed
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown error"
}

// htmlTitle extracts the <title> text from an HTML page, or "".
func htmlTitle(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<title>")
	if start < 0 {
		return ""
	}
	start += len("<title>")
	end := strings.Index(lower[start:], "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(html[start : start+end])
}
