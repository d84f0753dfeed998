package redact

import (
	"regexp"
	"strings"
)

var (
	// "Bearer <token>" from proxied OAuth transports.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// GEMINI_API_KEY=..., api_key: ... as echoed by config and .env errors.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|gemini[_-]?api[_-]?key)\b\s*[:=]\s*[^\s"']+`)

	// Generative Language endpoints accept the key as a query parameter; it shows up
	// verbatim in url.Error messages.
	queryKeyRe = regexp.MustCompile(`([?&]key=)[^&\s"']+`)
)

// Secrets masks the Gemini credential wherever it can surface in text we print: the
// "?key=" query parameter of a failed request URL, a GEMINI_API_KEY assignment echoed
// back from .env or config parsing, and bearer tokens. Failure markers written to
// logs and stderr pass through here.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = queryKeyRe.ReplaceAllString(out, "${1}<redacted>")
	return strings.TrimSpace(out)
}
