package domain

import (
	"net/url"
	"strings"
)

// NormalizePath canonicalizes a raw path or URL string into the catalog key
// for a page. The result is lower-case, starts with a single "/", and carries
// no trailing slash except for the root path itself. Full URLs are reduced to
// their path component; a URL that fails to parse falls back to the raw
// trimmed string. The function is total and idempotent.
func NormalizePath(raw string) string {
	p := strings.TrimSpace(raw)

	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
		}
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}

	return strings.ToLower(p)
}
