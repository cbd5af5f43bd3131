package auth

import (
	"net/url"
	"strings"
)

// OriginAllowed reports whether a request Origin header matches one of the
// project's configured patterns. Supported pattern shapes:
//
//	example.com             exact host, any scheme/port
//	*.example.com           any direct or nested subdomain
//	https://example.com     scheme-qualified
//	https://example.com:8443  scheme- and port-qualified
//
// An empty pattern list means no restriction.
func OriginAllowed(origin string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	if origin == "" {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	for _, pattern := range patterns {
		if matchOrigin(u, pattern) {
			return true
		}
	}
	return false
}

func matchOrigin(origin *url.URL, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if pattern == "*" {
		return true
	}

	// Scheme/port-qualified patterns compare against the full origin.
	if strings.Contains(pattern, "://") {
		p, err := url.Parse(pattern)
		if err != nil {
			return false
		}
		return p.Scheme == origin.Scheme && hostMatches(origin.Host, p.Host)
	}

	return hostMatches(origin.Host, pattern)
}

// hostMatches compares hosts, honoring a leading "*." wildcard and treating
// a pattern without a port as matching any port.
func hostMatches(originHost, patternHost string) bool {
	oHost, oPort := splitHostPort(originHost)
	pHost, pPort := splitHostPort(patternHost)

	if pPort != "" && pPort != oPort {
		return false
	}

	if rest, ok := strings.CutPrefix(pHost, "*."); ok {
		return oHost == rest || strings.HasSuffix(oHost, "."+rest)
	}
	return strings.EqualFold(oHost, pHost)
}

func splitHostPort(host string) (string, string) {
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i+1:], "]") {
		return host[:i], host[i+1:]
	}
	return host, ""
}
