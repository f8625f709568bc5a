// Package server checks the Origin of incoming chat sockets against the
// ALLOWED_ORIGINS list, normalizing scheme and host case.
package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

func normalizeOrigins(origins []string) ([]string, bool) {
	if len(origins) == 0 {
		return nil, false
	}

	normalized := make([]string, 0, len(origins))
	allowAll := false

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}

		if trimmed == "*" {
			allowAll = true
			continue
		}

		normalizedOrigin, ok := normalizeOrigin(trimmed)
		if !ok {
			slog.Warn("Ignoring invalid entry in ALLOWED_ORIGINS", "origin", origin)
			continue
		}

		normalized = append(normalized, normalizedOrigin)
	}

	return normalized, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	normalized := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)
	return normalized, true
}

// originVerdict decides whether a chat socket may be opened from the
// request's Origin. The reason is empty when the origin is allowed.
func originVerdict(r *http.Request) (bool, string) {
	originHeader := r.Header.Get("Origin")
	if originHeader == "" {
		return false, "missing origin"
	}

	normalizedOrigin, ok := normalizeOrigin(originHeader)
	if !ok {
		return false, "malformed origin"
	}

	configMu.RLock()
	defer configMu.RUnlock()

	if allowAllOrigins {
		return true, ""
	}

	if _, exists := allowedOrigins[normalizedOrigin]; !exists {
		return false, "origin not in ALLOWED_ORIGINS"
	}
	return true, ""
}

// originChecker returns the CheckOrigin hook of the room chat upgrader.
func originChecker(log *slog.Logger) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		allowed, reason := originVerdict(r)
		if allowed {
			return true
		}

		log.Warn("Refused room chat connection",
			"origin", r.Header.Get("Origin"),
			"reason", reason,
			"addr", r.RemoteAddr)
		return false
	}
}
