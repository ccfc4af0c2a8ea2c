package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

func normalizeOrigins(origins []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		normalized, ok := normalizeOrigin(origin)
		if !ok {
			log.Warn().Str("origin", origin).Msg("Ignoring invalid origin in configuration")
			continue
		}
		allowed[normalized] = struct{}{}
	}
	return allowed
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// checkOrigin gates the websocket upgrade. An empty allow-list lets everything
// through; requests without an Origin header (non-browser clients) always
// pass.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if ok {
		if _, exists := h.allowed[normalized]; exists {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("Blocked websocket connection from disallowed origin")
	return false
}
