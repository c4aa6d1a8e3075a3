package sochx

import (
	"net/url"
	"strings"
)

// ParseCookieHeader turns a raw Cookie header into a name → value map. It is
// total: malformed entries are skipped, values that fail percent-decoding are
// kept raw, and an empty header yields an empty map. The realtime handshake
// uses it because the upgrade request never goes through the regular cookie
// jar.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	if header == "" {
		return cookies
	}

	for _, part := range strings.Split(header, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"`)
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}

		cookies[name] = value
	}

	return cookies
}
