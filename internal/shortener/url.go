package shortener

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw is present and is an absolute http(s) URL.
// It returns the trimmed URL, which is what gets stored.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &InputError{Msg: "URL is required"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &InputError{Msg: "URL is malformed"}
	}

	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Hostname() == "" {
		return "", &InputError{Msg: "URL must be an absolute http or https URL"}
	}

	return trimmed, nil
}
