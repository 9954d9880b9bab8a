package frontier

import (
	"fmt"
	"net/url"
	"strings"
)

// Canonicalize normalizes a URL into the form used for visited-set identity
// and scope checks: lowercased scheme and host, default port stripped,
// fragment removed, and an empty path normalized to "/". Only http and
// https URLs are accepted; anything else (mailto, javascript, relative
// links that survived resolution) is rejected.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}

	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") || (u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}
