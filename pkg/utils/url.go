package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// Used as a fixed-length redis key for the import guard.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(strings.TrimSpace(relative))
	if err != nil {
		return "", err
	}
	if base == nil {
		return relURL.String(), nil
	}
	return base.ResolveReference(relURL).String(), nil
}

// ParseAbsoluteURL parses raw and accepts only absolute http(s) URLs with a host.
func ParseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errUnsupportedScheme}
	}
	return u, nil
}

type urlError string

func (e urlError) Error() string { return string(e) }

const (
	errNotAbsolute       = urlError("url is not absolute")
	errUnsupportedScheme = urlError("only http and https are supported")
)
