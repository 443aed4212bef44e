package fetcher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Birgy1002/rezept-pwa/internal/repository"
	"github.com/Birgy1002/rezept-pwa/pkg/utils"
)

// HostAllowlist is the set of hostnames a fetcher may contact.
// An empty list means any host is fetchable (open-proxy mode).
type HostAllowlist map[string]struct{}

// NewHostAllowlist builds an allow-list from hostnames; matching is exact and case-insensitive.
func NewHostAllowlist(hosts []string) HostAllowlist {
	allow := make(HostAllowlist, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allow[h] = struct{}{}
		}
	}
	return allow
}

// Allows reports whether host may be fetched.
func (a HostAllowlist) Allows(host string) bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a[strings.ToLower(host)]
	return ok
}

// Hosts returns the allow-listed hostnames.
func (a HostAllowlist) Hosts() []string {
	hosts := make([]string, 0, len(a))
	for h := range a {
		hosts = append(hosts, h)
	}
	return hosts
}

// CheckTarget validates rawURL and applies the allow-list. It performs no I/O.
func CheckTarget(rawURL string, allow HostAllowlist) (*url.URL, error) {
	target, err := utils.ParseAbsoluteURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidURL, err)
	}
	if !allow.Allows(target.Hostname()) {
		return nil, fmt.Errorf("%w: %s", repository.ErrForbiddenHost, target.Hostname())
	}
	return target, nil
}
