// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package hostname normalizes host strings for tenant lookups. Website
// values are stored exactly as provided upstream, so both the inbound Host
// header and the stored value pass through Normalize before comparison.
package hostname

import "strings"

// Normalize cleans a host string for comparison: scheme prefix, leading
// "www.", port, trailing slash and path are stripped, and the result is
// lower-cased.
func Normalize(host string) string {
	h := strings.TrimSpace(strings.ToLower(host))

	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}

	// Anything after the first slash is a path, not part of the host.
	if i := strings.IndexByte(h, '/'); i >= 0 {
		h = h[:i]
	}

	// Strip a port, but leave IPv6 literals alone.
	if !strings.HasPrefix(h, "[") {
		if i := strings.LastIndexByte(h, ':'); i >= 0 {
			h = h[:i]
		}
	}

	h = strings.TrimPrefix(h, "www.")
	h = strings.TrimSuffix(h, ".")

	return h
}

// Registrable collapses a multi-label host to its last two labels, a
// registrable-domain approximation that tolerates arbitrary subdomains
// pointing at the same tenant. Hosts with fewer than three labels are
// returned unchanged.
func Registrable(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// Matches reports whether a normalized request host belongs to a
// normalized stored website domain: either the registrable domains are
// equal, or the host is a subdomain of the stored value. A plain substring
// check would let "rock.com" claim "prerock.com"; this does not.
func Matches(host, stored string) bool {
	if host == "" || stored == "" {
		return false
	}
	if host == stored {
		return true
	}
	if Registrable(host) == stored {
		return true
	}
	return strings.HasSuffix(host, "."+stored)
}
