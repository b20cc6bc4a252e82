// Package redact masks credentials embedded in callback URLs before they
// reach a log line. Downstream callback URLs carry their authorization as a
// query parameter, so the whole query string is treated as secret.
package redact

import "net/url"

const mask = "REDACTED"

// URL returns a loggable form of a callback URL with every query parameter
// value replaced by a fixed mask. Scheme, host, and path are preserved so
// operators can still tell targets apart. Invalid URLs are fully masked
// rather than partially leaked.
func URL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return mask
	}

	q := u.Query()
	for key := range q {
		q.Set(key, mask)
	}
	u.RawQuery = q.Encode()

	// Fragments never carry routing information for a callback URL.
	if u.Fragment != "" {
		u.Fragment = mask
	}

	if u.User != nil {
		u.User = url.User(mask)
	}

	return u.String()
}
