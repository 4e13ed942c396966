package galleria

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// RewriteHost moves a signed URL onto a CDN host. Only the scheme and
// authority change; the path and query string are copied byte for byte so
// the signature stays valid for the origin the CDN fronts.
//
// cdnHost may be a bare host ("cdn.example.com", "cdn.example.com:8443")
// or an absolute URL with an empty path ("https://cdn.example.com"). A bare
// host keeps the scheme of the signed URL.
func RewriteHost(signedURL, cdnHost string) (string, error) {
	if cdnHost == "" {
		return signedURL, nil
	}

	scheme, host, err := parseCDNHost(cdnHost)
	if err != nil {
		return "", fmt.Errorf("rewrite host: %w", err)
	}

	sep := strings.Index(signedURL, "://")
	if sep <= 0 {
		return "", fmt.Errorf("rewrite host: signed url is not absolute: %q", signedURL)
	}

	origScheme := signedURL[:sep]
	rest := signedURL[sep+3:]

	tail := ""
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		tail = rest[i:]
	}

	if scheme == "" {
		scheme = origScheme
	}

	return scheme + "://" + host + tail, nil
}

func parseCDNHost(cdnHost string) (scheme, host string, err error) {
	if !strings.Contains(cdnHost, "://") {
		if strings.ContainsAny(cdnHost, "/?#@ ") {
			return "", "", fmt.Errorf("invalid cdn host: %q", cdnHost)
		}
		return "", cdnHost, nil
	}

	u, err := url.Parse(cdnHost)
	if err != nil {
		return "", "", fmt.Errorf("invalid cdn host: %w", err)
	}
	if u.Host == "" {
		return "", "", errors.New("invalid cdn host: missing host")
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", "", fmt.Errorf("invalid cdn host: %q must not carry a path, query or userinfo", cdnHost)
	}
	return u.Scheme, u.Host, nil
}
