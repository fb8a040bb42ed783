package util

import (
	"net/url"
	"strings"
)

func MakeUrl(parts ...string) string {
	res := ""
	for i, p := range parts {
		if p == "" {
			continue
		}
		if p[len(p)-1:] == "/" {
			res += p[:len(p)-1]
		} else if p[0] != '/' && i > 0 {
			res += "/" + p
		} else {
			res += p
		}
	}
	return res
}

// GetHostname reduces a gateway URL to just its hostname so that health
// entries for "https://gw.example.com/some/path" and "https://gw.example.com"
// land on the same key.
func GetHostname(gateway string) string {
	u, err := url.Parse(gateway)
	if err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}

	// Not parseable as a URL - treat it as a bare host[:port]
	host := gateway
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.Split(host, "/")[0]
	host = strings.Split(host, ":")[0]
	return strings.ToLower(host)
}
