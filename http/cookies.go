package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Cookie is one entry of a cookie export file.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// LoadCookies reads a JSON list of cookies, as exported by browser
// extensions. Path defaults to "/".
func LoadCookies(path string) ([]*Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}

	var cookies []*Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookies %s: %w", path, err)
	}
	for i, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			return nil, fmt.Errorf("cookie %d in %s: name and domain required", i, path)
		}
		if c.Path == "" {
			c.Path = "/"
		}
	}
	return cookies, nil
}

func setCookies(jar http.CookieJar, cookies []*Cookie) {
	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		u := &url.URL{Scheme: "https", Host: host, Path: c.Path}
		jar.SetCookies(u, []*http.Cookie{{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		}})
	}
}
