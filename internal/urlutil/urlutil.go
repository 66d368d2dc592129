package urlutil

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

const (
	PlatformLinkedIn   = "linkedin"
	PlatformIndeed     = "indeed"
	PlatformGreenhouse = "greenhouse"
	PlatformLever      = "lever"
	PlatformWorkday    = "workday"
	PlatformOther      = "other"
)

var platformHosts = []struct {
	suffix   string
	platform string
}{
	{"linkedin.com", PlatformLinkedIn},
	{"indeed.com", PlatformIndeed},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workdayjobs.com", PlatformWorkday},
	{"myworkdaysite.com", PlatformWorkday},
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`)

// InvalidURLError is returned when a job URL is not an absolute http(s) URL.
type InvalidURLError struct {
	Raw    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return "invalid job url " + quote(e.Raw) + ": " + e.Reason
}

func (e *InvalidURLError) UserMessage() string {
	return "Please enter a valid job posting URL starting with http:// or https://."
}

// ValidateJobURL parses raw with the WHATWG URL parser and accepts it only
// when the scheme is http or https and a host is present. The serialized URL
// is returned.
func ValidateJobURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &InvalidURLError{Raw: raw, Reason: "empty"}
	}
	u, err := whatwg.Parse(trimmed)
	if err != nil {
		return "", &InvalidURLError{Raw: raw, Reason: err.Error()}
	}
	switch u.Protocol() {
	case "http:", "https:":
	default:
		return "", &InvalidURLError{Raw: raw, Reason: "unsupported scheme " + quote(u.Protocol())}
	}
	if u.Hostname() == "" {
		return "", &InvalidURLError{Raw: raw, Reason: "missing host"}
	}
	return u.Href(false), nil
}

// DetectPlatform maps a host to the job board it belongs to.
func DetectPlatform(host string) string {
	host = normalizeHost(host)
	for _, p := range platformHosts {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.platform
		}
	}
	return PlatformOther
}

// WorkdayTenant returns the tenant slug of a Workday host
// (acme.wd5.myworkdayjobs.com -> acme).
func WorkdayTenant(host string) string {
	if DetectPlatform(host) != PlatformWorkday {
		return ""
	}
	labels := strings.Split(normalizeHost(host), ".")
	if len(labels) < 3 {
		return ""
	}
	return labels[0]
}

func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

// ExtractURLs returns up to limit distinct http(s) URLs found in text, in
// order of appearance.
func ExtractURLs(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:!?)]}")
		if _, err := ValidateJobURL(match); err != nil {
			continue
		}
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		out = append(out, match)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Normalize produces a canonical form used as a cache key: lower-case host
// without www, cleaned path, no fragment and no tracking parameters.
func Normalize(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Fragment = ""
	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	return clean
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "ref" || lk == "source" {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := url.Values{}
	for _, k := range keys {
		normalized[k] = values[k]
	}
	return normalized.Encode()
}

func quote(s string) string {
	return `"` + s + `"`
}
