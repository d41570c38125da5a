package shortener

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxURLLength bounds accepted targets.
const MaxURLLength = 2048

// URL grammar pieces, restricted to RFC 3986 characters. Anything else,
// including raw non-ASCII, must arrive percent-encoded.
const (
	pctEncoded = `%[0-9A-Fa-f]{2}`
	pchar      = `(?:[A-Za-z0-9\-._~!$&'()*+,;=:@]|` + pctEncoded + `)`
	userinfo   = `(?:(?:[A-Za-z0-9\-._~!$&'()*+,;=:]|` + pctEncoded + `)*@)?`
	label      = `[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?`
	hostname   = label + `(?:\.` + label + `)*\.?`
	ipLiteral  = `\[[0-9A-Fa-f:.]+\]`
	port       = `(?::[0-9]*)?`
	path       = `(?:/` + pchar + `*)*`
	query      = `(?:\?(?:` + pchar + `|[/?])*)?`
	fragment   = `(?:#(?:` + pchar + `|[/?])*)?`
)

var absoluteHTTPURL = regexp.MustCompile(
	`\Ahttps?://` + userinfo + `(?:` + hostname + `|` + ipLiteral + `)` + port + path + query + fragment + `\z`,
)

// NormalizeURL prepends http:// when rawURL carries neither an http nor an https scheme.
// The check is a case-sensitive prefix match, nothing else is rewritten.
func NormalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}

	return "http://" + rawURL
}

// ValidateURL returns ErrInvalidURL unless rawURL is a complete absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" || len(rawURL) > MaxURLLength {
		return ErrInvalidURL
	}

	if !absoluteHTTPURL.MatchString(rawURL) {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ErrInvalidURL
	}

	return nil
}
