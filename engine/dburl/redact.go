package dburl

import "regexp"

var (
	userinfoPasswordPattern = regexp.MustCompile(`(://[^:/?#@]*:)[^/?#]*@`)
	queryPasswordPattern    = regexp.MustCompile(`(?i)((?:^|[?&\s])password=)[^&\s]*`)
)

// Redact masks passwords in a connection string so it can be logged. The
// userinfo password runs to the last "@" before the host, as net/url parses it.
func Redact(raw string) string {
	out := userinfoPasswordPattern.ReplaceAllString(raw, "${1}***@")
	return queryPasswordPattern.ReplaceAllString(out, "${1}***")
}
