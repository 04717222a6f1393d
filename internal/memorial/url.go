package memorial

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChaseHampton/graver/internal/page"
)

var (
	bareID   = regexp.MustCompile(`^[0-9]+$`)
	legacyID = regexp.MustCompile(`GRid=([0-9]+)$`)
)

// CanonicalURL builds {base}/memorial/{id}.
func CanonicalURL(base string, id int64) string {
	return fmt.Sprintf("%s/memorial/%d", strings.TrimRight(base, "/"), id)
}

// NormalizeURL turns one input line into a memorial URL. A bare id or an old
// fg.cgi?GRid= link is rewritten to the canonical form; anything else is
// returned unchanged. id is -1 when the line carries no memorial id.
func NormalizeURL(line, base string) (id int64, rawURL string) {
	line = strings.TrimSpace(line)
	if bareID.MatchString(line) {
		id, _ = strconv.ParseInt(line, 10, 64)
		return id, CanonicalURL(base, id)
	}
	if m := legacyID.FindStringSubmatch(line); m != nil {
		id, _ = strconv.ParseInt(m[1], 10, 64)
		return id, CanonicalURL(base, id)
	}
	if id, ok := page.PathID(line); ok {
		return id, line
	}
	return -1, line
}

// IsMemorialURL reports whether rawURL looks like something the memorial
// parser can fetch.
func IsMemorialURL(rawURL string) bool {
	if !strings.Contains(rawURL, "/memorial/") && !strings.Contains(rawURL, "GRid=") {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "file", "http", "https":
	default:
		return false
	}
	return u.Path != ""
}
