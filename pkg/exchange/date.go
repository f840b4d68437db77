package exchange

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the display layout used by every tabular format.
const DateLayout = "2006-01-02"

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateLayout,
}

// FormatDate renders t as YYYY-MM-DD in t's own location. The zero time is a
// missing date and renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. An empty
// string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
