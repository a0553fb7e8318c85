package table

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp syntaxes, tried in order.  Times without a zone are UTC.
var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

var errBadTime = errors.New("Bad timestamp")

// Parse a timestamp as RFC 3339, as "YYYY-MM-DD hh:mm:ss[.fff][zone]", or as integer Unix seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errBadTime
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadTime
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
