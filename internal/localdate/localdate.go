// Package localdate resolves the calendar day a request should be
// bookkept under. The product is used across time zones, so "today" must
// match the user's perceived day, not the server's instant.
//
// Policy: client-hinted local date with a fixed-offset fallback. The client
// hint comes from the X-Local-Date header, then the local_date cookie, both
// formatted YYYY-MM-DD; a malformed hint is treated as absent. With no hint
// the current date in a fixed UTC-6 reference offset is used. "Today" is
// never computed database-side; the resolved date is always passed down as a
// parameter, so exactly one policy governs streak boundaries.
package localdate

import (
	"net/http"
	"strings"
	"time"
)

// HeaderName is the request header carrying the client's local date.
const HeaderName = "X-Local-Date"

// CookieName is the cookie carrying the client's local date.
const CookieName = "local_date"

// Layout is the wire format for local dates.
const Layout = "2006-01-02"

// referenceZone is the fallback offset for clients that send no hint
// (first visit, non-browser clients). UTC-6.
var referenceZone = time.FixedZone("UTC-6", -6*60*60)

// Resolve determines "today" for the given request. It never fails: it
// falls through header, cookie, and finally the server-side default.
func Resolve(r *http.Request) time.Time {
	if d, ok := parse(r.Header.Get(HeaderName)); ok {
		return d
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if d, ok := parse(c.Value); ok {
			return d
		}
	}
	return Today()
}

// Today returns the current date in the fixed reference offset.
func Today() time.Time {
	return Truncate(time.Now().In(referenceZone))
}

// Truncate strips the time-of-day portion, leaving a date at midnight UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a date in the YYYY-MM-DD wire format.
func Format(t time.Time) string {
	return t.Format(Layout)
}

func parse(val string) (time.Time, bool) {
	d, err := time.Parse(Layout, strings.TrimSpace(val))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
