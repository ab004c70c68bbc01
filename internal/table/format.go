package table

import (
	"fmt"
	"time"
)

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr",
	"May", "Jun", "Jul", "Aug",
	"Sep", "Oct", "Nov", "Dec",
}

// ShortFormat renders t as "D Mon YYYY" in loc, e.g. "4 Jan 2023".
// A nil loc means UTC. The zero time renders as "".
func ShortFormat(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}
