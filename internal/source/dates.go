package source

import (
	"time"

	dErrors "mandata/pkg/domain-errors"
)

// dateLayouts covers the formats seen across feeds: ISO dates, French
// dd/mm/yyyy exports, and full timestamps.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate coerces a feed date into UTC. Empty input is an explicit nil, not
// an error; an unparseable value is a malformed-row error for the caller to
// count.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unparseable date %q", s)
}
