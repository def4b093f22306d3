package printer

import "time"

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
