package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MarshalJSON writes the photo timestamp as epoch milliseconds.
func (p Photo) MarshalJSON() ([]byte, error) {
	type photo Photo
	return json.Marshal(struct {
		photo
		Timestamp int64 `json:"timestamp"`
	}{photo: photo(p), Timestamp: epochMillis(p.Timestamp)})
}

// UnmarshalJSON reads the photo timestamp as epoch milliseconds or as an RFC3339 string.
func (p *Photo) UnmarshalJSON(b []byte) error {
	type photo Photo
	aux := struct {
		*photo
		Timestamp json.RawMessage `json:"timestamp"`
	}{photo: (*photo)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	ts, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("photo %q timestamp: %w", p.ID, err)
	}
	p.Timestamp = ts
	return nil
}

// UnmarshalJSON reads the gate date as a `YYYY-MM-DD` day, an RFC3339 string or epoch milliseconds.
func (g *Gate) UnmarshalJSON(b []byte) error {
	type gate Gate
	aux := struct {
		*gate
		Date json.RawMessage `json:"date"`
	}{gate: (*gate)(g)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	ts, err := parseTimestamp(aux.Date)
	if err != nil {
		return fmt.Errorf("gate date: %w", err)
	}
	g.Date = nil
	if !ts.IsZero() {
		g.Date = &ts
	}
	return nil
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// parseTimestamp accepts null, epoch milliseconds, RFC3339 and `YYYY-MM-DD` values.
// A missing value, null, 0 or "" are the zero time.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, ErrNotValid)
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s: %w", raw, ErrNotValid)
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC(), nil
}
