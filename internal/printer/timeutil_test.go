package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obrahub/obra/internal/printer"
)

func TestFormatTimestamp(t *testing.T) {
	sp := time.FixedZone("BRT", -3*3600)

	tests := map[string]struct {
		time     time.Time
		expected string
	}{
		"UTC time": {
			time:     time.Date(2023, 10, 16, 9, 30, 15, 0, time.UTC),
			expected: "2023-10-16 09:30 UTC",
		},
		"Local time should be converted to UTC": {
			time:     time.Date(2023, 10, 16, 22, 0, 0, 0, sp),
			expected: "2023-10-17 01:00 UTC",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.FormatTimestamp(test.time))
		})
	}
}
