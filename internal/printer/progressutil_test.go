package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	tests := map[string]struct {
		percent int
		width   int
		exp     string
	}{
		"zero percent": {
			percent: 0,
			width:   10,
			exp:     "[----------]",
		},
		"half": {
			percent: 50,
			width:   20,
			exp:     "[##########----------]",
		},
		"full": {
			percent: 100,
			width:   4,
			exp:     "[####]",
		},
		"partial cells should round down": {
			percent: 67,
			width:   10,
			exp:     "[######----]",
		},
		"out of range percent should be clamped": {
			percent: 150,
			width:   4,
			exp:     "[####]",
		},
		"negative percent should be clamped": {
			percent: -5,
			width:   4,
			exp:     "[----]",
		},
		"no width should render nothing": {
			percent: 50,
			width:   0,
			exp:     "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, ProgressBar(test.percent, test.width))
		})
	}
}
