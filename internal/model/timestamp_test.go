package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/model"
)

func TestPhotoJSON(t *testing.T) {
	tests := map[string]struct {
		json      string
		exp       model.Photo
		expMillis float64
		expErr    bool
	}{
		"Epoch milliseconds should be decoded.": {
			json: `{"id":"p1","url":"https://picsum.photos/id/201/400/300","timestamp":1697446800000,"description":"Detalhe chumbador"}`,
			exp: model.Photo{
				ID:          "p1",
				URL:         "https://picsum.photos/id/201/400/300",
				Timestamp:   time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC),
				Description: "Detalhe chumbador",
			},
			expMillis: 1697446800000,
		},

		"An RFC3339 timestamp should be decoded.": {
			json: `{"id":"p1","url":"x","timestamp":"2023-10-16T09:00:00Z"}`,
			exp:       model.Photo{ID: "p1", URL: "x", Timestamp: time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC)},
			expMillis: 1697446800000,
		},

		"A missing timestamp should be zero.": {
			json: `{"id":"p1","url":"x"}`,
			exp:  model.Photo{ID: "p1", URL: "x"},
		},

		"A non time timestamp should fail.": {
			json:   `{"id":"p1","url":"x","timestamp":"yesterday"}`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var got model.Photo
			err := json.Unmarshal([]byte(test.json), &got)

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.exp, got)

			// Writing it back keeps the epoch milliseconds format.
			b, err := json.Marshal(got)
			require.NoError(err)
			var raw map[string]any
			require.NoError(json.Unmarshal(b, &raw))
			assert.Equal(test.expMillis, raw["timestamp"])
			assert.Equal("p1", raw["id"])
		})
	}
}

func TestGateJSON(t *testing.T) {
	tests := map[string]struct {
		json    string
		expDate *time.Time
		expErr  bool
	}{
		"A plain day should be decoded at UTC midnight.": {
			json:    `{"status":"Aprovado","notes":"Liberado para carga.","checkedBy":"u1","date":"2023-10-04"}`,
			expDate: ptrTime(time.Date(2023, 10, 4, 0, 0, 0, 0, time.UTC)),
		},

		"An ISO timestamp should be decoded.": {
			json:    `{"status":"Aprovado","notes":"","date":"2023-10-04T15:30:00.000Z"}`,
			expDate: ptrTime(time.Date(2023, 10, 4, 15, 30, 0, 0, time.UTC)),
		},

		"A missing date should be nil.": {
			json: `{"status":"Pendente","notes":""}`,
		},

		"An invalid date should fail.": {
			json:   `{"status":"Aprovado","notes":"","date":"04/10/2023"}`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var got model.Gate
			err := json.Unmarshal([]byte(test.json), &got)

			if test.expErr {
				assert.Error(err)
				return
			}
			if assert.NoError(err) {
				assert.Equal(test.expDate, got.Date)
				assert.NotEmpty(got.Status)
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
