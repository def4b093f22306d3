package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage/sqlite"
)

var testNow = time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC)

func newKV(t *testing.T, path string) *sqlite.KV {
	t.Helper()
	kv, err := sqlite.NewKV(context.Background(), sqlite.KVConfig{
		DBPath: path,
		Clock:  clock.Fixed{Time: testNow},
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestNewKVRequiresPath(t *testing.T) {
	_, err := sqlite.NewKV(context.Background(), sqlite.KVConfig{})
	assert.Error(t, err)
}

func TestKV(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, kv *sqlite.KV)
	}{
		"Loading a missing key should return not found": {
			actions: func(ctx context.Context, t *testing.T, kv *sqlite.KV) {
				_, err := kv.Load(ctx, "app_tasks")
				assert.True(t, errors.Is(err, model.ErrNotFound))

				_, err = kv.UpdatedAt(ctx, "app_tasks")
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Saved documents should be loaded": {
			actions: func(ctx context.Context, t *testing.T, kv *sqlite.KV) {
				require.NoError(t, kv.Save(ctx, "app_tasks", []byte(`[{"id":"t1"}]`)))

				got, err := kv.Load(ctx, "app_tasks")
				require.NoError(t, err)
				assert.JSONEq(t, `[{"id":"t1"}]`, string(got))

				at, err := kv.UpdatedAt(ctx, "app_tasks")
				require.NoError(t, err)
				assert.Equal(t, testNow, at)
			},
		},

		"Saving an existing key should replace the document": {
			actions: func(ctx context.Context, t *testing.T, kv *sqlite.KV) {
				require.NoError(t, kv.Save(ctx, "history_t1", []byte(`[1]`)))
				require.NoError(t, kv.Save(ctx, "history_t1", []byte(`[2,1]`)))

				got, err := kv.Load(ctx, "history_t1")
				require.NoError(t, err)
				assert.Equal(t, `[2,1]`, string(got))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t, filepath.Join(t.TempDir(), "test.db"))
			test.actions(context.Background(), t, kv)
		})
	}
}

func TestKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "obra.db")
	ctx := context.Background()

	kv1, err := sqlite.NewKV(ctx, sqlite.KVConfig{DBPath: path})
	require.NoError(t, err)
	require.NoError(t, kv1.Save(ctx, "app_tasks", []byte(`[]`)))
	require.NoError(t, kv1.Close())

	kv2 := newKV(t, path)
	got, err := kv2.Load(ctx, "app_tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}
