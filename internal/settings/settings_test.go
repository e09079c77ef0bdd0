package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Majid-Chaudhary/oltp-sample/internal/store/storetest"
)

func TestFromMap(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want Settings
	}{
		{
			name: "all keys",
			raw:  map[string]string{"first_load": "1", "continuous_loading": "1", "batch_size": "5", "pause_seconds": "2.5"},
			want: Settings{FirstLoad: true, ContinuousLoading: true, BatchSize: 5, PauseSeconds: 2.5},
		},
		{
			name: "missing keys are zero",
			raw:  map[string]string{"batch_size": "10"},
			want: Settings{BatchSize: 10},
		},
		{
			name: "unknown keys ignored",
			raw:  map[string]string{"colour": "blue", "first_load": "0"},
			want: Settings{},
		},
		{
			name: "malformed values are zero",
			raw:  map[string]string{"batch_size": "lots", "pause_seconds": "soon", "continuous_loading": "maybe"},
			want: Settings{},
		},
		{
			name: "boolean spellings",
			raw:  map[string]string{"first_load": "true", "continuous_loading": "2"},
			want: Settings{FirstLoad: true, ContinuousLoading: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMap(tt.raw))
		})
	}
}

func TestPause(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Settings{PauseSeconds: 1.5}.Pause())
	assert.Zero(t, Settings{PauseSeconds: -3}.Pause())
	assert.Zero(t, Settings{}.Pause())
}

func TestMapRoundTrip(t *testing.T) {
	s := Settings{FirstLoad: true, BatchSize: 20, PauseSeconds: 0.5}
	assert.Equal(t, s, FromMap(s.Map()))
}

func TestTableProvider(t *testing.T) {
	ctx := context.Background()
	provider := NewTableProvider(storetest.Open(t, "retail", storetest.RetailSchema), "settings")

	s, err := provider.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)

	require.NoError(t, provider.Set(ctx, KeyContinuousLoading, "1"))
	require.NoError(t, provider.Set(ctx, KeyBatchSize, "5"))
	require.NoError(t, provider.Set(ctx, KeyBatchSize, "7"))

	s, err = provider.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{ContinuousLoading: true, BatchSize: 7}, s)
}

func TestFileProvider(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("first_load: 1\nbatch_size: 3\npause_seconds: 0.25\nnote: ignored\n"), 0644))

	provider := NewFileProvider(path)
	s, err := provider.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{FirstLoad: true, BatchSize: 3, PauseSeconds: 0.25}, s)

	require.NoError(t, provider.Set(ctx, KeyContinuousLoading, "1"))
	s, err = provider.Fetch(ctx)
	require.NoError(t, err)
	assert.True(t, s.ContinuousLoading)
	assert.Equal(t, 3, s.BatchSize)
}

func TestFileProviderCreatesMissingFile(t *testing.T) {
	ctx := context.Background()
	provider := NewFileProvider(filepath.Join(t.TempDir(), "new.yaml"))

	_, err := provider.Fetch(ctx)
	require.Error(t, err)

	require.NoError(t, provider.Set(ctx, KeyBatchSize, "9"))
	s, err := provider.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, s.BatchSize)
}

type fakeHash struct {
	data map[string]string
	err  error
}

func (f *fakeHash) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return redis.NewMapStringStringResult(f.data, f.err)
}

func (f *fakeHash) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for i := 0; i+1 < len(values); i += 2 {
		f.data[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), f.err)
}

func TestRedisProvider(t *testing.T) {
	ctx := context.Background()
	hash := &fakeHash{data: map[string]string{"continuous_loading": "1", "batch_size": "5", "pause_seconds": "0"}}
	provider := &RedisProvider{client: hash, key: "oltp:settings"}

	s, err := provider.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{ContinuousLoading: true, BatchSize: 5}, s)

	require.NoError(t, provider.Set(ctx, KeyContinuousLoading, "0"))
	s, err = provider.Fetch(ctx)
	require.NoError(t, err)
	assert.False(t, s.ContinuousLoading)

	hash.err = errors.New("connection refused")
	_, err = provider.Fetch(ctx)
	assert.ErrorContains(t, err, "connection refused")
}
