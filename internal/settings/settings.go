package settings

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/cast"
)

const (
	KeyFirstLoad         = "first_load"
	KeyContinuousLoading = "continuous_loading"
	KeyBatchSize         = "batch_size"
	KeyPauseSeconds      = "pause_seconds"
)

// Keys lists the settings the loop driver understands.
var Keys = []string{KeyFirstLoad, KeyContinuousLoading, KeyBatchSize, KeyPauseSeconds}

// Settings is one snapshot of the settings store.
type Settings struct {
	FirstLoad         bool
	ContinuousLoading bool
	BatchSize         int
	PauseSeconds      float64
}

type Provider interface {
	Fetch(ctx context.Context) (Settings, error)
}

type Writer interface {
	Set(ctx context.Context, key, value string) error
}

// FromMap converts raw key/value rows. Unknown keys are ignored, missing
// or malformed values read as zero.
func FromMap(raw map[string]string) Settings {
	var s Settings
	if v, ok := raw[KeyFirstLoad]; ok {
		s.FirstLoad = toBool(v)
	}
	if v, ok := raw[KeyContinuousLoading]; ok {
		s.ContinuousLoading = toBool(v)
	}
	if v, ok := raw[KeyBatchSize]; ok {
		s.BatchSize = cast.ToInt(v)
	}
	if v, ok := raw[KeyPauseSeconds]; ok {
		s.PauseSeconds = cast.ToFloat64(v)
	}
	return s
}

// toBool accepts 0/1 as well as the usual boolean spellings. Any non-zero
// number is true.
func toBool(v string) bool {
	if b, err := cast.ToBoolE(v); err == nil {
		return b
	}
	return cast.ToFloat64(v) != 0
}

// Map renders s back into store rows.
func (s Settings) Map() map[string]string {
	return map[string]string{
		KeyFirstLoad:         boolString(s.FirstLoad),
		KeyContinuousLoading: boolString(s.ContinuousLoading),
		KeyBatchSize:         cast.ToString(s.BatchSize),
		KeyPauseSeconds:      cast.ToString(s.PauseSeconds),
	}
}

func (s Settings) Pause() time.Duration {
	if s.PauseSeconds <= 0 {
		return 0
	}
	return time.Duration(s.PauseSeconds * float64(time.Second))
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// SortedKeys returns the keys of raw in order.
func SortedKeys(raw map[string]string) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Static always returns the same snapshot.
type Static Settings

func (s Static) Fetch(ctx context.Context) (Settings, error) {
	return Settings(s), nil
}
