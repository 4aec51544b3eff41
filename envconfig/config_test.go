package envconfig

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jakobhartmann/tensat/logutil"
)

func TestBackend(t *testing.T) {
	cases := map[string]string{
		"":       "ref",
		"ref":    "ref",
		"  ref ": "ref",
		`"mock"`: "mock",
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("TENSAT_BACKEND", k)
			require.Equal(t, v, Backend())
		})
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"true":  slog.LevelDebug,
		"1":     slog.LevelDebug,
		"2":     logutil.LevelTrace,
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("TENSAT_DEBUG", k)
			require.Equal(t, v, LogLevel())
		})
	}
}

func TestStrictMerge(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"false", true, false},
		{"0", true, false},
		{"1", false, true},
		{"garbage", false, true},
	}

	for _, tt := range cases {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TENSAT_STRICT_MERGE", tt.value)
			require.Equal(t, tt.want, StrictMerge(tt.def))
		})
	}
}

func TestSeed(t *testing.T) {
	t.Setenv("TENSAT_SEED", "")
	require.Equal(t, uint64(0), Seed())

	t.Setenv("TENSAT_SEED", "42")
	require.Equal(t, uint64(42), Seed())

	t.Setenv("TENSAT_SEED", "-1")
	require.Equal(t, uint64(0), Seed())
}

func TestCostCache(t *testing.T) {
	t.Setenv("HOME", "/home/tensat")
	t.Setenv("TENSAT_COST_CACHE", "~/cache")
	require.Equal(t, "/home/tensat/cache", CostCache())

	t.Setenv("TENSAT_COST_CACHE", "/var/cache/tensat")
	require.Equal(t, "/var/cache/tensat", CostCache())
}

func TestValues(t *testing.T) {
	t.Setenv("TENSAT_BACKEND", "")
	t.Setenv("TENSAT_STRICT_MERGE", "")
	t.Setenv("TENSAT_WEIGHT_DTYPE", "f16")

	vals := Values()
	got := map[string]string{
		"TENSAT_BACKEND":      vals["TENSAT_BACKEND"],
		"TENSAT_STRICT_MERGE": vals["TENSAT_STRICT_MERGE"],
		"TENSAT_WEIGHT_DTYPE": vals["TENSAT_WEIGHT_DTYPE"],
	}
	want := map[string]string{
		"TENSAT_BACKEND":      "ref",
		"TENSAT_STRICT_MERGE": "true",
		"TENSAT_WEIGHT_DTYPE": "f16",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, AsMap(), 8)
}
