package config_test

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/config"
)

func TestLoadDefaultsWhenNothingSet(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Zero(t, cfg.MaxFrames)
	require.Zero(t, cfg.MaxStackSlots)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LUMEN_MAX_FRAMES", "128")
	t.Setenv("LUMEN_MAX_STACK_SLOTS", "4096")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 128, cfg.MaxFrames)
	require.Equal(t, 4096, cfg.MaxStackSlots)
}

func TestLoadFromYAMLFileOverlaysEnvironment(t *testing.T) {
	t.Setenv("LUMEN_MAX_FRAMES", "16")

	f, err := os.CreateTemp(t.TempDir(), "lumen-config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("maxFrames: 32\nmaxStackSlots: 8192\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := config.Load(f.Name())
	require.NoError(t, err)
	require.Equal(t, 32, cfg.MaxFrames)
	require.Equal(t, 8192, cfg.MaxStackSlots)
}

func TestNewHeapHonorsConfig(t *testing.T) {
	cfg := config.Config{MinHeapSize: 2048, GCGrowthFactor: 3, MaxFrames: 8}
	heap := cfg.NewHeap()
	require.NotNil(t, heap)

	// A few KiB of strings cross the configured 2048-byte threshold, far
	// below the 1 MiB default, so a collection must have run.
	for i := 0; i < 100; i++ {
		heap.InternString("s" + strconv.Itoa(i))
	}
	require.Positive(t, heap.Collections())
}

func TestVMOptionsReflectOnlySetFields(t *testing.T) {
	require.Empty(t, config.Config{}.VMOptions())
	require.Len(t, config.Config{MaxFrames: 8}.VMOptions(), 1)
	require.Len(t, config.Config{MaxFrames: 8, MaxStackSlots: 100}.VMOptions(), 2)
}
