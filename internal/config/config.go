// Package config loads the tunables that govern VM resource limits and
// garbage-collection heuristics, from environment variables with an
// optional YAML file overlay, so an embedder can adjust them without
// recompiling.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/lumen-lang/lumen/lang/object"
	"github.com/lumen-lang/lumen/lang/vm"
)

// Config holds every tunable the VM and its heap accept. Zero values are
// replaced by the same defaults the VM and Heap packages use internally,
// so an empty Config is always valid.
type Config struct {
	// MinHeapSize is the GC threshold floor, in bytes.
	MinHeapSize int64 `env:"LUMEN_MIN_HEAP_SIZE" yaml:"minHeapSize"`
	// GCGrowthFactor multiplies bytesAllocated to compute the next
	// collection threshold.
	GCGrowthFactor int64 `env:"LUMEN_GC_GROWTH_FACTOR" yaml:"gcGrowthFactor"`

	// MaxStackSlots bounds the VM's operand/local stack.
	MaxStackSlots int `env:"LUMEN_MAX_STACK_SLOTS" yaml:"maxStackSlots"`
	// MaxFrames bounds nested call depth.
	MaxFrames int `env:"LUMEN_MAX_FRAMES" yaml:"maxFrames"`
}

// Load reads Config from the environment, then, if path is non-empty,
// overlays values from the YAML file at path (file values win over
// env vars already set, matching the "explicit file beats ambient env"
// convention used for config loading elsewhere in the ecosystem).
func Load(path string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment config: %w", err)
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// NewHeap returns a Heap honoring this Config's GC tunables.
func (c Config) NewHeap() *object.Heap {
	min := c.MinHeapSize
	if min <= 0 {
		min = object.MinHeapSize
	}
	growth := c.GCGrowthFactor
	if growth <= 0 {
		growth = object.GCGrowthFactor
	}
	return object.NewHeapWithThresholds(min, growth)
}

// VMOptions returns the vm.Option values needed to apply this Config's
// stack/frame limits to a new VM. Callers combine these with any other
// options (e.g. vm.WithStdio) before calling vm.New.
func (c Config) VMOptions() []vm.Option {
	var opts []vm.Option
	if c.MaxStackSlots > 0 {
		opts = append(opts, vm.WithMaxStackSlots(c.MaxStackSlots))
	}
	if c.MaxFrames > 0 {
		opts = append(opts, vm.WithMaxFrames(c.MaxFrames))
	}
	return opts
}
