package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/fixedmem/buffers"
	"github.com/wippyai/fixedmem/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixedmem.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		// shape budget in bytes
		"shape_limit": 8192,
		"window": 3,
		"dynamic": true,
		"preload": [3, 6, 12], // ternary shapes
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Config{
		Preload:    []int{3, 6, 12},
		ShapeLimit: 8192,
		Window:     3,
		Dynamic:    true,
		PoolHeap:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Parse([]byte(`{"pool_heap": false, "shape_limit": 0}`))
	require.NoError(t, err)
	assert.False(t, cfg.PoolHeap)
	assert.Zero(t, cfg.ShapeLimit)
	assert.Equal(t, buffers.DefaultWindow, cfg.Window)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `{"window": }`},
		{"unknown field", `{"windw": 2}`},
		{"wrong type", `{"window": "two"}`},
		{"window too small", `{"window": 1}`},
		{"negative shape limit", `{"shape_limit": -1}`},
		{"preload zero", `{"preload": [0]}`},
		{"preload too large", `{"preload": [65536]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBufferOptions(t *testing.T) {
	cfg := Default()
	cfg.Preload = []int{7, 1024}
	cfg.Dynamic = true

	logger := zap.NewNop()
	opts := cfg.BufferOptions(logger)
	assert.Same(t, logger, opts.Logger)
	assert.Nil(t, opts.Registry)
	assert.Equal(t, []uint16{7, 1024}, opts.Preload)
	assert.True(t, opts.Dynamic)
	assert.Equal(t, buffers.DefaultShapeLimit, opts.ShapeLimit)

	opts.Registry = buffers.NewRegistry()
	m := buffers.NewManager(opts)
	p, err := buffers.PlanFor[byte](m, 7)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), p.Shape.Size())
	assert.Equal(t, buffers.StorageDynamic, p.Storage)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvVar, "/etc/fixedmem.jsonc")
	assert.Equal(t, "/etc/fixedmem.jsonc", Path())
}

func TestFormat(t *testing.T) {
	out, err := Default().Format()
	require.NoError(t, err)
	cfg, err := Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
