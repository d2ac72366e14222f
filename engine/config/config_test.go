package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, buffer.DefaultInstanceLayout, c.Renderer.InstanceLayout())
	assert.Equal(t, 4, c.Renderer.SampleCount())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[window]
title = "grid"
width = 640

[renderer]
multisampling = false
instance_stride = 80
instance_capacity = 256

[shaders]
dir = "shaders"
watch = true
debounce = "250ms"

[log]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, "grid", c.Window.Title)
	assert.Equal(t, 640, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, 0, c.Renderer.SampleCount())
	assert.Equal(t, buffer.InstanceLayout{Stride: 80, WritePassIndex: true}, c.Renderer.InstanceLayout())
	assert.Equal(t, 256, c.Renderer.InstanceCapacity)
	assert.Equal(t, Duration(250*time.Millisecond), c.Shaders.Debounce)
	assert.True(t, c.Shaders.Watch)
	assert.Equal(t, "debug", c.LoggerOptions().Level)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[renderer]\ninstancing = true\nshadows = true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("[shaders]\ndebounce = \"soon\"\n"))
	assert.Error(t, err)
}

func TestValidateJoinsEveryFailure(t *testing.T) {
	c := Default()
	c.Window.Width = 0
	c.Renderer.Samples = 3
	c.Renderer.InstanceStride = 60
	c.Renderer.InstanceCapacity = 0
	c.Shaders.Watch = true
	c.Log.Level = "loud"

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, buffer.ErrInvalidStride)
	for _, field := range []string{"window size", "renderer.samples", "renderer.instance_stride", "renderer.instance_capacity", "shaders.watch", "log.level"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	c := Default()
	c.Window.Title = "written"
	c.Log.File = "logs/oxy.log"
	data, err := c.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "instance_capacity = 1024")

	path := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
