package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.jpl.nasa.gov/bdube/framexform/rotrescale"
)

func TestLoadConfigDefaults(t *testing.T) {
	kk := koanf.New(".")
	require.NoError(t, loadConfig(kk, filepath.Join(t.TempDir(), "missing.yml")))
	c := config{}
	require.NoError(t, kk.Unmarshal("", &c))
	assert.Equal(t, defaults, c)
}

func TestLoadConfigUnreadableFile(t *testing.T) {
	// a directory exists but cannot be read as a file
	kk := koanf.New(".")
	assert.Error(t, loadConfig(kk, t.TempDir()))
}

func TestLoadConfigFileOverrides(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "xform-http.yml")
	body := "Addr: \":9000\"\nPipeline:\n  Rotate: cw90\n  Rescale: 4\nSensor:\n  Format: Mono8\n"
	require.NoError(t, os.WriteFile(fn, []byte(body), 0666))

	kk := koanf.New(".")
	require.NoError(t, loadConfig(kk, fn))
	c := config{}
	require.NoError(t, kk.Unmarshal("", &c))
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, "Mono8", c.Sensor.Format)
	assert.Equal(t, uint32(640), c.Sensor.Width, "unset keys keep their defaults")

	p, err := c.Pipeline.toPipeline()
	require.NoError(t, err)
	assert.Equal(t, rotrescale.Pipeline{Rotate: rotrescale.CW90, Rescale: 4}, p)
}

func TestBadPipelineRotation(t *testing.T) {
	_, err := pipeline{Rotate: "upside-down"}.toPipeline()
	assert.Error(t, err)
}
