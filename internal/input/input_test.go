package input

import (
	"strings"
	"testing"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
	"github.com/audiolibrelab/tunebuddy/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func TestStdinSource_EachTypedPressReadsOnce(t *testing.T) {
	src := NewStdinSource(strings.NewReader("pop, Piano\nbanjo\nPOP generate\n"))
	<-src.Done()

	assert.True(t, src.IsPressed("pop"))
	assert.True(t, src.IsPressed("pop"))
	assert.False(t, src.IsPressed("pop"))

	assert.True(t, src.IsPressed("piano"))
	assert.False(t, src.IsPressed("piano"))

	assert.True(t, src.IsPressed("generate"))
	assert.False(t, src.IsPressed("stop"))
	require.NoError(t, src.Close())
}

func TestStdinSource_Press(t *testing.T) {
	src := NewStdinSource(strings.NewReader(""))
	<-src.Done()

	src.Press(combo.Stop.Identifier())

	assert.True(t, src.IsPressed("stop"))
	assert.False(t, src.IsPressed("stop"))
}

func TestPressedPolarity(t *testing.T) {
	assert.True(t, pressed(gpio.Low, true))
	assert.False(t, pressed(gpio.High, true))
	assert.True(t, pressed(gpio.High, false))
	assert.False(t, pressed(gpio.Low, false))
}

func TestNewSource_Stdin(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Backend = "STDIN"

	src, err := NewSource(cfg, strings.NewReader("jazz\n"))
	require.NoError(t, err)

	stdin, ok := src.(*StdinSource)
	require.True(t, ok, "expected stdin backend, got %T", src)
	<-stdin.Done()
	assert.True(t, src.IsPressed("jazz"))
}

func TestDetermineBackend(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, BackendTypeGPIO, determineBackend(cfg))

	cfg.Input.Backend = "stdin"
	assert.Equal(t, BackendTypeStdin, determineBackend(cfg))
}
