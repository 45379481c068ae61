package audio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/audiolibrelab/tunebuddy/internal/config"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClip struct {
	pos, length int
	closed      bool

	// out is the output the clip is streamed to, if any
	out           *fakeOutput
	attachedSeeks int
}

func (c *fakeClip) Stream(samples [][2]float64) (int, bool) {
	if c.pos >= c.length {
		return 0, false
	}
	n := min(len(samples), c.length-c.pos)
	for i := range n {
		samples[i] = [2]float64{0.1, 0.1}
	}
	c.pos += n
	return n, true
}

func (c *fakeClip) Err() error    { return nil }
func (c *fakeClip) Len() int      { return c.length }
func (c *fakeClip) Position() int { return c.pos }
func (c *fakeClip) Close() error  { c.closed = true; return nil }

func (c *fakeClip) Seek(p int) error {
	if c.out != nil && len(c.out.playing) > 0 {
		c.attachedSeeks++
	}
	c.pos = p
	return nil
}

type fakeOutput struct {
	playing []beep.Streamer
	clears  int
}

func (o *fakeOutput) Play(s ...beep.Streamer) { o.playing = append(o.playing, s...) }
func (o *fakeOutput) Clear()                  { o.playing = nil; o.clears++ }

// drain pulls samples the way the speaker goroutine would
func (o *fakeOutput) drain() {
	buf := make([][2]float64, 512)
	for _, s := range o.playing {
		for {
			if _, ok := s.Stream(buf); !ok {
				break
			}
		}
	}
}

func newTestBeepSink(t *testing.T, clipRate beep.SampleRate) (*BeepSink, *fakeOutput, *[]*fakeClip) {
	t.Helper()
	out := &fakeOutput{}
	var clips []*fakeClip
	decode := func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		rc.Close()
		c := &fakeClip{length: 2048, out: out}
		clips = append(clips, c)
		return c, beep.Format{SampleRate: clipRate, NumChannels: 2, Precision: 2}, nil
	}
	return newBeepSink(out, decode, beep.SampleRate(44100)), out, &clips
}

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Calm_Jazz_Piano.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0644))
	return path
}

func TestBeepSink_PlayUntilFinished(t *testing.T) {
	sink, out, _ := newTestBeepSink(t, 44100)

	require.NoError(t, sink.Load(writeClip(t)))
	assert.False(t, sink.IsBusy())

	require.NoError(t, sink.Play())
	assert.True(t, sink.IsBusy())
	require.Len(t, out.playing, 1)

	out.drain()
	assert.False(t, sink.IsBusy())
}

func TestBeepSink_ResamplesOtherRates(t *testing.T) {
	sink, out, _ := newTestBeepSink(t, 22050)

	require.NoError(t, sink.Load(writeClip(t)))
	require.NoError(t, sink.Play())
	assert.True(t, sink.IsBusy())

	out.drain()
	assert.False(t, sink.IsBusy())
}

func TestBeepSink_StopClearsBusy(t *testing.T) {
	sink, out, _ := newTestBeepSink(t, 44100)
	require.NoError(t, sink.Load(writeClip(t)))
	require.NoError(t, sink.Play())

	require.NoError(t, sink.Stop())

	assert.False(t, sink.IsBusy())
	assert.Empty(t, out.playing)
}

func TestBeepSink_StaleCallbackIgnored(t *testing.T) {
	sink, out, _ := newTestBeepSink(t, 44100)
	require.NoError(t, sink.Load(writeClip(t)))
	require.NoError(t, sink.Play())
	first := out.playing[0]

	require.NoError(t, sink.Play())

	buf := make([][2]float64, 4096)
	for {
		if _, ok := first.Stream(buf); !ok {
			break
		}
	}
	assert.True(t, sink.IsBusy(), "finishing a replaced stream must not clear busy")
}

func TestBeepSink_ReplayRewindsDetachedStreamer(t *testing.T) {
	sink, out, clips := newTestBeepSink(t, 44100)
	require.NoError(t, sink.Load(writeClip(t)))

	require.NoError(t, sink.Play())
	require.NoError(t, sink.Play())

	require.Len(t, *clips, 1)
	assert.Zero(t, (*clips)[0].attachedSeeks, "clip rewound while the speaker still held it")
	assert.Len(t, out.playing, 1)
	assert.True(t, sink.IsBusy())
}

func TestBeepSink_PlayWithoutLoad(t *testing.T) {
	sink, _, _ := newTestBeepSink(t, 44100)

	assert.ErrorIs(t, sink.Play(), ErrNothingLoaded)
	assert.False(t, sink.IsBusy())
}

func TestBeepSink_LoadMissingFile(t *testing.T) {
	sink, _, _ := newTestBeepSink(t, 44100)

	err := sink.Load(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBeepSink_LoadReplacesAndCloseReleases(t *testing.T) {
	sink, _, clips := newTestBeepSink(t, 44100)
	path := writeClip(t)

	require.NoError(t, sink.Load(path))
	require.NoError(t, sink.Load(path))
	require.Len(t, *clips, 2)
	assert.True(t, (*clips)[0].closed)

	require.NoError(t, sink.Close())
	assert.True(t, (*clips)[1].closed)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func TestExecSink_BusyWhilePlayerRuns(t *testing.T) {
	sink, err := NewExecSink("sh")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Load(writeScript(t, "sleep 10\n")))
	require.NoError(t, sink.Play())
	assert.True(t, sink.IsBusy())

	require.NoError(t, sink.Stop())
	assert.False(t, sink.IsBusy())
}

func TestExecSink_FinishesOnItsOwn(t *testing.T) {
	sink, err := NewExecSink("sh")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Load(writeScript(t, "exit 0\n")))
	require.NoError(t, sink.Play())

	assert.Eventually(t, func() bool { return !sink.IsBusy() }, 5*time.Second, 10*time.Millisecond)
}

func TestExecSink_Errors(t *testing.T) {
	_, err := NewExecSink("definitely-not-a-player")
	assert.Error(t, err)

	sink, err := NewExecSink("sh")
	require.NoError(t, err)
	assert.ErrorIs(t, sink.Play(), ErrNothingLoaded)
	assert.NoError(t, sink.Stop())
}

func TestPlayerArgs(t *testing.T) {
	assert.Equal(t, []string{"-q", "a.mp3"}, playerArgs("mpg123", "a.mp3"))
	assert.Equal(t, []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "a.mp3"}, playerArgs("ffplay", "a.mp3"))
	assert.Equal(t, []string{"a.mp3"}, playerArgs("other", "a.mp3"))
}

func TestDetermineBackend(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, BackendTypeBeep, determineBackend(cfg))

	cfg.Audio.Backend = "exec"
	assert.Equal(t, BackendTypeExec, determineBackend(cfg))

	cfg.Audio.Backend = "beep"
	assert.Equal(t, BackendTypeBeep, determineBackend(cfg))
}

func TestGetAvailableBackends(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	assert.Equal(t, []BackendType{BackendTypeBeep}, GetAvailableBackends())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mpv"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", dir)
	assert.Equal(t, []BackendType{BackendTypeBeep, BackendTypeExec}, GetAvailableBackends())
}
