package audio

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

// Resampling quality used when a clip's rate differs from the speaker's
const resampleQuality = 4

// output is the part of the speaker package the sink drives
type output interface {
	Play(s ...beep.Streamer)
	Clear()
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear()                  { speaker.Clear() }

type decoder func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// BeepSink decodes mp3 clips and plays them on the default sound device
type BeepSink struct {
	mu         sync.Mutex
	out        output
	decode     decoder
	sampleRate beep.SampleRate
	streamer   beep.StreamSeekCloser
	format     beep.Format
	path       string

	// busy is cleared from the speaker goroutine, so it is not under mu
	busy       atomic.Bool
	generation atomic.Uint64
}

// NewBeepSink initializes the speaker at sampleRate with a 100ms buffer
func NewBeepSink(sampleRate int) (*BeepSink, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return newBeepSink(speakerOutput{}, mp3.Decode, sr), nil
}

func newBeepSink(out output, decode decoder, sr beep.SampleRate) *BeepSink {
	return &BeepSink{out: out, decode: decode, sampleRate: sr}
}

// Load decodes the clip at path, replacing (and stopping) any previously
// loaded clip
func (b *BeepSink) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open clip: %w", err)
	}
	streamer, format, err := b.decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer != nil {
		b.generation.Add(1)
		b.out.Clear()
		b.busy.Store(false)
		b.streamer.Close()
	}
	b.streamer, b.format, b.path = streamer, format, path
	slog.Debug("Clip loaded", "path", path, "sample_rate", format.SampleRate, "channels", format.NumChannels)
	return nil
}

// Play starts the loaded clip from the beginning
func (b *BeepSink) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return ErrNothingLoaded
	}

	// The speaker must let go of the streamer before it is rewound
	gen := b.generation.Add(1)
	b.out.Clear()
	b.busy.Store(false)
	if err := b.streamer.Seek(0); err != nil {
		return fmt.Errorf("rewind %s: %w", b.path, err)
	}

	var stream beep.Streamer = b.streamer
	if b.format.SampleRate != b.sampleRate {
		stream = beep.Resample(resampleQuality, b.format.SampleRate, b.sampleRate, stream)
	}

	b.busy.Store(true)
	b.out.Play(beep.Seq(stream, beep.Callback(func() {
		// A newer Play or a Stop owns the busy flag now
		if b.generation.Load() == gen {
			b.busy.Store(false)
		}
	})))
	return nil
}

// IsBusy reports whether a clip is still playing
func (b *BeepSink) IsBusy() bool {
	return b.busy.Load()
}

// Stop halts playback; the loaded clip stays loaded
func (b *BeepSink) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation.Add(1)
	b.out.Clear()
	b.busy.Store(false)
	return nil
}

// Close stops playback and releases the loaded clip
func (b *BeepSink) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation.Add(1)
	b.out.Clear()
	b.busy.Store(false)
	if b.streamer == nil {
		return nil
	}
	err := b.streamer.Close()
	b.streamer = nil
	return err
}
