package service

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/audiolibrelab/tunebuddy/internal/combo"

	"github.com/google/uuid"
)

// Outcome describes what a single press did
type Outcome string

const (
	OutcomeSelected  Outcome = "SELECTED"
	OutcomeRejected  Outcome = "REJECTED"
	OutcomeIgnored   Outcome = "IGNORED"
	OutcomeStopped   Outcome = "STOPPED"
	OutcomeGenerated Outcome = "GENERATED"
	OutcomeUnknown   Outcome = "UNKNOWN"
)

// Buttons reports which buttons are held down
type Buttons interface {
	IsPressed(id combo.Identifier) bool
}

// Sink plays one loaded clip at a time
type Sink interface {
	Load(path string) error
	Play() error
	IsBusy() bool
	Stop() error
}

// Dispatch records one playback attempt
type Dispatch struct {
	ID      string
	Combo   []combo.Label
	Random  []combo.Label
	Clip    string
	Path    string
	Found   bool
	Started bool
	Error   string
	Time    time.Time
}

// Options configures a TuneBuddyService
type Options struct {
	ClipsDirectory string
	Debounce       time.Duration
	PollInterval   time.Duration

	// Rand drives the random fill; nil seeds one randomly
	Rand   *rand.Rand
	Logger *slog.Logger
}

// TuneBuddyService owns the combo and decides what each button press does.
// It is driven from a single goroutine and does no locking of its own.
type TuneBuddyService struct {
	combo    *combo.Combo
	input    Buttons
	sink     Sink
	clipsDir string
	debounce time.Duration
	idle     time.Duration
	log      *slog.Logger

	lastDispatch *Dispatch
}

// New creates a service reading buttons from src and playing through sink
func New(src Buttons, sink Sink, opts Options) *TuneBuddyService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TuneBuddyService{
		combo:    combo.New(opts.Rand),
		input:    src,
		sink:     sink,
		clipsDir: opts.ClipsDirectory,
		debounce: opts.Debounce,
		idle:     opts.PollInterval,
		log:      logger,
	}
}

// HandlePress applies the dispatch rules to one detected press: Stop always
// runs, everything else is ignored while audio plays, Generate plays, and
// any other button is a category selection.
func (s *TuneBuddyService) HandlePress(id combo.Identifier) Outcome {
	label, ok := combo.LabelFor(id)
	if !ok {
		s.log.Error("Unknown button identifier", "identifier", id)
		return OutcomeUnknown
	}

	if label == combo.Stop {
		s.Stop()
		return OutcomeStopped
	}

	if s.sink.IsBusy() {
		s.log.Info("Audio is still playing. Press 'Stop' to stop current playback.", "ignored", label)
		return OutcomeIgnored
	}

	if label == combo.Generate {
		s.Generate()
		return OutcomeGenerated
	}

	if err := s.Select(label); err != nil {
		return OutcomeRejected
	}
	return OutcomeSelected
}

// Select adds a category label to the combo, logging a rejection when its
// category is already taken
func (s *TuneBuddyService) Select(label combo.Label) error {
	if err := s.combo.Accept(label); err != nil {
		if errors.Is(err, combo.ErrCategoryTaken) {
			s.log.Info("Ignored duplicate or over-selection", "label", label, "combo", s.combo.String())
		} else {
			s.log.Warn("Ignored non-selectable button", "label", label)
		}
		return err
	}
	cat, _ := label.Category()
	s.log.Info("Selected", "category", cat, "label", label, "combo", s.combo.String())
	return nil
}

// Stop halts playback if any and always clears the combo. It reports
// whether audio was playing.
func (s *TuneBuddyService) Stop() bool {
	wasPlaying := s.sink.IsBusy()
	if wasPlaying {
		if err := s.sink.Stop(); err != nil {
			s.log.Error("Stopping audio failed", "error", err)
		} else {
			s.log.Info("Audio stopped.")
		}
	} else {
		s.log.Info("No audio was playing.")
	}
	s.combo.Clear()
	s.log.Info("Combo cleared.")
	return wasPlaying
}

// Generate completes the combo with random picks, dispatches playback and
// clears the combo whether or not the clip exists. It does nothing while
// audio is playing.
func (s *TuneBuddyService) Generate() *Dispatch {
	if s.sink.IsBusy() {
		s.log.Info("Audio is still playing. Press 'Stop' to stop current playback.", "ignored", combo.Generate)
		return nil
	}

	if s.combo.Len() == 0 {
		s.log.Info("No buttons selected. Auto-generating combo.")
	}
	added := s.combo.EnsureFull()
	for _, l := range added {
		cat, _ := l.Category()
		s.log.Info("Randomly added", "category", cat, "label", l)
	}
	s.log.Info("Final combo", "combo", s.combo.String())

	d := s.dispatch(added)
	s.combo.Clear()
	return d
}

// dispatch resolves the clip for the current combo and starts it if the
// file exists. Failures are logged and recorded, never returned.
func (s *TuneBuddyService) dispatch(random []combo.Label) *Dispatch {
	ref := s.combo.ClipReference()
	d := &Dispatch{
		ID:     uuid.NewString(),
		Combo:  s.combo.Labels(),
		Random: random,
		Clip:   ref,
		Path:   filepath.Join(s.clipsDir, ref),
		Time:   time.Now(),
	}
	s.lastDispatch = d
	log := s.log.With("dispatch", d.ID)
	log.Info("Filename to play", "clip", d.Clip)

	if _, err := os.Stat(d.Path); err != nil {
		log.Warn("File not found", "path", d.Path)
		d.Error = "file not found"
		return d
	}
	d.Found = true

	if err := s.sink.Load(d.Path); err != nil {
		log.Error("Loading clip failed", "path", d.Path, "error", err)
		d.Error = err.Error()
		return d
	}
	if err := s.sink.Play(); err != nil {
		log.Error("Starting playback failed", "path", d.Path, "error", err)
		d.Error = err.Error()
		return d
	}
	d.Started = true
	log.Info("Playing", "path", d.Path)
	return d
}

// Combo returns the current selection
func (s *TuneBuddyService) Combo() []combo.Label {
	return s.combo.Labels()
}

// LastDispatch returns the most recent playback attempt, or nil
func (s *TuneBuddyService) LastDispatch() *Dispatch {
	return s.lastDispatch
}

// IsPlaying re-queries the sink
func (s *TuneBuddyService) IsPlaying() bool {
	return s.sink.IsBusy()
}
