package audio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/audiolibrelab/tunebuddy/internal/config"
)

// ErrNothingLoaded is returned by Play before a clip has been loaded
var ErrNothingLoaded = errors.New("no clip loaded")

// Sink plays one clip at a time. Callers check the clip exists before Load.
type Sink interface {
	Load(path string) error
	Play() error
	IsBusy() bool
	Stop() error
	Close() error
}

// BackendType represents the type of audio backend
type BackendType string

const (
	BackendTypeBeep BackendType = "beep"
	BackendTypeExec BackendType = "exec"
	BackendTypeAuto BackendType = "auto"
)

// NewSink creates a sink using the backend selected by configuration
func NewSink(cfg *config.Config) (Sink, error) {
	switch determineBackend(cfg) {
	case BackendTypeExec:
		sink, err := NewExecSink(cfg.Audio.Player)
		if err != nil {
			return nil, fmt.Errorf("external player unavailable: %w", err)
		}
		return sink, nil
	default:
		sink, err := NewBeepSink(cfg.Audio.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("speaker unavailable: %w", err)
		}
		return sink, nil
	}
}

// determineBackend determines which backend to use based on configuration
func determineBackend(cfg *config.Config) BackendType {
	switch strings.ToLower(cfg.Audio.Backend) {
	case "exec":
		return BackendTypeExec
	case "beep", "auto":
		return BackendTypeBeep
	}
	return BackendTypeBeep
}

// GetAvailableBackends returns the backends this build can use
func GetAvailableBackends() []BackendType {
	backends := []BackendType{BackendTypeBeep}
	if _, err := findAudioPlayer(); err == nil {
		backends = append(backends, BackendTypeExec)
	}
	return backends
}
