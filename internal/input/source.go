package input

import (
	"fmt"
	"io"
	"strings"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
	"github.com/audiolibrelab/tunebuddy/internal/config"
)

// Source reports whether each button is currently held down. It performs no
// debouncing or edge detection of its own.
type Source interface {
	IsPressed(id combo.Identifier) bool
	Close() error
}

// BackendType represents the type of input backend
type BackendType string

const (
	BackendTypeGPIO  BackendType = "gpio"
	BackendTypeStdin BackendType = "stdin"
)

// NewSource opens the input backend selected by the configuration. stdin is
// only read by the stdin backend.
func NewSource(cfg *config.Config, stdin io.Reader) (Source, error) {
	switch determineBackend(cfg) {
	case BackendTypeStdin:
		return NewStdinSource(stdin), nil
	default:
		src, err := NewGPIOSource(cfg.Input.Pins, cfg.IsActiveLow())
		if err != nil {
			return nil, fmt.Errorf("failed to open GPIO buttons: %w", err)
		}
		return src, nil
	}
}

func determineBackend(cfg *config.Config) BackendType {
	switch strings.ToLower(cfg.Input.Backend) {
	case "stdin":
		return BackendTypeStdin
	default:
		return BackendTypeGPIO
	}
}
