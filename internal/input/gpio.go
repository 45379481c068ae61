package input

import (
	"fmt"
	"log/slog"

	"github.com/audiolibrelab/tunebuddy/internal/combo"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOSource reads momentary buttons wired to BCM-numbered pins
type GPIOSource struct {
	pins      map[combo.Identifier]gpio.PinIn
	activeLow bool
}

// NewGPIOSource initializes the host drivers and configures every mapped
// pin as an input. Active-low buttons get the internal pull-up, others the
// pull-down.
func NewGPIOSource(pins map[string]int, activeLow bool) (*GPIOSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	pull := gpio.PullDown
	if activeLow {
		pull = gpio.PullUp
	}

	src := &GPIOSource{
		pins:      make(map[combo.Identifier]gpio.PinIn, len(pins)),
		activeLow: activeLow,
	}
	for name, num := range pins {
		pinName := fmt.Sprintf("GPIO%d", num)
		p := gpioreg.ByName(pinName)
		if p == nil {
			return nil, fmt.Errorf("pin %s for '%s' not found", pinName, name)
		}
		if err := p.In(pull, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure %s for '%s': %w", pinName, name, err)
		}
		slog.Debug("Button configured", "button", name, "pin", pinName, "pull", pull)
		src.pins[combo.Identifier(name)] = p
	}
	return src, nil
}

func (s *GPIOSource) IsPressed(id combo.Identifier) bool {
	p, ok := s.pins[id]
	if !ok {
		return false
	}
	return pressed(p.Read(), s.activeLow)
}

// Close leaves the pins configured; periph has nothing to release for inputs
func (s *GPIOSource) Close() error {
	return nil
}

func pressed(level gpio.Level, activeLow bool) bool {
	if activeLow {
		return level == gpio.Low
	}
	return level == gpio.High
}
