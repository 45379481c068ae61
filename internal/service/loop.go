package service

import (
	"context"
	"time"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
)

// Run polls every button in scan order until ctx is cancelled. After each
// processed press it waits the debounce interval before sampling the next
// button of the same scan, so a button still held after the wait is
// processed again.
func (s *TuneBuddyService) Run(ctx context.Context) error {
	ids := combo.Identifiers()
	s.log.Info("Listening for button presses...", "debounce", s.debounce)

	defer func() {
		if s.sink.IsBusy() {
			if err := s.sink.Stop(); err != nil {
				s.log.Warn("Stopping audio on exit failed", "error", err)
			}
		}
		s.combo.Clear()
		s.log.Info("Exiting...")
	}()

	for {
		for _, id := range ids {
			if ctx.Err() != nil {
				return nil
			}
			if !s.input.IsPressed(id) {
				continue
			}
			outcome := s.HandlePress(id)
			s.log.Debug("Press handled", "button", id, "outcome", outcome)
			if !sleep(ctx, s.debounce) {
				return nil
			}
		}
		if s.idle > 0 && !sleep(ctx, s.idle) {
			return nil
		}
	}
}

// sleep waits d or until ctx is done, reporting whether the full wait elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
