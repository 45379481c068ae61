package input

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
)

// StdinSource turns typed lines into button presses for benches without
// wired buttons. Each line names one or more labels separated by spaces or
// commas; every named button then reads as pressed exactly once.
type StdinSource struct {
	mu      sync.Mutex
	pending map[combo.Identifier]int
	done    chan struct{}
}

// NewStdinSource starts reading r in the background until EOF
func NewStdinSource(r io.Reader) *StdinSource {
	s := &StdinSource{
		pending: make(map[combo.Identifier]int),
		done:    make(chan struct{}),
	}
	go s.read(r)
	return s
}

func (s *StdinSource) read(r io.Reader) {
	defer close(s.done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ' ' || r == ',' || r == '\t'
		})
		for _, f := range fields {
			label, err := combo.ParseLabel(f)
			if err != nil {
				slog.Warn("Unknown button typed", "input", f)
				continue
			}
			s.Press(label.Identifier())
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Reading stdin failed", "error", err)
	}
}

// Press queues a single press of id
func (s *StdinSource) Press(id combo.Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id]++
}

// IsPressed consumes one queued press of id
func (s *StdinSource) IsPressed(id combo.Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] == 0 {
		return false
	}
	s.pending[id]--
	return true
}

// Done is closed once the reader reaches EOF
func (s *StdinSource) Done() <-chan struct{} {
	return s.done
}

func (s *StdinSource) Close() error {
	return nil
}
