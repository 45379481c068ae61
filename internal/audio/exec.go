package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// players in order of preference; mpg123 is the lightest on a Pi
var players = []string{"mpg123", "mpv", "ffplay", "cvlc"}

// ExecSink plays clips through an external command-line player. The sink is
// busy while the player process runs.
type ExecSink struct {
	player string

	mu   sync.Mutex
	path string
	cmd  *exec.Cmd
	done chan struct{}
}

// NewExecSink uses player if set, otherwise the first known player on PATH
func NewExecSink(player string) (*ExecSink, error) {
	if player == "" {
		found, err := findAudioPlayer()
		if err != nil {
			return nil, err
		}
		player = found
	} else if _, err := exec.LookPath(player); err != nil {
		return nil, fmt.Errorf("player %s not found: %w", player, err)
	}
	slog.Debug("Using external player", "player", player)
	return &ExecSink{player: player}, nil
}

func (e *ExecSink) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.path = path
	return nil
}

func (e *ExecSink) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.path == "" {
		return ErrNothingLoaded
	}
	e.stopLocked()

	cmd := exec.Command(e.player, playerArgs(e.player, e.path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.player, err)
	}

	done := make(chan struct{})
	e.cmd, e.done = cmd, done
	go func() {
		err := cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			slog.Warn("Player exited abnormally", "player", e.player, "error", err)
		}
		close(done)
	}()
	return nil
}

func (e *ExecSink) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

func (e *ExecSink) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *ExecSink) Close() error {
	return e.Stop()
}

// stopLocked kills a running player and waits for it to exit
func (e *ExecSink) stopLocked() {
	if e.cmd == nil {
		return
	}
	select {
	case <-e.done:
	default:
		if err := e.cmd.Process.Kill(); err != nil {
			slog.Debug("Kill player failed", "error", err)
		}
		<-e.done
	}
	e.cmd, e.done = nil, nil
}

func playerArgs(player, path string) []string {
	switch player {
	case "mpg123":
		return []string{"-q", path}
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "cvlc", "vlc":
		return []string{"--play-and-exit", "--quiet", path}
	default:
		return []string{path}
	}
}

func findAudioPlayer() (string, error) {
	for _, player := range players {
		if _, err := exec.LookPath(player); err == nil {
			return player, nil
		}
	}
	return "", fmt.Errorf("no audio player found (tried: %s)", strings.Join(players, ", "))
}
