package capture

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrAlreadyPlaying is returned when Start is called during playback.
var ErrAlreadyPlaying = errors.New("playback already running")

// Player plays a reference file through an external command such as
// afplay or ffplay.
type Player struct {
	command string
	args    []string

	mu      sync.Mutex
	current *playback
}

type playback struct {
	process *os.Process
	stderr  bytes.Buffer
	done    chan struct{}
	err     error // valid once done is closed
}

// NewPlayer creates a player. args are placed before the file path.
func NewPlayer(command string, args ...string) *Player {
	return &Player{command: command, args: args}
}

// Start begins playing path in the background.
func (p *Player) Start(path string) error {
	if p.command == "" {
		return errors.New("no playback command configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("playback file: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.current.finished() {
		return ErrAlreadyPlaying
	}

	pb := &playback{done: make(chan struct{})}
	args := append(append([]string(nil), p.args...), path)
	cmd := exec.Command(p.command, args...)
	cmd.Stderr = &pb.stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.command, err)
	}
	pb.process = cmd.Process
	go func() {
		pb.err = cmd.Wait()
		close(pb.done)
	}()

	p.current = pb
	slog.Debug("playback started", "component", "player", "command", p.command, "file", path)
	return nil
}

func (pb *playback) finished() bool {
	select {
	case <-pb.done:
		return true
	default:
		return false
	}
}

// Playing reports whether a playback process is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && !p.current.finished()
}

// Stop interrupts playback, killing the process if it does not exit in
// time. Stopping an idle player is a no-op.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb := p.current
	if pb == nil {
		return nil
	}
	p.current = nil

	if !pb.finished() {
		_ = pb.process.Signal(os.Interrupt)
		select {
		case <-pb.done:
		case <-time.After(killGrace):
			_ = pb.process.Kill()
			<-pb.done
		}
	}

	err := normalizeStopErr(pb.err)
	if err != nil && pb.stderr.Len() > 0 {
		err = fmt.Errorf("%w: %s", err, trimSpace(pb.stderr.String()))
	}
	slog.Debug("playback stopped", "component", "player")
	return err
}
