package audio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalPlayer rings the terminal bell and prints the cue.
type TerminalPlayer struct {
	mu       sync.Mutex
	out      io.Writer
	bellOnly bool
	unlocked bool
}

func NewTerminalPlayer(out io.Writer) *TerminalPlayer {
	return &TerminalPlayer{out: out}
}

// NewBellPlayer only rings the bell, for output shared with a full-screen UI.
func NewBellPlayer(out io.Writer) *TerminalPlayer {
	return &TerminalPlayer{out: out, bellOnly: true}
}

func (p *TerminalPlayer) Unlock() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return errors.New("no terminal output")
	}
	p.unlocked = true
	return nil
}

func (p *TerminalPlayer) Play(tone Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.unlocked {
		return errors.New("terminal audio is locked")
	}
	if p.bellOnly {
		_, err := io.WriteString(p.out, "\a")
		return err
	}

	hz := make([]string, 0, len(tone.Hertz))
	for _, value := range tone.Hertz {
		hz = append(hz, fmt.Sprintf("%.0f", value))
	}
	_, err := fmt.Fprintf(p.out, "\a♪ %s (%s %sHz)\n", tone.SoundID, tone.Waveform, strings.Join(hz, "→"))
	return err
}
