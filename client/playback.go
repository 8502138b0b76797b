package client

import (
	"context"
	"errors"
	"os/exec"
	"sync"

	"voicekit/core"
)

// Player starts playback of a single audio resource and blocks until it
// finishes or the context is cancelled. Implementations buffer as needed
// before audible playback begins.
type Player interface {
	Play(ctx context.Context, url string) error
}

// Playback serializes audio playback: starting a new resource stops
// whatever is currently playing, so at most one plays at a time.
type Playback struct {
	logger *core.Logger
	player Player

	mu      sync.Mutex
	cancel  context.CancelFunc
	current string
	gen     uint64 // identifies the active playback; URLs can repeat
}

func NewPlayback(player Player, logger *core.Logger) *Playback {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Playback{logger: logger, player: player}
}

// Play stops any current playback and starts the new resource. Playback
// errors are logged and clear the current reference; there is no retry.
func (p *Playback) Play(url string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.current = url
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go func() {
		err := p.player.Play(ctx, url)

		p.mu.Lock()
		if p.gen == gen {
			p.current = ""
			p.cancel = nil
		}
		p.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warnf("playback: %s: %v", url, err)
		}
	}()
}

// Stop halts any active playback.
func (p *Playback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.current = ""
}

// Current returns the URL currently playing, or "".
func (p *Playback) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// CommandPlayer shells out to a local audio player binary. The default is
// ffplay, which handles its own network buffering before playback starts.
type CommandPlayer struct {
	Binary string
	Args   []string
}

func (c CommandPlayer) Play(ctx context.Context, url string) error {
	binary := c.Binary
	args := c.Args
	if binary == "" {
		binary = "ffplay"
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	}
	cmd := exec.CommandContext(ctx, binary, append(args, url)...)
	return cmd.Run()
}
