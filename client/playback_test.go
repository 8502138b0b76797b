package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingPlayer blocks each Play until its context is cancelled or the
// release channel closes, recording what was played.
type recordingPlayer struct {
	mu      sync.Mutex
	urls    []string
	release chan struct{}
}

func (p *recordingPlayer) Play(ctx context.Context, url string) error {
	p.mu.Lock()
	p.urls = append(p.urls, url)
	release := p.release
	p.mu.Unlock()

	if release == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-release:
		return nil
	}
}

func (p *recordingPlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.urls)
}

func (p *recordingPlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.urls))
	copy(out, p.urls)
	return out
}

func TestPlaybackSingleSlot(t *testing.T) {
	player := &recordingPlayer{release: make(chan struct{})}
	pb := NewPlayback(player, nil)

	pb.Play("http://server/audio/response_1.wav")
	require.Eventually(t, func() bool { return player.playCount() == 1 },
		time.Second, 10*time.Millisecond)
	require.Equal(t, "http://server/audio/response_1.wav", pb.Current())

	// Starting a second clip cancels the first.
	pb.Play("http://server/audio/response_2.wav")
	require.Eventually(t, func() bool { return player.playCount() == 2 },
		time.Second, 10*time.Millisecond)
	require.Equal(t, "http://server/audio/response_2.wav", pb.Current())

	close(player.release)
	require.Eventually(t, func() bool { return pb.Current() == "" },
		time.Second, 10*time.Millisecond)

	require.Equal(t, []string{
		"http://server/audio/response_1.wav",
		"http://server/audio/response_2.wav",
	}, player.played())
}

func TestPlaybackReplaySameURL(t *testing.T) {
	player := &recordingPlayer{release: make(chan struct{})}
	pb := NewPlayback(player, nil)

	url := "http://server/audio/response_1.wav"
	pb.Play(url)
	require.Eventually(t, func() bool { return player.playCount() == 1 },
		time.Second, 10*time.Millisecond)

	// Replaying the same URL cancels the first playback; its cleanup must
	// not clear the slot now owned by the second.
	pb.Play(url)
	require.Eventually(t, func() bool { return player.playCount() == 2 },
		time.Second, 10*time.Millisecond)
	require.Never(t, func() bool { return pb.Current() == "" },
		200*time.Millisecond, 20*time.Millisecond)
	require.Equal(t, url, pb.Current())

	close(player.release)
	require.Eventually(t, func() bool { return pb.Current() == "" },
		time.Second, 10*time.Millisecond)
}

func TestPlaybackStop(t *testing.T) {
	player := &recordingPlayer{release: make(chan struct{})}
	pb := NewPlayback(player, nil)

	pb.Play("http://server/audio/response_1.wav")
	require.Eventually(t, func() bool { return player.playCount() == 1 },
		time.Second, 10*time.Millisecond)

	pb.Stop()
	require.Empty(t, pb.Current())
}

func TestPlaybackClearsCurrentWhenFinished(t *testing.T) {
	player := &recordingPlayer{} // returns immediately
	pb := NewPlayback(player, nil)

	pb.Play("http://server/audio/response_1.wav")
	require.Eventually(t, func() bool { return pb.Current() == "" },
		time.Second, 10*time.Millisecond)
}
