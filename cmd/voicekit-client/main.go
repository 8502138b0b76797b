// voicekit-client is a terminal poller for a running voicekit server. It
// renders the conversation and status at a fixed cadence and can submit a
// recorded file through the pipeline, playing the synthesized reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicekit/client"
	"voicekit/core"
)

type consoleView struct {
	userRole  string
	agentRole string
}

func (v *consoleView) RenderConversation(lines []string, selected int) {
	fmt.Println("----------------------------------------")
	for i, line := range lines {
		role := v.userRole
		if i%2 == 1 {
			role = v.agentRole
		}
		cursor := "  "
		if i == selected {
			cursor = "> "
		}
		fmt.Printf("%s%s: %s\n", cursor, role, line)
	}
}

func (v *consoleView) RenderStatus(status string) {
	fmt.Printf("[status] %s\n", status)
}

func (v *consoleView) Notify(message string) {
	fmt.Fprintf(os.Stderr, "[alert] %s\n", message)
}

func main() {
	var (
		serverURL string
		interval  time.Duration
		sendPath  string
		mimeType  string
		clearConv bool
	)
	flag.StringVar(&serverURL, "server", "http://localhost:3001", "Base URL of the voicekit server")
	flag.DurationVar(&interval, "interval", 500*time.Millisecond, "Polling interval")
	flag.StringVar(&sendPath, "send", "", "Path of a recorded audio file to submit")
	flag.StringVar(&mimeType, "mime", "audio/wav", "Content type of the submitted recording")
	flag.BoolVar(&clearConv, "clear", false, "Clear the conversation before polling")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := core.GetLogger()
	view := &consoleView{userRole: "You", agentRole: "Jarvis"}
	playback := client.NewPlayback(client.CommandPlayer{}, logger)
	defer playback.Stop()

	sync := client.New(client.Config{
		BaseURL:      serverURL,
		PollInterval: interval,
	}, view, playback, logger)

	if clearConv {
		if err := sync.Clear(ctx); err != nil {
			logger.Fatalf("clear conversation: %v", err)
		}
	}

	if sendPath != "" {
		audio, err := os.ReadFile(sendPath)
		if err != nil {
			logger.Fatalf("read recording: %v", err)
		}
		result, err := sync.ProcessAudio(ctx, audio, mimeType)
		if err != nil {
			logger.Fatalf("process audio: %v", err)
		}
		switch result.Outcome {
		case client.OutcomeNoSpeech:
			logger.Info(result.Message)
		case client.OutcomeText:
			logger.Infof("reply (no audio): %s", result.Reply)
		case client.OutcomeAudio:
			logger.Infof("reply: %s", result.Reply)
		}
	}

	sync.Run(ctx)
}
