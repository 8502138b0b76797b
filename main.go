package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voicekit/artifacts"
	"voicekit/core"
	"voicekit/factories"
	"voicekit/pipeline"
	"voicekit/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := core.GetLogger()

	if err := godotenv.Load(".env.local"); err != nil {
		logger.With(map[string]any{"error": err}).Warn("No .env.local file found or failed to load")
	}
	settings := factories.FromEnv()

	stt, err := factories.NewTranscriber(ctx, settings, logger)
	if err != nil {
		logger.Fatalf("build transcriber: %v", err)
	}
	llm := factories.NewResponder(settings, logger)
	tts := factories.NewSynthesizer(settings, logger)

	convLog, status, err := factories.NewStores(settings, logger)
	if err != nil {
		logger.Fatalf("build stores: %v", err)
	}

	artifactStore, err := artifacts.NewStore(settings.AudioDir, settings.KeepArtifacts, logger)
	if err != nil {
		logger.Fatalf("build artifact store: %v", err)
	}

	hub := server.NewStatusHub(logger)
	broadcast := server.NewBroadcastRegister(status, hub)

	config := pipeline.DefaultConfig()
	config.StageTimeout = settings.StageTimeout
	orch := pipeline.NewOrchestrator(stt, llm, tts, convLog, broadcast, artifactStore, config, logger)

	srv := server.New(server.Config{}, orch, convLog, broadcast, artifactStore, hub, logger)

	httpServer := &http.Server{Addr: settings.Addr, Handler: srv}
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		httpServer.Shutdown(sctx)
	}()

	if err := broadcast.Set(pipeline.StatusReady); err != nil {
		logger.Warnf("set boot status: %v", err)
	}
	logger.Infof("voicekit server listening on %s", settings.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server: %v", err)
	}
	logger.Info("Shutting down...")
}
