package factories

import (
	"voicekit/core"
	"voicekit/pipeline"
	openaillm "voicekit/services/openai/llm"
)

// NewResponder builds the reply generation service.
func NewResponder(s Settings, logger *core.Logger) pipeline.Responder {
	return openaillm.NewOpenAILLM(openaillm.Config{
		APIKey: s.OpenAIAPIKey,
		Model:  s.OpenAIModel,
	}, logger)
}
