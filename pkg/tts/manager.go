package tts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"movie-recap/config"
	"movie-recap/internal/types"
	"movie-recap/log"
	"movie-recap/pkg/elevenlabs"
	"movie-recap/pkg/openai"
)

const (
	ProviderElevenLabs = "elevenlabs"
	ProviderOpenai     = "openai"
)

// CompositeTtsClient routes narration requests to the configured provider.
type CompositeTtsClient struct {
	ElevenLabs types.Ttser
	OpenAI     types.Ttser
	Provider   string
}

// NewCompositeTtsClient builds every provider that has credentials in conf.
func NewCompositeTtsClient(conf config.Config) *CompositeTtsClient {
	c := &CompositeTtsClient{Provider: conf.Tts.Provider}
	proxy := conf.App.ParsedProxy

	if conf.Tts.ElevenLabs.ApiKey != "" {
		c.ElevenLabs = elevenlabs.NewClient(conf.Tts.ElevenLabs.ApiKey, conf.Tts.ElevenLabs.VoiceId, conf.Tts.ElevenLabs.ModelId, proxy)
	}
	if conf.Tts.Openai.ApiKey != "" {
		c.OpenAI = openai.NewClient(conf.Tts.Openai.BaseUrl, conf.Tts.Openai.ApiKey, "", proxy).WithSpeechModel(conf.Tts.Openai.Model)
	}
	return c
}

// Voice returns the voice to request from the active provider.
func Voice(conf config.Config) string {
	if conf.Tts.Provider == ProviderOpenai {
		return conf.Tts.Openai.Voice
	}
	return conf.Tts.ElevenLabs.VoiceId
}

func (c *CompositeTtsClient) Text2Speech(ctx context.Context, text, voice, outputFile string) error {
	var target types.Ttser
	switch c.Provider {
	case ProviderOpenai:
		target = c.OpenAI
	case ProviderElevenLabs, "":
		target = c.ElevenLabs
	default:
		return fmt.Errorf("unsupported tts provider %q", c.Provider)
	}
	if target == nil {
		return fmt.Errorf("tts provider %q has no credentials", c.Provider)
	}

	log.GetLogger().Debug("routing tts", zap.String("provider", c.Provider), zap.String("voice", voice))
	return target.Text2Speech(ctx, text, voice, outputFile)
}
