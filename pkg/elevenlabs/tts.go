// Package elevenlabs implements types.Ttser against the ElevenLabs REST API.
package elevenlabs

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
	"movie-recap/pkg/util"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceId = "JBFqnCBsd6RMkjVDRZzb"
	DefaultModelId = "eleven_multilingual_v2"
	OutputFormat   = "mp3_44100_128"

	connectTimeout = 30 * time.Second
	requestTimeout = 300 * time.Second
)

type Client struct {
	ApiKey  string
	VoiceId string
	ModelId string
	http    *resty.Client
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelId string `json:"model_id"`
}

func NewClient(apiKey, voiceId, modelId string, proxy *url.URL) *Client {
	if voiceId == "" {
		voiceId = DefaultVoiceId
	}
	if modelId == "" {
		modelId = DefaultModelId
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		ApiKey:  apiKey,
		VoiceId: voiceId,
		ModelId: modelId,
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTransport(transport).
			SetTimeout(requestTimeout),
	}
}

// WithBaseURL points the client at another host.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.http.SetBaseURL(baseURL)
	return c
}

// Text2Speech synthesizes text with voice (the configured voice when empty)
// and writes the mp3 body to outputFile.
func (c *Client) Text2Speech(ctx context.Context, text, voice, outputFile string) error {
	if voice == "" {
		voice = c.VoiceId
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("xi-api-key", c.ApiKey).
		SetHeader("Accept", "audio/mpeg").
		SetPathParam("voice", voice).
		SetQueryParam("output_format", OutputFormat).
		SetBody(speechRequest{Text: text, ModelId: c.ModelId}).
		Post("/v1/text-to-speech/{voice}")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTTSFailed, "elevenlabs request failed", err)
	}
	if resp.IsError() {
		return apperrors.WrapWithDetail(apperrors.CodeTTSFailed,
			fmt.Sprintf("elevenlabs returned status %d", resp.StatusCode()),
			util.TruncateUTF8(resp.String(), 500), nil)
	}

	audio := resp.Body()
	if len(audio) == 0 {
		return apperrors.ErrTTSEmptyAudio
	}
	if err = os.WriteFile(outputFile, audio, 0o644); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "write narration failed", err)
	}

	log.GetLogger().Debug("elevenlabs tts success",
		zap.String("voice", voice),
		zap.String("output", outputFile),
		zap.Int("bytes", len(audio)))
	return nil
}
