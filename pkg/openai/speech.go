package openai

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
)

// Text2Speech writes mp3 narration for text to outputFile.
func (c *Client) Text2Speech(ctx context.Context, text, voice, outputFile string) error {
	if voice == "" {
		voice = string(openai.VoiceOnyx)
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.speechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTTSFailed, "openai speech request failed", err)
	}
	defer resp.Close()

	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file failed: %w", err)
	}
	n, err := io.Copy(file, resp)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outputFile)
		return apperrors.Wrap(apperrors.CodeTTSFailed, "write speech audio failed", err)
	}
	if n == 0 {
		_ = os.Remove(outputFile)
		return apperrors.ErrTTSEmptyAudio
	}

	log.GetLogger().Debug("openai tts success", zap.String("output", outputFile), zap.Int64("bytes", n))
	return nil
}
