package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/v1", "sk-test", "gpt-test", nil)
}

func TestChatCompletionRequestsJSONObject(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  {\"clips\":[]}  "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`)
	})

	out, err := client.ChatCompletion(context.Background(), types.ChatRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		JSONOnly:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"clips":[]}`, out)
	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["content"])
}

func TestChatCompletionMapsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"This model's maximum context length is 128000 tokens.","type":"invalid_request_error","param":"messages","code":"context_length_exceeded"}}`)
	})

	_, err := client.ChatCompletion(context.Background(), types.ChatRequest{UserPrompt: "x"})

	var planErr *types.PlanError
	require.True(t, errors.As(err, &planErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, planErr.Status)
	assert.Equal(t, "context_length_exceeded", planErr.Code)
	assert.Equal(t, "invalid_request_error", planErr.Type)
	assert.Contains(t, planErr.Message, "maximum context length")
}

func TestChatCompletionNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","choices":[]}`)
	})

	_, err := client.ChatCompletion(context.Background(), types.ChatRequest{UserPrompt: "x"})

	var planErr *types.PlanError
	require.True(t, errors.As(err, &planErr))
	assert.Equal(t, "response has no choices", planErr.Message)
}

func TestText2SpeechWritesAudio(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3fake-mp3"))
	})

	out := filepath.Join(t.TempDir(), "audio", "Heat_audio_1.mp3")
	require.NoError(t, client.Text2Speech(context.Background(), "Here we go.", "", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ID3fake-mp3", string(data))
	assert.Equal(t, "onyx", body["voice"])
	assert.Equal(t, "tts-1", body["model"])
	assert.Equal(t, "Here we go.", body["input"])
}

func TestText2SpeechEmptyAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	})

	out := filepath.Join(t.TempDir(), "a.mp3")
	err := client.Text2Speech(context.Background(), "text", "onyx", out)

	assert.True(t, apperrors.Is(err, apperrors.CodeTTSEmptyAudio))
	assert.NoFileExists(t, out)
}
