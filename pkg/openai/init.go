package openai

import (
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
	// tts
	speechModel string
}

// NewClient builds a go-openai client. proxy may be nil. No overall request
// timeout is set because plan requests can run for hours.
func NewClient(baseUrl, apiKey, model string, proxy *url.URL) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	cfg.HTTPClient = &http.Client{Transport: transport}

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		speechModel: string(openai.TTSModel1),
	}
}

// WithSpeechModel sets the model used by Text2Speech.
func (c *Client) WithSpeechModel(model string) *Client {
	if model != "" {
		c.speechModel = model
	}
	return c
}
