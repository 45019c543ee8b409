package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"movie-recap/internal/types"
	"movie-recap/log"
)

func (c *Client) ChatCompletion(ctx context.Context, req types.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	request := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.JSONOnly {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		log.GetLogger().Warn("chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", toPlanError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &types.PlanError{Status: 200, Message: "response has no choices"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.GetLogger().Debug("chat completion done",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return content, nil
}

// toPlanError flattens go-openai errors into the backend-agnostic payload the
// planner's retry predicate inspects. Transport errors keep their cause.
func toPlanError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return &types.PlanError{
			Status:  apiErr.HTTPStatusCode,
			Message: apiErr.Message,
			Type:    apiErr.Type,
			Code:    code,
			Cause:   err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &types.PlanError{Status: reqErr.HTTPStatusCode, Message: msg, Cause: err}
	}
	return err
}
