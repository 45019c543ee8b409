// Package planner asks a chat model which movie moments to narrate.
package planner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
	"movie-recap/pkg/util"
)

const (
	timeoutWithScript    = 4 * time.Hour
	timeoutWithoutScript = time.Hour
)

// Client implements types.PlanGenerator on top of a chat model.
type Client struct {
	chat   types.ChatCompleter
	logger *zap.Logger
}

func NewClient(chat types.ChatCompleter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{chat: chat, logger: logger}
}

func (c *Client) Generate(ctx context.Context, req types.PlanRequest) (types.ClipPlan, error) {
	timeout := timeoutWithoutScript
	if strings.TrimSpace(req.Script) != "" {
		timeout = timeoutWithScript
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildPrompt(req)
	c.logger.Debug("requesting clip plan",
		zap.String("title", req.Title),
		zap.Int("clips", req.ClipCount),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Bool("with_script", req.Script != ""))

	reply, err := c.chat.ChatCompletion(ctx, types.ChatRequest{
		SystemPrompt: types.ClipPlanSystemPrompt,
		UserPrompt:   prompt,
		JSONOnly:     true,
	})
	if err != nil {
		return types.ClipPlan{}, err
	}

	plan, err := ParsePlan(reply)
	if err != nil {
		return types.ClipPlan{}, apperrors.WrapWithDetail(apperrors.CodeLLMBadResponse, "unusable plan response", util.TruncateUTF8(reply, 500), err)
	}
	return plan, nil
}
