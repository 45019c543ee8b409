// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"movie-recap/internal/types"
)

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, req types.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTtser is a mock implementation of types.Ttser
type MockTtser struct {
	mock.Mock
}

func (m *MockTtser) Text2Speech(ctx context.Context, text, voice, outputFile string) error {
	args := m.Called(ctx, text, voice, outputFile)
	return args.Error(0)
}

// MockSubtitleSource is a mock implementation of types.SubtitleSource
type MockSubtitleSource struct {
	mock.Mock
}

func (m *MockSubtitleSource) FetchSubtitles(ctx context.Context, title string) ([]byte, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockScriptSource is a mock implementation of types.ScriptSource
type MockScriptSource struct {
	mock.Mock
}

func (m *MockScriptSource) FetchScript(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// MockPlanGenerator is a mock implementation of types.PlanGenerator
type MockPlanGenerator struct {
	mock.Mock
}

func (m *MockPlanGenerator) Generate(ctx context.Context, req types.PlanRequest) (types.ClipPlan, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.ClipPlan), args.Error(1)
}
