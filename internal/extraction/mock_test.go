package extraction

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/takeoff-group/recon-cli/pkg/llm"
)

// --- Oracle Mock ---

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) CreateMessage(ctx context.Context, req llm.MessageRequest) (*llm.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.MessageResponse), args.Error(1)
}

// Interface compliance.
var _ llm.Client = (*mockOracle)(nil)

func textResponse(text string) *llm.MessageResponse {
	return &llm.MessageResponse{
		Content:    []llm.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      llm.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}
