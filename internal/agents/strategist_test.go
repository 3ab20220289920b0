package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/models"
)

// toolModel is a scripted ToolCallingChatModel for strategist tests.
type toolModel struct {
	responses []*schema.Message
	calls     int
	seen      [][]*schema.Message
}

func (tm *toolModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	tm.seen = append(tm.seen, input)
	if tm.calls >= len(tm.responses) {
		return nil, errors.New("tool model exhausted")
	}
	resp := tm.responses[tm.calls]
	tm.calls++
	return resp, nil
}

func (tm *toolModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (tm *toolModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return tm, nil
}

func TestChatDirectAnswer(t *testing.T) {
	tm := &toolModel{responses: []*schema.Message{
		schema.AssistantMessage("Rates are unchanged since the last meeting.", nil),
	}}
	sessions := memory.NewInMemorySessionStore()

	strategist := NewStrategist(tm, sessions, 10, func(context.Context, string) (*models.Report, error) {
		t.Fatal("analysis should not run for a direct answer")
		return nil, nil
	})

	reply, err := strategist.Chat(context.Background(), "s1", "did the Fed move?")
	require.NoError(t, err)
	assert.Equal(t, "Rates are unchanged since the last meeting.", reply)

	window, err := sessions.Window(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "user", window[0].Role)
	assert.Equal(t, "assistant", window[1].Role)
}

func TestChatRunsAnalysisTool(t *testing.T) {
	toolCall := schema.AssistantMessage("", []schema.ToolCall{{
		ID: "call-1",
		Function: schema.FunctionCall{
			Name:      "run_market_analysis",
			Arguments: `{"directive": "assess NVDA demand"}`,
		},
	}})
	tm := &toolModel{responses: []*schema.Message{
		toolCall,
		schema.AssistantMessage("Demand remains strong; see the full report.", nil),
	}}

	var ranDirective string
	strategist := NewStrategist(tm, memory.NewInMemorySessionStore(), 10,
		func(_ context.Context, directive string) (*models.Report, error) {
			ranDirective = directive
			return &models.Report{Content: "# Report\nstrong demand"}, nil
		})

	reply, err := strategist.Chat(context.Background(), "s1", "how is NVDA demand holding up?")
	require.NoError(t, err)
	assert.Equal(t, "assess NVDA demand", ranDirective)
	assert.Contains(t, reply, "Demand remains strong")

	// The report content is fed back to the model as the tool result.
	lastInput := tm.seen[len(tm.seen)-1]
	found := false
	for _, msg := range lastInput {
		if msg.Role == schema.Tool && msg.Content == "# Report\nstrong demand" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChatToolFailureIsReported(t *testing.T) {
	toolCall := schema.AssistantMessage("", []schema.ToolCall{{
		ID: "call-1",
		Function: schema.FunctionCall{
			Name:      "run_market_analysis",
			Arguments: `{"directive": "assess X"}`,
		},
	}})
	tm := &toolModel{responses: []*schema.Message{
		toolCall,
		schema.AssistantMessage("I could not complete the analysis.", nil),
	}}

	strategist := NewStrategist(tm, memory.NewInMemorySessionStore(), 10,
		func(context.Context, string) (*models.Report, error) {
			return nil, errors.New("providers offline")
		})

	reply, err := strategist.Chat(context.Background(), "s1", "assess X")
	require.NoError(t, err)
	assert.Contains(t, reply, "could not complete")
}

func TestChatReplaysWindow(t *testing.T) {
	tm := &toolModel{responses: []*schema.Message{
		schema.AssistantMessage("noted", nil),
	}}
	sessions := memory.NewInMemorySessionStore()
	ctx := context.Background()
	require.NoError(t, sessions.Append(ctx, "s1", &memory.Turn{Role: "user", Content: "earlier question"}))
	require.NoError(t, sessions.Append(ctx, "s1", &memory.Turn{Role: "assistant", Content: "earlier answer"}))

	strategist := NewStrategist(tm, sessions, 10, nil)
	_, err := strategist.Chat(ctx, "s1", "new question")
	require.NoError(t, err)

	input := tm.seen[0]
	// system + two history turns + the new question.
	require.Len(t, input, 4)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "earlier question", input[1].Content)
	assert.Equal(t, "earlier answer", input[2].Content)
}
