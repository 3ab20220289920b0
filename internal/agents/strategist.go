package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/internal/llm"
	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/models"
)

// AnalysisRunner launches a full market analysis for a directive and
// returns the finished report. The orchestrator provides it; tests
// stub it.
type AnalysisRunner func(ctx context.Context, directive string) (*models.Report, error)

const strategistSystemPrompt = `You are the Strategist of a market intelligence unit. You talk to the user, answer market questions from what you already know, and when a question needs fresh evidence you launch a full analysis with the run_market_analysis tool.

Launch the tool when the user asks for an assessment, outlook or deep-dive on a market, sector or asset. Answer directly for follow-ups about an analysis you already ran, or general questions. Be concise and concrete. Never invent data.`

// runAnalysisTool is the single tool the strategist can call.
var runAnalysisTool = &schema.ToolInfo{
	Name: "run_market_analysis",
	Desc: "Run a full multi-agent market analysis for a directive and return the report",
	ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
		"directive": {
			Type:     "string",
			Desc:     "What to analyze, e.g. 'assess the impact of rate cuts on semiconductor stocks'",
			Required: true,
		},
	}),
}

// Strategist is the conversational front of the unit.
type Strategist struct {
	model    llm.ToolableChatModel
	sessions memory.SessionStore
	window   int
	run      AnalysisRunner
}

// NewStrategist wires the strategist. window is the number of past
// turns replayed into each model call.
func NewStrategist(model llm.ToolableChatModel, sessions memory.SessionStore, window int, run AnalysisRunner) *Strategist {
	if window <= 0 {
		window = 10
	}
	return &Strategist{model: model, sessions: sessions, window: window, run: run}
}

// Chat handles one user message within a session, possibly launching
// an analysis, and returns the assistant reply.
func (st *Strategist) Chat(ctx context.Context, sessionID, userMessage string) (string, error) {
	history, err := st.sessions.Window(ctx, sessionID, st.window)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("session history unavailable")
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(strategistSystemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	messages = append(messages, schema.UserMessage(userMessage))

	toolModel, err := st.model.WithTools([]*schema.ToolInfo{runAnalysisTool})
	if err != nil {
		return "", fmt.Errorf("failed to bind tools: %w", err)
	}

	resp, err := toolModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("strategist generation failed: %w", err)
	}

	if len(resp.ToolCalls) > 0 {
		resp, err = st.handleToolCalls(ctx, toolModel, messages, resp)
		if err != nil {
			return "", err
		}
	}

	reply := resp.Content
	if err := st.sessions.Append(ctx, sessionID, &memory.Turn{Role: "user", Content: userMessage}); err != nil {
		log.Warn().Err(err).Msg("failed to record user turn")
	}
	if err := st.sessions.Append(ctx, sessionID, &memory.Turn{Role: "assistant", Content: reply}); err != nil {
		log.Warn().Err(err).Msg("failed to record assistant turn")
	}
	return reply, nil
}

type runAnalysisArgs struct {
	Directive string `json:"directive"`
}

func (st *Strategist) handleToolCalls(ctx context.Context, toolModel llm.ChatModel, messages []*schema.Message, resp *schema.Message) (*schema.Message, error) {
	messages = append(messages, resp)

	for _, call := range resp.ToolCalls {
		if call.Function.Name != runAnalysisTool.Name {
			messages = append(messages, schema.ToolMessage(
				fmt.Sprintf("unknown tool %q", call.Function.Name), call.ID))
			continue
		}

		var args runAnalysisArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || args.Directive == "" {
			messages = append(messages, schema.ToolMessage("invalid arguments: directive is required", call.ID))
			continue
		}

		log.Info().Str("directive", args.Directive).Msg("strategist launching analysis")
		report, err := st.run(ctx, args.Directive)
		if err != nil {
			messages = append(messages, schema.ToolMessage(
				fmt.Sprintf("analysis failed: %v", err), call.ID))
			continue
		}
		messages = append(messages, schema.ToolMessage(report.Content, call.ID))
	}

	final, err := toolModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("strategist follow-up failed: %w", err)
	}
	return final, nil
}
