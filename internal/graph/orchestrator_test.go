package graph

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/consts"
	"github.com/aletheia-intel/aletheia/models"
)

type scriptedModel struct {
	responses []string
	calls     []([]*schema.Message)
	err       error
}

func (m *scriptedModel) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return nil, m.err
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return schema.AssistantMessage(m.responses[idx], nil), nil
}

func TestRouteForTask(t *testing.T) {
	cases := map[string]string{
		consts.TaskDataCollection: consts.CollectData,
		consts.TaskAnalysis:       consts.AnalyzeData,
		consts.TaskRiskAssessment: consts.AssessRisks,
		consts.TaskSynthesis:      consts.SynthesizeReport,
		"unknown":                 compose.END,
	}
	for taskType, want := range cases {
		got := routeForTask(&models.Task{TaskID: "t", TaskType: taskType})
		assert.Equal(t, want, got, taskType)
	}
}

func TestScheduleNextWalksDefaultPlan(t *testing.T) {
	state := models.NewAnalysisState("semiconductor outlook", 50)
	state.Tasks = models.DefaultTaskPlan()

	assert.Equal(t, consts.CollectData, scheduleNext(state))
	assert.Equal(t, "collect_market_data", state.CurrentTask.TaskID)
	state.Collected["collect_market_data"] = &models.CollectedData{TaskID: "collect_market_data"}

	assert.Equal(t, consts.AnalyzeData, scheduleNext(state))
	state.AnalysisResults[state.CurrentTask.TaskID] = &models.AnalysisResult{TaskID: state.CurrentTask.TaskID}

	assert.Equal(t, consts.AssessRisks, scheduleNext(state))
	state.RiskAssessment = &models.RiskAssessment{Timestamp: time.Now()}

	assert.Equal(t, consts.SynthesizeReport, scheduleNext(state))
	state.FinalReport = "done"

	assert.Equal(t, compose.END, scheduleNext(state))
}

func TestScheduleNextIterationCap(t *testing.T) {
	state := models.NewAnalysisState("directive", 2)
	state.Tasks = models.DefaultTaskPlan()

	assert.Equal(t, consts.CollectData, scheduleNext(state))
	// Collection never completes, the cap must still end the run.
	assert.Equal(t, consts.CollectData, scheduleNext(state))
	assert.Equal(t, compose.END, scheduleNext(state))
}

func TestSynthesizeBuildsPromptAndReturnsContent(t *testing.T) {
	deep := &scriptedModel{responses: []string{"## Executive Summary\nAll clear."}}
	o := &Orchestrator{deep: deep}

	state := models.NewAnalysisState("rates outlook", 10)
	state.Collected["collect_market_data"] = &models.CollectedData{
		TaskID: "collect_market_data",
		Market: []*models.StockSummary{{Ticker: "SPY", LatestPrice: 512.5, PriceChangePct: 1.2, Volatility: 14.1}},
	}
	state.AnalysisResults["analyze_sentiment"] = &models.AnalysisResult{
		TaskID:  "analyze_sentiment",
		Summary: "sentiment bullish (2.0)",
		Sentiment: &models.SentimentReport{
			OverallSentiment: "bullish",
			SentimentScore:   2.0,
			Trend:            "improving",
		},
	}

	content, err := o.synthesize(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, content, "Executive Summary")

	require.Len(t, deep.calls, 1)
	prompt := deep.calls[0]
	require.Len(t, prompt, 2)
	assert.Equal(t, schema.System, prompt[0].Role)
	assert.Contains(t, prompt[1].Content, "rates outlook")
	assert.Contains(t, prompt[1].Content, "SPY")
	assert.Contains(t, prompt[1].Content, "bullish")
}

func TestSynthesizeEmptyResponseFails(t *testing.T) {
	deep := &scriptedModel{responses: []string{"   "}}
	o := &Orchestrator{deep: deep}

	_, err := o.synthesize(context.Background(), models.NewAnalysisState("x", 10))
	assert.Error(t, err)
}

func TestSynthesisContextEmptyState(t *testing.T) {
	state := models.NewAnalysisState("anything", 10)
	assert.Equal(t, "No intelligence was gathered for this directive.", synthesisContext(state))
}

func TestSynthesisContextIncludesRisks(t *testing.T) {
	state := models.NewAnalysisState("anything", 10)
	state.RiskAssessment = &models.RiskAssessment{
		Timestamp: time.Now(),
		BlackSwans: &models.BlackSwanReport{
			Signals: []*models.BlackSwanSignal{{Signal: "regional bank stress", Probability: "low"}},
		},
		Geopolitical: &models.GeopoliticalAssessment{
			Region: "asia", Sector: "semiconductors", OverallScore: 6.5, Assessment: "elevated",
		},
	}

	out := synthesisContext(state)
	assert.Contains(t, out, "regional bank stress")
	assert.Contains(t, out, "6.5/10")
	assert.Contains(t, out, "semiconductors")
}

func TestDominantNarrativeFallsBackToDirective(t *testing.T) {
	state := models.NewAnalysisState("energy transition trade", 10)
	assert.Equal(t, "energy transition trade", dominantNarrative(state))

	state.AnalysisResults["a"] = &models.AnalysisResult{
		Narratives: &models.NarrativeSet{
			Dominant: []*models.Narrative{{Title: "AI capex supercycle", Description: "spend keeps accelerating"}},
		},
	}
	assert.Equal(t, "AI capex supercycle: spend keeps accelerating", dominantNarrative(state))
}

func TestReportTitle(t *testing.T) {
	assert.Equal(t, "Market Intelligence Report", reportTitle("  "))
	assert.Equal(t, "short directive", reportTitle("short directive"))

	long := ""
	for i := 0; i < 20; i++ {
		long += "directive "
	}
	title := reportTitle(long)
	assert.LessOrEqual(t, len(title), 84)
	assert.Contains(t, title, "...")
}

func TestReportTitleTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("日経平均と円相場 ", 12)
	title := reportTitle(long)
	assert.True(t, utf8.ValidString(title))
	assert.LessOrEqual(t, len([]rune(title)), 83)
	assert.Contains(t, title, "...")
}
