package graph

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/consts"
	"github.com/aletheia-intel/aletheia/internal/agents"
	"github.com/aletheia-intel/aletheia/internal/dataflows"
	"github.com/aletheia-intel/aletheia/internal/llm"
	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/internal/metrics"
	"github.com/aletheia-intel/aletheia/models"
)

const defaultLookbackDays = 7

// Orchestrator drives one directive through planning, collection, analysis,
// risk assessment and synthesis. Stores are optional; without them the run
// still produces a report, it just is not persisted.
type Orchestrator struct {
	planner *agents.Planner
	hunter  *agents.NarrativeHunter
	quant   *agents.QuantAnalyst
	intel   *agents.IntelligenceAnalyst
	risk    *agents.RiskAnalyst
	deep    llm.ChatModel

	store   *memory.RelationalStore
	vectors *memory.VectorMemory
	metrics *metrics.Registry

	maxIterations atomic.Int64
	runnable      compose.Runnable[string, string]
}

// SetMetrics installs per-task counters. Call before Run.
func (o *Orchestrator) SetMetrics(reg *metrics.Registry) {
	o.metrics = reg
}

// SetMaxIterations caps the scheduling loop for subsequent runs.
func (o *Orchestrator) SetMaxIterations(n int) {
	if n > 0 {
		o.maxIterations.Store(int64(n))
	}
}

func (o *Orchestrator) countTask(taskType string) {
	if o.metrics != nil {
		o.metrics.TasksExecuted.WithLabelValues(taskType).Inc()
	}
}

// New builds the orchestrator and compiles its graph.
func New(ctx context.Context, cfg *config.Config, quick, deep llm.ChatModel, flows *dataflows.DataFlows, store *memory.RelationalStore, vectors *memory.VectorMemory) (*Orchestrator, error) {
	o := &Orchestrator{
		planner: agents.NewPlanner(quick),
		hunter:  agents.NewNarrativeHunter(flows),
		quant:   agents.NewQuantAnalyst(flows),
		intel:   agents.NewIntelligenceAnalyst(quick),
		risk:    agents.NewRiskAnalyst(quick),
		deep:    deep,
		store:   store,
		vectors: vectors,
	}
	o.maxIterations.Store(int64(cfg.MaxRecurLimit))
	runnable, err := o.buildGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile analysis graph: %w", err)
	}
	o.runnable = runnable
	return o, nil
}

// Run executes the full pipeline for a directive and returns the report.
func (o *Orchestrator) Run(ctx context.Context, directive string) (*models.Report, error) {
	started := time.Now()
	log.Info().Str("directive", directive).Msg("starting analysis run")

	content, err := o.runnable.Invoke(ctx, directive)
	if err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("analysis run produced no report")
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		Title:      reportTitle(directive),
		Directive:  directive,
		Content:    content,
		ReportType: "market_analysis",
		CreatedAt:  time.Now().UTC(),
	}
	o.persistReport(ctx, report)

	log.Info().
		Str("report_id", report.ID).
		Dur("elapsed", time.Since(started)).
		Msg("analysis run finished")
	return report, nil
}

func (o *Orchestrator) planNode(ctx context.Context, directive string) (string, error) {
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		state.Directive = directive
		state.Tasks = o.planner.PlanTasks(ctx, directive)
		state.Note(fmt.Sprintf("planned %d tasks", len(state.Tasks)))
		state.Goto = consts.SelectNextTask
		return nil
	})
	return "", err
}

func (o *Orchestrator) selectNode(ctx context.Context, _ string) (string, error) {
	var out string
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		state.Goto = scheduleNext(state)
		if state.Goto == compose.END {
			out = state.FinalReport
		}
		return nil
	})
	return out, err
}

// scheduleNext picks the next node label for the state, enforcing the
// iteration cap.
func scheduleNext(state *models.AnalysisState) string {
	state.Iterations++
	if state.MaxIterations > 0 && state.Iterations > state.MaxIterations {
		log.Warn().Int("iterations", state.Iterations).Msg("iteration cap reached, stopping run")
		return compose.END
	}

	task := agents.SelectNextTask(state)
	if task == nil {
		return compose.END
	}
	state.CurrentTask = task
	return routeForTask(task)
}

// routeForTask maps a task type to its graph node.
func routeForTask(task *models.Task) string {
	switch task.TaskType {
	case consts.TaskDataCollection:
		return consts.CollectData
	case consts.TaskAnalysis:
		return consts.AnalyzeData
	case consts.TaskRiskAssessment:
		return consts.AssessRisks
	case consts.TaskSynthesis:
		return consts.SynthesizeReport
	default:
		return compose.END
	}
}

func (o *Orchestrator) collectNode(ctx context.Context, _ string) (string, error) {
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		task := state.CurrentTask
		if task == nil {
			state.Goto = consts.SelectNextTask
			return nil
		}

		query := strings.TrimSpace(state.Directive + " " + task.Description)
		req := agents.CollectionRequest{
			TaskID:  task.TaskID,
			Query:   query,
			Tickers: agents.ExtractTickers(query),
			Days:    defaultLookbackDays,
		}
		data, err := agents.CollectAll(ctx, o.hunter, o.quant, req)
		if err != nil {
			// The task still completes so the plan can progress; the
			// corpus just stays empty.
			log.Error().Err(err).Str("task", task.TaskID).Msg("collection failed")
			data = &models.CollectedData{
				TaskID:    task.TaskID,
				Source:    "none",
				Timestamp: time.Now().UTC(),
				Notes:     []string{err.Error()},
			}
		}
		state.Collected[task.TaskID] = data
		state.Note(fmt.Sprintf("collected for %s: %s", task.TaskID, agents.DescribeCollection(data)))
		o.countTask(consts.TaskDataCollection)
		o.persistCollected(ctx, data)
		state.Goto = consts.SelectNextTask
		return nil
	})
	return "", err
}

func (o *Orchestrator) analyzeNode(ctx context.Context, _ string) (string, error) {
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		task := state.CurrentTask
		if task == nil {
			state.Goto = consts.SelectNextTask
			return nil
		}

		corpus := agents.BuildCorpus(state.Collected)
		result := o.intel.Analyze(ctx, task.TaskID, corpus)
		state.AnalysisResults[task.TaskID] = result
		state.Note(fmt.Sprintf("analysis %s: %s", task.TaskID, result.Summary))
		o.countTask(consts.TaskAnalysis)
		o.persistAnalysis(ctx, result)
		state.Goto = consts.SelectNextTask
		return nil
	})
	return "", err
}

func (o *Orchestrator) risksNode(ctx context.Context, _ string) (string, error) {
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		corpus := agents.BuildCorpus(state.Collected)
		main := dominantNarrative(state)
		assessment := o.risk.Assess(ctx, main, "", "", corpus)
		state.RiskAssessment = assessment
		state.Note("risk assessment complete")
		o.countTask(consts.TaskRiskAssessment)
		o.persistRisks(ctx, assessment)
		state.Goto = consts.SelectNextTask
		return nil
	})
	return "", err
}

func (o *Orchestrator) synthesizeNode(ctx context.Context, _ string) (string, error) {
	var content string
	err := compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		var synthErr error
		content, synthErr = o.synthesize(ctx, state)
		if synthErr != nil {
			// Fall back to the stitched context so the run still yields
			// something reviewable.
			log.Error().Err(synthErr).Msg("report synthesis failed, using stitched summary")
			content = "# Market Intelligence Report (degraded)\n\n" + synthesisContext(state)
		}
		state.FinalReport = content
		state.Goto = compose.END
		o.countTask(consts.TaskSynthesis)
		return nil
	})
	return content, err
}

const synthesisSystemPrompt = `You are a senior market intelligence analyst writing a final report for decision makers.

Write a markdown report with exactly these sections:
## Executive Summary
## Key Findings
## Market Analysis
## Risk Assessment
## Actionable Recommendations

Be specific, cite the evidence you were given, and keep speculation clearly labeled.`

func (o *Orchestrator) synthesize(ctx context.Context, state *models.AnalysisState) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(synthesisSystemPrompt),
		schema.UserMessage(fmt.Sprintf("Directive: %s\n\nGathered intelligence:\n\n%s", state.Directive, synthesisContext(state))),
	}
	resp, err := o.deep.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("synthesis model: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("synthesis model returned empty content")
	}
	return resp.Content, nil
}

// synthesisContext stitches everything gathered during the run into one
// prompt body for the synthesis model.
func synthesisContext(state *models.AnalysisState) string {
	var b strings.Builder

	for id, data := range state.Collected {
		fmt.Fprintf(&b, "### Collection %s\n%s\n", id, agents.DescribeCollection(data))
		for _, summary := range data.Market {
			fmt.Fprintf(&b, "- %s: price %.2f, change %.2f%%, volatility %.2f%%\n",
				summary.Ticker, summary.LatestPrice, summary.PriceChangePct, summary.Volatility)
		}
		for _, series := range data.Economic {
			fmt.Fprintf(&b, "- %s: latest %.2f\n", series.Title, series.LatestValue)
		}
		for _, note := range data.Notes {
			fmt.Fprintf(&b, "- note: %s\n", note)
		}
		b.WriteString("\n")
	}

	for id, result := range state.AnalysisResults {
		fmt.Fprintf(&b, "### Analysis %s\n%s\n", id, result.Summary)
		if result.Sentiment != nil {
			fmt.Fprintf(&b, "Sentiment: %s (score %.1f), trend %s\n",
				result.Sentiment.OverallSentiment, result.Sentiment.SentimentScore, result.Sentiment.Trend)
		}
		if result.Narratives != nil {
			for _, n := range result.Narratives.Dominant {
				fmt.Fprintf(&b, "Dominant narrative: %s. %s\n", n.Title, n.Description)
			}
			for _, n := range result.Narratives.Emerging {
				fmt.Fprintf(&b, "Emerging narrative: %s. %s\n", n.Title, n.Description)
			}
		}
		if result.Causal != nil {
			for _, rel := range result.Causal.Relationships {
				fmt.Fprintf(&b, "Causal: %s -> %s (%s, confidence %s)\n", rel.Cause, rel.Effect, rel.Strength, rel.Confidence)
			}
		}
		b.WriteString("\n")
	}

	if ra := state.RiskAssessment; ra != nil {
		b.WriteString("### Risk assessment\n")
		if ra.Contrarian != nil {
			fmt.Fprintf(&b, "Contrarian view: %s\n", ra.Contrarian.OverallAssessment)
			for _, ev := range ra.Contrarian.Evidence {
				fmt.Fprintf(&b, "Contradictory evidence (%s): %s\n", ev.Strength, ev.Evidence)
			}
		}
		if ra.BlackSwans != nil {
			for _, sig := range ra.BlackSwans.Signals {
				fmt.Fprintf(&b, "Black swan signal (%s probability): %s\n", sig.Probability, sig.Signal)
			}
		}
		if ra.Geopolitical != nil {
			fmt.Fprintf(&b, "Geopolitical risk %.1f/10 for %s / %s: %s\n",
				ra.Geopolitical.OverallScore, ra.Geopolitical.Region, ra.Geopolitical.Sector, ra.Geopolitical.Assessment)
		}
	}

	if b.Len() == 0 {
		return "No intelligence was gathered for this directive."
	}
	return b.String()
}

// dominantNarrative picks the strongest identified narrative, falling back
// to the directive itself.
func dominantNarrative(state *models.AnalysisState) string {
	for _, result := range state.AnalysisResults {
		if result.Narratives == nil {
			continue
		}
		if len(result.Narratives.Dominant) > 0 {
			n := result.Narratives.Dominant[0]
			return strings.TrimSpace(n.Title + ": " + n.Description)
		}
	}
	return state.Directive
}

// reportTitle derives a display title from the directive.
func reportTitle(directive string) string {
	title := strings.TrimSpace(directive)
	if title == "" {
		return "Market Intelligence Report"
	}
	const maxTitle = 80
	if runes := []rune(title); len(runes) > maxTitle {
		title = strings.TrimSpace(string(runes[:maxTitle])) + "..."
	}
	return title
}
