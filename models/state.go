package models

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// AnalysisState is the graph-local state threaded through the orchestration
// nodes for one directive.
type AnalysisState struct {
	Directive string `json:"directive"`

	Tasks       []*Task `json:"tasks"`
	CurrentTask *Task   `json:"current_task,omitempty"`

	Collected       map[string]*CollectedData  `json:"collected_data"`
	AnalysisResults map[string]*AnalysisResult `json:"analysis_results"`
	RiskAssessment  *RiskAssessment            `json:"risk_assessment,omitempty"`
	FinalReport     string                     `json:"final_report,omitempty"`

	Messages []*schema.Message `json:"messages"`
	Goto     string            `json:"goto"`

	Iterations    int `json:"iterations"`
	MaxIterations int `json:"max_iterations"`
}

func NewAnalysisState(directive string, maxIterations int) *AnalysisState {
	return &AnalysisState{
		Directive:       directive,
		Tasks:           []*Task{},
		Collected:       make(map[string]*CollectedData),
		AnalysisResults: make(map[string]*AnalysisResult),
		Messages:        []*schema.Message{},
		MaxIterations:   maxIterations,
	}
}

// Note appends a transcript entry for progress reporting.
func (s *AnalysisState) Note(text string) {
	s.Messages = append(s.Messages, schema.UserMessage(text))
}

// TaskDone reports whether a task has already produced its output.
func (s *AnalysisState) TaskDone(task *Task) bool {
	switch task.TaskType {
	case "data_collection":
		_, ok := s.Collected[task.TaskID]
		return ok
	case "analysis":
		_, ok := s.AnalysisResults[task.TaskID]
		return ok
	case "risk_assessment":
		return s.RiskAssessment != nil
	case "synthesis":
		return s.FinalReport != ""
	default:
		return true
	}
}

// CollectedData is the payload a data-collection task produced.
type CollectedData struct {
	TaskID     string                 `json:"task_id"`
	Source     string                 `json:"source"`
	Timestamp  time.Time              `json:"timestamp"`
	News       []*NewsArticle         `json:"news,omitempty"`
	Social     []*SocialPost          `json:"social,omitempty"`
	Research   []*ResearchPaper       `json:"research,omitempty"`
	Filings    []*Filing              `json:"filings,omitempty"`
	Web        []*WebPage             `json:"web,omitempty"`
	Market     []*StockSummary        `json:"market,omitempty"`
	Indicators []*TechnicalIndicators `json:"indicators,omitempty"`
	Statements []*FinancialStatements `json:"statements,omitempty"`
	Economic   []*EconomicSeries      `json:"economic,omitempty"`
	Calendar   []*CalendarEvent       `json:"calendar,omitempty"`
	Notes      []string               `json:"notes,omitempty"`
}

// AnalysisResult is the payload an analysis task produced.
type AnalysisResult struct {
	TaskID     string            `json:"task_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Sentiment  *SentimentReport  `json:"sentiment,omitempty"`
	Causal     *CausalGraph      `json:"causal,omitempty"`
	Narratives *NarrativeSet     `json:"narratives,omitempty"`
	Personas   *PersonaSummaries `json:"personas,omitempty"`
	Summary    string            `json:"summary,omitempty"`
}
