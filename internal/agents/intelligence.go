package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/internal/llm"
	"github.com/aletheia-intel/aletheia/models"
)

// sentimentDimensions are the emotional axes scored from -5 to +5.
var sentimentDimensions = []string{
	"optimism_pessimism",
	"confidence_uncertainty",
	"fear_greed",
	"excitement_boredom",
	"surprise_expectation",
}

// defaultPersonas are the audiences summaries are tailored for.
var defaultPersonas = []string{"trader", "portfolio_manager", "retail_investor", "executive"}

// IntelligenceAnalyst performs the qualitative analysis over a corpus:
// sentiment, causal structure, narratives and persona summaries.
type IntelligenceAnalyst struct {
	model llm.ChatModel
}

// NewIntelligenceAnalyst creates the analyst over the quick-think model.
func NewIntelligenceAnalyst(model llm.ChatModel) *IntelligenceAnalyst {
	return &IntelligenceAnalyst{model: model}
}

const sentimentPrompt = `Analyze the sentiment in the following texts. Go beyond simple positive/negative classification.
Identify nuanced emotional states across these dimensions: Optimism/Pessimism, Confidence/Uncertainty, Fear/Greed, Excitement/Boredom, Surprise/Expectation.

For each dimension provide a score from -5 to +5 and the key phrases supporting it.

Texts to analyze:
%s

Respond ONLY in JSON with this structure:
{
  "overall_sentiment": "string",
  "sentiment_score": 0.0,
  "dimensions": {
    "optimism_pessimism": {"score": 0.0, "key_phrases": ["..."]},
    "confidence_uncertainty": {"score": 0.0, "key_phrases": ["..."]},
    "fear_greed": {"score": 0.0, "key_phrases": ["..."]},
    "excitement_boredom": {"score": 0.0, "key_phrases": ["..."]},
    "surprise_expectation": {"score": 0.0, "key_phrases": ["..."]}
  },
  "trend": "string",
  "notable_outliers": ["..."]
}`

// AnalyzeSentiment scores the corpus across the five emotional
// dimensions. A response that cannot be parsed yields a degraded
// neutral report carrying the raw text, never an error.
func (ia *IntelligenceAnalyst) AnalyzeSentiment(ctx context.Context, corpus string) (*models.SentimentReport, error) {
	resp, err := ia.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(sentimentPrompt, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment analysis failed: %w", err)
	}

	var report models.SentimentReport
	if err := ParseJSONResponse(resp.Content, &report); err != nil {
		log.Warn().Err(err).Msg("sentiment response unparseable, degrading")
		return degradedSentiment(resp.Content), nil
	}
	if report.Dimensions == nil {
		report.Dimensions = map[string]*models.SentimentDimension{}
	}
	for _, dim := range sentimentDimensions {
		if report.Dimensions[dim] == nil {
			report.Dimensions[dim] = &models.SentimentDimension{}
		}
	}
	return &report, nil
}

func degradedSentiment(raw string) *models.SentimentReport {
	dims := make(map[string]*models.SentimentDimension, len(sentimentDimensions))
	for _, dim := range sentimentDimensions {
		dims[dim] = &models.SentimentDimension{KeyPhrases: []string{"parsing error"}}
	}
	return &models.SentimentReport{
		OverallSentiment: "mixed",
		Dimensions:       dims,
		Trend:            "unknown",
		NotableOutliers:  []string{"parsing error"},
		Degraded:         true,
		RawResponse:      raw,
	}
}

const causalPrompt = `Extract causal relationships from the following texts. Focus on clear cause-and-effect relationships related to financial markets, economics, or business.

For each relationship identify the cause, the effect, the strength (strong, moderate, weak), your confidence (high, medium, low) and any conditions that modify it.

Texts to analyze:
%s

Respond ONLY in JSON with this structure:
{
  "causal_relationships": [{"cause": "...", "effect": "...", "strength": "...", "confidence": "...", "conditions": "..."}],
  "key_factors": ["..."],
  "common_effects": ["..."],
  "feedback_loops": [{"description": "...", "cycle": ["..."]}]
}`

// ExtractCausal pulls the causal graph out of the corpus.
func (ia *IntelligenceAnalyst) ExtractCausal(ctx context.Context, corpus string) (*models.CausalGraph, error) {
	resp, err := ia.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(causalPrompt, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("causal extraction failed: %w", err)
	}

	var graph models.CausalGraph
	if err := ParseJSONResponse(resp.Content, &graph); err != nil {
		log.Warn().Err(err).Msg("causal response unparseable, degrading")
		return &models.CausalGraph{
			Relationships: []*models.CausalRelationship{{
				Cause: "parsing error", Effect: "parsing error",
				Strength: "unknown", Confidence: "low",
			}},
			Degraded:    true,
			RawResponse: resp.Content,
		}, nil
	}
	return &graph, nil
}

const narrativePrompt = `Identify the dominant market narratives in the following texts. A market narrative is a story market participants use to make sense of events and justify price movements.

For each narrative identify a concise title, a description, supporting evidence, counter-evidence and the market implications if it becomes dominant. Separate dominant, competing and emerging narratives, and note any shifts between narratives with their catalysts.

Texts to analyze:
%s

Respond ONLY in JSON with this structure:
{
  "dominant_narratives": [{"title": "...", "description": "...", "supporting_evidence": ["..."], "counter_evidence": ["..."], "market_implications": "..."}],
  "competing_narratives": [{"title": "...", "description": "...", "supporting_evidence": ["..."], "counter_evidence": ["..."], "market_implications": "..."}],
  "emerging_narratives": [{"title": "...", "description": "...", "supporting_evidence": ["..."], "market_implications": "..."}],
  "narrative_shifts": [{"from": "...", "to": "...", "catalyst": "..."}]
}`

// IdentifyNarratives maps the narrative landscape of the corpus.
func (ia *IntelligenceAnalyst) IdentifyNarratives(ctx context.Context, corpus string) (*models.NarrativeSet, error) {
	resp, err := ia.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(narrativePrompt, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("narrative identification failed: %w", err)
	}

	var set models.NarrativeSet
	if err := ParseJSONResponse(resp.Content, &set); err != nil {
		log.Warn().Err(err).Msg("narrative response unparseable, degrading")
		return &models.NarrativeSet{Degraded: true, RawResponse: resp.Content}, nil
	}
	return &set, nil
}

const personaPrompt = `Create summaries of the following texts tailored to different personas in the financial industry. Each summary should focus on what matters to that persona with appropriate language and detail.

Personas:
- trader: short-term price movements, volatility, trading opportunities
- portfolio_manager: long-term trends, risk management, portfolio implications
- retail_investor: clear explanations, no jargon, practical advice
- executive: strategic implications, competitive landscape, high-level insights

Texts to summarize:
%s

Respond ONLY in JSON with this structure:
{
  "summaries": {
    "trader": {"summary": "...", "key_points": ["..."], "actionable_insights": ["..."]},
    "portfolio_manager": {"summary": "...", "key_points": ["..."], "actionable_insights": ["..."]},
    "retail_investor": {"summary": "...", "key_points": ["..."], "actionable_insights": ["..."]},
    "executive": {"summary": "...", "key_points": ["..."], "actionable_insights": ["..."]}
  }
}`

// SummarizeForPersonas produces audience-specific summaries.
func (ia *IntelligenceAnalyst) SummarizeForPersonas(ctx context.Context, corpus string) (*models.PersonaSummaries, error) {
	resp, err := ia.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(personaPrompt, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("persona summarization failed: %w", err)
	}

	var summaries models.PersonaSummaries
	if err := ParseJSONResponse(resp.Content, &summaries); err != nil {
		log.Warn().Err(err).Msg("persona response unparseable, degrading")
		summaries = models.PersonaSummaries{
			Summaries:   map[string]*models.PersonaSummary{},
			Degraded:    true,
			RawResponse: resp.Content,
		}
	}
	if summaries.Summaries == nil {
		summaries.Summaries = map[string]*models.PersonaSummary{}
	}
	for _, persona := range defaultPersonas {
		if summaries.Summaries[persona] == nil {
			summaries.Summaries[persona] = &models.PersonaSummary{Summary: "unavailable"}
		}
	}
	return &summaries, nil
}

// Analyze runs the full qualitative pass for one analysis task. Each
// sub-analysis failure degrades that section rather than aborting.
func (ia *IntelligenceAnalyst) Analyze(ctx context.Context, taskID, corpus string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
	}

	if corpus == "" {
		result.Summary = "no data collected to analyze"
		return result
	}

	var err error
	if result.Sentiment, err = ia.AnalyzeSentiment(ctx, corpus); err != nil {
		log.Error().Err(err).Str("task", taskID).Msg("sentiment pass failed")
	}
	if result.Causal, err = ia.ExtractCausal(ctx, corpus); err != nil {
		log.Error().Err(err).Str("task", taskID).Msg("causal pass failed")
	}
	if result.Narratives, err = ia.IdentifyNarratives(ctx, corpus); err != nil {
		log.Error().Err(err).Str("task", taskID).Msg("narrative pass failed")
	}
	if result.Personas, err = ia.SummarizeForPersonas(ctx, corpus); err != nil {
		log.Error().Err(err).Str("task", taskID).Msg("persona pass failed")
	}

	result.Summary = summarizeResult(result)
	return result
}

func summarizeResult(result *models.AnalysisResult) string {
	summary := ""
	if result.Sentiment != nil {
		summary += fmt.Sprintf("sentiment %s (%.1f); ", result.Sentiment.OverallSentiment, result.Sentiment.SentimentScore)
	}
	if result.Causal != nil {
		summary += fmt.Sprintf("%d causal links; ", len(result.Causal.Relationships))
	}
	if result.Narratives != nil {
		summary += fmt.Sprintf("%d dominant narratives", len(result.Narratives.Dominant))
	}
	if summary == "" {
		summary = "analysis produced no sections"
	}
	return summary
}
