package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSentimentJSON = `{
	"overall_sentiment": "cautiously bullish",
	"sentiment_score": 1.5,
	"dimensions": {
		"optimism_pessimism": {"score": 2.0, "key_phrases": ["record demand"]},
		"fear_greed": {"score": 1.0, "key_phrases": ["FOMO"]}
	},
	"trend": "improving",
	"notable_outliers": ["one bearish short report"]
}`

func TestAnalyzeSentimentParses(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{responses: []string{validSentimentJSON}})

	report, err := analyst.AnalyzeSentiment(context.Background(), "corpus text")
	require.NoError(t, err)
	assert.False(t, report.Degraded)
	assert.Equal(t, "cautiously bullish", report.OverallSentiment)
	assert.InDelta(t, 1.5, report.SentimentScore, 1e-9)
	assert.InDelta(t, 2.0, report.Dimensions["optimism_pessimism"].Score, 1e-9)
	// Missing dimensions are filled so downstream code can index freely.
	require.NotNil(t, report.Dimensions["surprise_expectation"])
}

func TestAnalyzeSentimentDegradesOnBadJSON(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{responses: []string{"the mood is mixed overall"}})

	report, err := analyst.AnalyzeSentiment(context.Background(), "corpus text")
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Equal(t, "mixed", report.OverallSentiment)
	assert.Equal(t, "the mood is mixed overall", report.RawResponse)
	assert.Len(t, report.Dimensions, 5)
}

func TestExtractCausalParses(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{responses: []string{"```json\n" + `{
		"causal_relationships": [{"cause": "rate cuts", "effect": "multiple expansion", "strength": "strong", "confidence": "high", "conditions": "inflation stays low"}],
		"key_factors": ["monetary policy"],
		"common_effects": ["higher valuations"],
		"feedback_loops": [{"description": "buybacks", "cycle": ["profits", "buybacks", "price"]}]
	}` + "\n```"}})

	graph, err := analyst.ExtractCausal(context.Background(), "corpus")
	require.NoError(t, err)
	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, "rate cuts", graph.Relationships[0].Cause)
	assert.Len(t, graph.FeedbackLoops, 1)
}

func TestIdentifyNarrativesDegrades(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{responses: []string{"no structure here"}})

	set, err := analyst.IdentifyNarratives(context.Background(), "corpus")
	require.NoError(t, err)
	assert.True(t, set.Degraded)
	assert.NotEmpty(t, set.RawResponse)
}

func TestSummarizeForPersonasFillsMissing(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{responses: []string{`{
		"summaries": {"trader": {"summary": "buy the dip", "key_points": ["support held"], "actionable_insights": ["scalp longs"]}}
	}`}})

	summaries, err := analyst.SummarizeForPersonas(context.Background(), "corpus")
	require.NoError(t, err)
	assert.Equal(t, "buy the dip", summaries.Summaries["trader"].Summary)
	for _, persona := range []string{"portfolio_manager", "retail_investor", "executive"} {
		require.NotNil(t, summaries.Summaries[persona], persona)
	}
}

func TestAnalyzeEmptyCorpus(t *testing.T) {
	analyst := NewIntelligenceAnalyst(&scriptedModel{})

	result := analyst.Analyze(context.Background(), "t1", "")
	assert.Equal(t, "no data collected to analyze", result.Summary)
	assert.Nil(t, result.Sentiment)
}
