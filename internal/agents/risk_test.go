package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindContradictoryEvidenceParses(t *testing.T) {
	analyst := NewRiskAnalyst(&scriptedModel{responses: []string{`{
		"contradictory_evidence": [{"evidence": "inventory building", "contradiction_type": "direct", "strength": "moderate", "source": "filing", "implications": "demand weaker than narrated"}],
		"alternative_narratives": [{"narrative": "pull-forward demand", "supporting_evidence": ["order timing"], "probability": "medium"}],
		"logical_weaknesses": [{"weakness": "survivorship bias", "explanation": "only winners quoted"}],
		"overall_assessment": "narrative is fragile"
	}`}})

	report, err := analyst.FindContradictoryEvidence(context.Background(), "AI demand is insatiable", "corpus")
	require.NoError(t, err)
	assert.False(t, report.Degraded)
	require.Len(t, report.Evidence, 1)
	assert.Equal(t, "direct", report.Evidence[0].ContradictionType)
	assert.Equal(t, "narrative is fragile", report.OverallAssessment)
}

func TestIdentifyBlackSwansDegrades(t *testing.T) {
	analyst := NewRiskAnalyst(&scriptedModel{responses: []string{"nothing unusual detected in prose form"}})

	report, err := analyst.IdentifyBlackSwans(context.Background(), "corpus")
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	require.Len(t, report.Signals, 1)
	assert.Equal(t, "unknown", report.Signals[0].Probability)
}

func TestAssessGeopoliticalUnwrapsNestedScore(t *testing.T) {
	analyst := NewRiskAnalyst(&scriptedModel{responses: []string{`{
		"overall_risk_score": {"score": 12.5, "assessment": "elevated"},
		"risk_factors": [{"factor": "export controls", "description": "...", "current_status": "tightening", "potential_triggers": ["election"], "sector_impact": "high", "mitigation_strategies": ["diversify"], "risk_score": -1}],
		"key_monitoring_indicators": ["tariff announcements"],
		"scenario_analysis": [{"scenario": "escalation", "probability": "low", "impact": "severe"}],
		"historical_precedents": ["2018 tariffs"]
	}`}})

	assessment, err := analyst.AssessGeopolitical(context.Background(), "", "semiconductors", "corpus")
	require.NoError(t, err)
	assert.Equal(t, "global", assessment.Region)
	// Scores are clamped to the 0-10 scale.
	assert.Equal(t, 10.0, assessment.OverallScore)
	require.Len(t, assessment.RiskFactors, 1)
	assert.Equal(t, 0.0, assessment.RiskFactors[0].RiskScore)
	assert.Equal(t, "elevated", assessment.Assessment)
}

func TestAssessEmptyCorpus(t *testing.T) {
	analyst := NewRiskAnalyst(&scriptedModel{})

	assessment := analyst.Assess(context.Background(), "", "US", "tech", "")
	assert.Nil(t, assessment.Contrarian)
	assert.Nil(t, assessment.BlackSwans)
	assert.False(t, assessment.Timestamp.IsZero())
}
