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

// RiskAnalyst challenges the main narrative and hunts for tail risks.
type RiskAnalyst struct {
	model llm.ChatModel
}

// NewRiskAnalyst creates the analyst over the deep-think model.
func NewRiskAnalyst(model llm.ChatModel) *RiskAnalyst {
	return &RiskAnalyst{model: model}
}

const contrarianPrompt = `You are a contrarian risk analyst. Your job is to find evidence that contradicts or challenges the main market narrative.

Main Narrative:
%s

Data to analyze for contradictory evidence:
%s

Find and analyze evidence that contradicts or challenges the main narrative. Focus on:
1. Direct contradictions to key claims
2. Alternative explanations for the same phenomena
3. Historical precedents where similar narratives were wrong
4. Logical fallacies or weaknesses in the narrative
5. Data points that don't fit the narrative

Respond ONLY in JSON with this structure:
{
  "contradictory_evidence": [{"evidence": "...", "contradiction_type": "...", "strength": "...", "source": "...", "implications": "..."}],
  "alternative_narratives": [{"narrative": "...", "supporting_evidence": ["..."], "probability": "..."}],
  "logical_weaknesses": [{"weakness": "...", "explanation": "..."}],
  "overall_assessment": "..."
}`

// FindContradictoryEvidence challenges mainNarrative against the
// corpus. Unparseable responses degrade instead of failing.
func (ra *RiskAnalyst) FindContradictoryEvidence(ctx context.Context, mainNarrative, corpus string) (*models.ContrarianReport, error) {
	if mainNarrative == "" {
		mainNarrative = "no dominant narrative identified"
	}
	resp, err := ra.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(contrarianPrompt, mainNarrative, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("contrarian analysis failed: %w", err)
	}

	var report models.ContrarianReport
	if err := ParseJSONResponse(resp.Content, &report); err != nil {
		log.Warn().Err(err).Msg("contrarian response unparseable, degrading")
		return &models.ContrarianReport{
			Evidence: []*models.ContradictoryEvidence{{
				Evidence: "parsing error", ContradictionType: "parsing error", Strength: "unknown",
			}},
			OverallAssessment: "parsing error",
			Degraded:          true,
			RawResponse:       resp.Content,
		}, nil
	}
	return &report, nil
}

const blackSwanPrompt = `You are a risk analyst specializing in identifying potential "black swan" events: rare, high-impact, hard-to-predict events that could significantly disrupt markets.

Data to analyze for black swan signals:
%s

Identify potential black swan signals in this data. Focus on:
1. Low-probability but high-impact events mentioned in marginal sources
2. Unusual patterns or anomalies that don't fit conventional models
3. Emerging risks that are being underestimated by the market
4. Historical parallels to previous black swan events
5. Potential cascade effects or non-linear consequences

Respond ONLY in JSON with this structure:
{
  "black_swan_signals": [{"signal": "...", "source": "...", "probability": "...", "potential_impact": "...", "early_warning_indicators": ["..."], "historical_parallels": "..."}],
  "risk_clusters": [{"cluster_name": "...", "related_signals": ["..."], "systemic_implications": "..."}],
  "blind_spots": [{"area": "...", "explanation": "..."}],
  "overall_assessment": "..."
}`

// IdentifyBlackSwans scans the corpus for tail-risk signals.
func (ra *RiskAnalyst) IdentifyBlackSwans(ctx context.Context, corpus string) (*models.BlackSwanReport, error) {
	resp, err := ra.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(blackSwanPrompt, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("black swan scan failed: %w", err)
	}

	var report models.BlackSwanReport
	if err := ParseJSONResponse(resp.Content, &report); err != nil {
		log.Warn().Err(err).Msg("black swan response unparseable, degrading")
		return &models.BlackSwanReport{
			Signals: []*models.BlackSwanSignal{{
				Signal: "parsing error", Probability: "unknown",
				EarlyWarningIndicators: []string{"parsing error"},
			}},
			OverallAssessment: "parsing error",
			Degraded:          true,
			RawResponse:       resp.Content,
		}, nil
	}
	return &report, nil
}

const geopoliticalPrompt = `You are a geopolitical risk analyst. Assess the geopolitical risks affecting a specific region/country and sector.

Region/Country: %s
Sector: %s

Data to analyze for geopolitical risks:
%s

Focus on political stability, regulatory and policy risks, international relations and trade tensions, social and demographic factors, and resource security. For each risk factor provide a description, current status, potential escalation triggers, the likely sector impact, mitigation strategies, and a 0-10 risk score.

Respond ONLY in JSON with this structure:
{
  "overall_risk_score": {"score": 0.0, "assessment": "..."},
  "risk_factors": [{"factor": "...", "description": "...", "current_status": "...", "potential_triggers": ["..."], "sector_impact": "...", "mitigation_strategies": ["..."], "risk_score": 0.0}],
  "key_monitoring_indicators": ["..."],
  "scenario_analysis": [{"scenario": "...", "probability": "...", "impact": "..."}],
  "historical_precedents": ["..."]
}`

// geopoliticalWire matches the model's response shape, which nests the
// overall score.
type geopoliticalWire struct {
	OverallRiskScore struct {
		Score      float64 `json:"score"`
		Assessment string  `json:"assessment"`
	} `json:"overall_risk_score"`
	RiskFactors          []*models.GeopoliticalRiskFactor `json:"risk_factors"`
	MonitoringIndicators []string                         `json:"key_monitoring_indicators"`
	Scenarios            []*models.ScenarioOutcome        `json:"scenario_analysis"`
	HistoricalPrecedents []string                         `json:"historical_precedents"`
}

// AssessGeopolitical scores a region and sector on a 0-10 scale.
func (ra *RiskAnalyst) AssessGeopolitical(ctx context.Context, region, sector, corpus string) (*models.GeopoliticalAssessment, error) {
	if region == "" {
		region = "global"
	}
	if sector == "" {
		sector = "broad market"
	}

	resp, err := ra.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(geopoliticalPrompt, region, sector, corpus)),
	})
	if err != nil {
		return nil, fmt.Errorf("geopolitical assessment failed: %w", err)
	}

	assessment := &models.GeopoliticalAssessment{Region: region, Sector: sector}

	var wire geopoliticalWire
	if err := ParseJSONResponse(resp.Content, &wire); err != nil {
		log.Warn().Err(err).Msg("geopolitical response unparseable, degrading")
		assessment.OverallScore = 5.0
		assessment.Assessment = "parsing error"
		assessment.Degraded = true
		assessment.RawResponse = resp.Content
		return assessment, nil
	}

	assessment.OverallScore = clampScore(wire.OverallRiskScore.Score)
	assessment.Assessment = wire.OverallRiskScore.Assessment
	assessment.RiskFactors = wire.RiskFactors
	for _, factor := range assessment.RiskFactors {
		factor.RiskScore = clampScore(factor.RiskScore)
	}
	assessment.MonitoringIndicators = wire.MonitoringIndicators
	assessment.Scenarios = wire.Scenarios
	assessment.HistoricalPrecedents = wire.HistoricalPrecedents
	return assessment, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Assess runs the full risk pass: contrarian review of the dominant
// narrative, black swan scan and a geopolitical assessment.
func (ra *RiskAnalyst) Assess(ctx context.Context, mainNarrative, region, sector, corpus string) *models.RiskAssessment {
	assessment := &models.RiskAssessment{Timestamp: time.Now().UTC()}
	if corpus == "" {
		return assessment
	}

	var err error
	if assessment.Contrarian, err = ra.FindContradictoryEvidence(ctx, mainNarrative, corpus); err != nil {
		log.Error().Err(err).Msg("contrarian pass failed")
	}
	if assessment.BlackSwans, err = ra.IdentifyBlackSwans(ctx, corpus); err != nil {
		log.Error().Err(err).Msg("black swan pass failed")
	}
	if assessment.Geopolitical, err = ra.AssessGeopolitical(ctx, region, sector, corpus); err != nil {
		log.Error().Err(err).Msg("geopolitical pass failed")
	}
	return assessment
}
