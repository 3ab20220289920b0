package models

import "time"

// ContradictoryEvidence is one data point challenging the main narrative.
type ContradictoryEvidence struct {
	Evidence          string `json:"evidence"`
	ContradictionType string `json:"contradiction_type"`
	Strength          string `json:"strength"`
	Source            string `json:"source"`
	Implications      string `json:"implications"`
}

// AlternativeNarrative is a competing explanation with its likelihood.
type AlternativeNarrative struct {
	Narrative          string   `json:"narrative"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Probability        string   `json:"probability"`
}

// LogicalWeakness is a flaw in the main narrative's reasoning.
type LogicalWeakness struct {
	Weakness    string `json:"weakness"`
	Explanation string `json:"explanation"`
}

// ContrarianReport is the contradictory-evidence review of a narrative.
type ContrarianReport struct {
	Evidence              []*ContradictoryEvidence `json:"contradictory_evidence"`
	AlternativeNarratives []*AlternativeNarrative  `json:"alternative_narratives"`
	LogicalWeaknesses     []*LogicalWeakness       `json:"logical_weaknesses"`
	OverallAssessment     string                   `json:"overall_assessment"`
	Degraded              bool                     `json:"degraded,omitempty"`
	RawResponse           string                   `json:"raw_response,omitempty"`
}

// BlackSwanSignal is one low-probability high-impact signal.
type BlackSwanSignal struct {
	Signal                 string   `json:"signal"`
	Source                 string   `json:"source"`
	Probability            string   `json:"probability"`
	PotentialImpact        string   `json:"potential_impact"`
	EarlyWarningIndicators []string `json:"early_warning_indicators"`
	HistoricalParallels    string   `json:"historical_parallels"`
}

// RiskCluster groups related signals with systemic reach.
type RiskCluster struct {
	ClusterName          string   `json:"cluster_name"`
	RelatedSignals       []string `json:"related_signals"`
	SystemicImplications string   `json:"systemic_implications"`
}

// BlindSpot is an area the market is not watching.
type BlindSpot struct {
	Area        string `json:"area"`
	Explanation string `json:"explanation"`
}

// BlackSwanReport is the black-swan scan over a corpus.
type BlackSwanReport struct {
	Signals           []*BlackSwanSignal `json:"black_swan_signals"`
	RiskClusters      []*RiskCluster     `json:"risk_clusters"`
	BlindSpots        []*BlindSpot       `json:"blind_spots"`
	OverallAssessment string             `json:"overall_assessment"`
	Degraded          bool               `json:"degraded,omitempty"`
	RawResponse       string             `json:"raw_response,omitempty"`
}

// GeopoliticalRiskFactor is one scored geopolitical risk.
type GeopoliticalRiskFactor struct {
	Factor               string   `json:"factor"`
	Description          string   `json:"description"`
	CurrentStatus        string   `json:"current_status"`
	PotentialTriggers    []string `json:"potential_triggers"`
	SectorImpact         string   `json:"sector_impact"`
	MitigationStrategies []string `json:"mitigation_strategies"`
	RiskScore            float64  `json:"risk_score"` // 0-10
}

// ScenarioOutcome is one scenario in the geopolitical analysis.
type ScenarioOutcome struct {
	Scenario    string `json:"scenario"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
}

// GeopoliticalAssessment scores a region and sector on a 0-10 scale.
type GeopoliticalAssessment struct {
	Region               string                    `json:"region"`
	Sector               string                    `json:"sector"`
	OverallScore         float64                   `json:"overall_risk_score"`
	Assessment           string                    `json:"assessment"`
	RiskFactors          []*GeopoliticalRiskFactor `json:"risk_factors"`
	MonitoringIndicators []string                  `json:"key_monitoring_indicators"`
	Scenarios            []*ScenarioOutcome        `json:"scenario_analysis"`
	HistoricalPrecedents []string                  `json:"historical_precedents"`
	Degraded             bool                      `json:"degraded,omitempty"`
	RawResponse          string                    `json:"raw_response,omitempty"`
}

// RiskAssessment aggregates the risk analyst's outputs for one run.
type RiskAssessment struct {
	Timestamp    time.Time               `json:"timestamp"`
	Contrarian   *ContrarianReport       `json:"contrarian,omitempty"`
	BlackSwans   *BlackSwanReport        `json:"black_swans,omitempty"`
	Geopolitical *GeopoliticalAssessment `json:"geopolitical,omitempty"`
}
