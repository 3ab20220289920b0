package models

// SentimentDimension scores one emotional axis from -5 to +5.
type SentimentDimension struct {
	Score      float64  `json:"score"`
	KeyPhrases []string `json:"key_phrases"`
}

// SentimentReport is the multi-dimensional sentiment analysis of a corpus.
type SentimentReport struct {
	OverallSentiment string                         `json:"overall_sentiment"`
	SentimentScore   float64                        `json:"sentiment_score"`
	Dimensions       map[string]*SentimentDimension `json:"dimensions"`
	Trend            string                         `json:"trend"`
	NotableOutliers  []string                       `json:"notable_outliers"`
	Degraded         bool                           `json:"degraded,omitempty"`
	RawResponse      string                         `json:"raw_response,omitempty"`
}

// CausalRelationship is one extracted cause-effect pair.
type CausalRelationship struct {
	Cause      string `json:"cause"`
	Effect     string `json:"effect"`
	Strength   string `json:"strength"`   // strong, moderate, weak
	Confidence string `json:"confidence"` // high, medium, low
	Conditions string `json:"conditions,omitempty"`
}

// FeedbackLoop is a closed causal cycle.
type FeedbackLoop struct {
	Description string   `json:"description"`
	Cycle       []string `json:"cycle"`
}

// CausalGraph groups the causal structure extracted from a corpus.
type CausalGraph struct {
	Relationships []*CausalRelationship `json:"causal_relationships"`
	KeyFactors    []string              `json:"key_factors"`
	CommonEffects []string              `json:"common_effects"`
	FeedbackLoops []*FeedbackLoop       `json:"feedback_loops"`
	Degraded      bool                  `json:"degraded,omitempty"`
	RawResponse   string                `json:"raw_response,omitempty"`
}

// Narrative is one market narrative with its evidence.
type Narrative struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	SupportingEvidence []string `json:"supporting_evidence"`
	CounterEvidence    []string `json:"counter_evidence,omitempty"`
	MarketImplications string   `json:"market_implications"`
}

// NarrativeShift records one narrative displacing another.
type NarrativeShift struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Catalyst string `json:"catalyst"`
}

// NarrativeSet is the narrative landscape identified in a corpus.
type NarrativeSet struct {
	Dominant    []*Narrative      `json:"dominant_narratives"`
	Competing   []*Narrative      `json:"competing_narratives"`
	Emerging    []*Narrative      `json:"emerging_narratives"`
	Shifts      []*NarrativeShift `json:"narrative_shifts"`
	Degraded    bool              `json:"degraded,omitempty"`
	RawResponse string            `json:"raw_response,omitempty"`
}

// PersonaSummary is a summary tailored to one audience.
type PersonaSummary struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"key_points"`
	ActionableInsights []string `json:"actionable_insights"`
}

// PersonaSummaries maps persona name to its tailored summary.
type PersonaSummaries struct {
	Summaries   map[string]*PersonaSummary `json:"summaries"`
	Degraded    bool                       `json:"degraded,omitempty"`
	RawResponse string                     `json:"raw_response,omitempty"`
}
