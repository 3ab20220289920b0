package graph

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/models"
)

// Persistence is best effort; a store outage degrades the run to
// in-memory only instead of failing it.

func (o *Orchestrator) persistCollected(ctx context.Context, data *models.CollectedData) {
	if o.store != nil {
		for _, summary := range data.Market {
			name := summary.CompanyName
			if name == "" {
				name = summary.Ticker
			}
			assetID, err := o.store.UpsertAsset(ctx, summary.Ticker, name, "stock")
			if err != nil {
				log.Warn().Err(err).Str("ticker", summary.Ticker).Msg("failed to persist asset")
				continue
			}
			if err := o.store.SavePrices(ctx, assetID, summary.Bars); err != nil {
				log.Warn().Err(err).Str("ticker", summary.Ticker).Msg("failed to persist prices")
			}
		}
		for _, article := range data.News {
			if _, err := o.store.SaveNews(ctx, article, nil); err != nil {
				log.Warn().Err(err).Str("title", article.Title).Msg("failed to persist article")
			}
		}
		for _, series := range data.Economic {
			if err := o.store.SaveEconomicSeries(ctx, series); err != nil {
				log.Warn().Err(err).Str("series", series.IndicatorID).Msg("failed to persist series")
			}
		}
	}

	if o.vectors != nil {
		texts := make([]string, 0, len(data.News))
		metas := make([]map[string]interface{}, 0, len(data.News))
		for _, article := range data.News {
			body := article.Content
			if body == "" {
				body = article.Description
			}
			texts = append(texts, article.Title+"\n"+body)
			metas = append(metas, map[string]interface{}{
				"kind":   "news",
				"source": article.Source,
				"url":    article.URL,
			})
		}
		if len(texts) > 0 {
			if _, err := o.vectors.AddTexts(ctx, texts, metas); err != nil {
				log.Warn().Err(err).Msg("failed to index collected news")
			}
		}
	}
}

func (o *Orchestrator) persistAnalysis(ctx context.Context, result *models.AnalysisResult) {
	if o.store == nil || result == nil {
		return
	}

	if result.Narratives != nil {
		saveNarratives := func(set []*models.Narrative, status string) {
			for _, n := range set {
				strength := float64(len(n.SupportingEvidence))
				if _, err := o.store.SaveNarrative(ctx, n.Title, n.Description, status, strength); err != nil {
					log.Warn().Err(err).Str("narrative", n.Title).Msg("failed to persist narrative")
				}
			}
		}
		saveNarratives(result.Narratives.Dominant, "dominant")
		saveNarratives(result.Narratives.Competing, "competing")
		saveNarratives(result.Narratives.Emerging, "emerging")
	}

	if result.Causal != nil {
		for _, rel := range result.Causal.Relationships {
			if err := o.store.SaveCausalRelationship(ctx, rel); err != nil {
				log.Warn().Err(err).Str("cause", rel.Cause).Msg("failed to persist causal link")
			}
		}
	}
}

func (o *Orchestrator) persistRisks(ctx context.Context, assessment *models.RiskAssessment) {
	if o.store == nil || assessment == nil {
		return
	}

	if assessment.BlackSwans != nil {
		for _, sig := range assessment.BlackSwans.Signals {
			if err := o.store.SaveRisk(ctx, sig.Signal, "black_swan", severityForProbability(sig.Probability), true, sig.EarlyWarningIndicators); err != nil {
				log.Warn().Err(err).Msg("failed to persist black swan signal")
			}
		}
	}
	if geo := assessment.Geopolitical; geo != nil {
		for _, factor := range geo.RiskFactors {
			if err := o.store.SaveRisk(ctx, factor.Factor+": "+factor.Description, "geopolitical", factor.RiskScore, false, nil); err != nil {
				log.Warn().Err(err).Msg("failed to persist geopolitical risk")
			}
		}
	}
}

// severityForProbability maps the model's qualitative probability onto the
// 0-10 severity scale the risks table uses. Black swans are low probability
// but high impact, so even "low" lands mid-scale.
func severityForProbability(probability string) float64 {
	switch probability {
	case "high":
		return 9
	case "medium":
		return 7
	default:
		return 5
	}
}

func (o *Orchestrator) persistReport(ctx context.Context, report *models.Report) {
	if o.store != nil {
		if err := o.store.SaveReport(ctx, report, nil); err != nil {
			log.Warn().Err(err).Str("report_id", report.ID).Msg("failed to persist report")
		}
	}
	if o.vectors != nil {
		meta := map[string]interface{}{
			"kind":      "report",
			"report_id": report.ID,
			"directive": report.Directive,
		}
		text := fmt.Sprintf("%s\n\n%s", report.Title, report.Content)
		if _, err := o.vectors.AddTexts(ctx, []string{text}, []map[string]interface{}{meta}); err != nil {
			log.Warn().Err(err).Str("report_id", report.ID).Msg("failed to index report")
		}
	}
}
