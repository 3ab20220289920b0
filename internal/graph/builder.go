package graph

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/aletheia-intel/aletheia/consts"
	"github.com/aletheia-intel/aletheia/models"
)

// taskHandOff routes to the node the previous one recorded in state.Goto.
func taskHandOff(ctx context.Context, input string) (next string, err error) {
	_ = compose.ProcessState[*models.AnalysisState](ctx, func(_ context.Context, state *models.AnalysisState) error {
		next = state.Goto
		return nil
	})
	if next == "" {
		next = compose.END
	}
	return next, nil
}

// buildGraph wires the analysis pipeline: plan once, then loop through the
// scheduler until no task remains. The graph input is the directive and the
// output is the synthesized report content.
func (o *Orchestrator) buildGraph(ctx context.Context) (compose.Runnable[string, string], error) {
	g := compose.NewGraph[string, string](
		compose.WithGenLocalState(func(ctx context.Context) *models.AnalysisState {
			return models.NewAnalysisState("", int(o.maxIterations.Load()))
		}),
	)

	outMap := map[string]bool{
		consts.SelectNextTask:   true,
		consts.CollectData:      true,
		consts.AnalyzeData:      true,
		consts.AssessRisks:      true,
		consts.SynthesizeReport: true,
		compose.END:             true,
	}

	_ = g.AddLambdaNode(consts.PlanTasks, compose.InvokableLambda(o.planNode), compose.WithNodeName(consts.PlanTasks))
	_ = g.AddLambdaNode(consts.SelectNextTask, compose.InvokableLambda(o.selectNode), compose.WithNodeName(consts.SelectNextTask))
	_ = g.AddLambdaNode(consts.CollectData, compose.InvokableLambda(o.collectNode), compose.WithNodeName(consts.CollectData))
	_ = g.AddLambdaNode(consts.AnalyzeData, compose.InvokableLambda(o.analyzeNode), compose.WithNodeName(consts.AnalyzeData))
	_ = g.AddLambdaNode(consts.AssessRisks, compose.InvokableLambda(o.risksNode), compose.WithNodeName(consts.AssessRisks))
	_ = g.AddLambdaNode(consts.SynthesizeReport, compose.InvokableLambda(o.synthesizeNode), compose.WithNodeName(consts.SynthesizeReport))

	_ = g.AddBranch(consts.PlanTasks, compose.NewGraphBranch(taskHandOff, outMap))
	_ = g.AddBranch(consts.SelectNextTask, compose.NewGraphBranch(taskHandOff, outMap))
	_ = g.AddBranch(consts.CollectData, compose.NewGraphBranch(taskHandOff, outMap))
	_ = g.AddBranch(consts.AnalyzeData, compose.NewGraphBranch(taskHandOff, outMap))
	_ = g.AddBranch(consts.AssessRisks, compose.NewGraphBranch(taskHandOff, outMap))
	_ = g.AddBranch(consts.SynthesizeReport, compose.NewGraphBranch(taskHandOff, outMap))

	_ = g.AddEdge(compose.START, consts.PlanTasks)

	return g.Compile(ctx,
		compose.WithGraphName("Aletheia-MarketIntelligence"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
	)
}
