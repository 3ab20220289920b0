package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/internal/llm"
	"github.com/aletheia-intel/aletheia/models"
)

const plannerSystemPrompt = `You are the planning function of a market intelligence unit.
Decompose the directive into concrete tasks. Respond ONLY with a JSON array of task objects:
[
  {
    "task_id": "short_snake_case_id",
    "task_type": "data_collection" | "analysis" | "risk_assessment" | "synthesis",
    "description": "what the task must accomplish",
    "required_data": ["task_id of any task whose output this one consumes"],
    "priority": "High" | "Medium" | "Low"
  }
]
Rules:
- data_collection tasks have no required_data.
- analysis tasks require the collection tasks they read from.
- risk_assessment requires the analysis output.
- exactly one synthesis task, requiring everything else, priority Low.
- at most 8 tasks.`

// Planner decomposes a directive into an executable task plan.
type Planner struct {
	model llm.ChatModel
}

// NewPlanner creates a planner over the deep-think model.
func NewPlanner(model llm.ChatModel) *Planner {
	return &Planner{model: model}
}

// PlanTasks asks the model for a task decomposition. A malformed or
// failed response falls back to the standard four-task plan so a bad
// model answer never stalls an analysis.
func (p *Planner) PlanTasks(ctx context.Context, directive string) []*models.Task {
	resp, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(plannerSystemPrompt),
		schema.UserMessage(fmt.Sprintf("Directive: %s", directive)),
	})
	if err != nil {
		log.Warn().Err(err).Msg("planner model call failed, using default plan")
		return models.DefaultTaskPlan()
	}

	var tasks []*models.Task
	if err := ParseJSONResponse(resp.Content, &tasks); err != nil {
		log.Warn().Err(err).Msg("planner returned unusable JSON, using default plan")
		return models.DefaultTaskPlan()
	}

	tasks = sanitizeTasks(tasks)
	if len(tasks) == 0 {
		return models.DefaultTaskPlan()
	}
	return tasks
}

// sanitizeTasks drops tasks the scheduler cannot execute and clamps
// the plan size.
func sanitizeTasks(tasks []*models.Task) []*models.Task {
	valid := map[string]bool{
		"data_collection": true,
		"analysis":        true,
		"risk_assessment": true,
		"synthesis":       true,
	}
	ids := make(map[string]bool, len(tasks))

	out := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task == nil || task.TaskID == "" || !valid[task.TaskType] || ids[task.TaskID] {
			continue
		}
		if task.Priority != "High" && task.Priority != "Medium" && task.Priority != "Low" {
			task.Priority = "Medium"
		}
		ids[task.TaskID] = true
		out = append(out, task)
		if len(out) == 8 {
			break
		}
	}

	// Dependencies on unknown tasks can never be satisfied.
	for _, task := range out {
		deps := task.RequiredData[:0]
		for _, dep := range task.RequiredData {
			if ids[dep] {
				deps = append(deps, dep)
			}
		}
		task.RequiredData = deps
	}
	return out
}
