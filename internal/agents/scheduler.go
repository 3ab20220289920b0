package agents

import (
	"github.com/aletheia-intel/aletheia/models"
)

// SelectNextTask picks the task to run next. Pending tasks whose
// dependencies are satisfied compete on priority; when nothing is
// runnable but collection is still pending, collection goes first to
// unblock the rest. Returns nil when every task is done.
func SelectNextTask(state *models.AnalysisState) *models.Task {
	byID := make(map[string]*models.Task, len(state.Tasks))
	for _, task := range state.Tasks {
		byID[task.TaskID] = task
	}

	var best *models.Task
	var fallback *models.Task
	for _, task := range state.Tasks {
		if state.TaskDone(task) {
			continue
		}
		if dependenciesSatisfied(state, task, byID) {
			if best == nil || models.PriorityRank(task.Priority) < models.PriorityRank(best.Priority) {
				best = task
			}
			continue
		}
		// Blocked collection work is still startable: it has no real
		// inputs, only ordering hints.
		if task.TaskType == "data_collection" && fallback == nil {
			fallback = task
		}
	}

	if best != nil {
		return best
	}
	return fallback
}

func dependenciesSatisfied(state *models.AnalysisState, task *models.Task, byID map[string]*models.Task) bool {
	for _, dep := range task.RequiredData {
		depTask, ok := byID[dep]
		if !ok {
			// Unknown dependency: treat as satisfied rather than
			// deadlocking the plan.
			continue
		}
		if !state.TaskDone(depTask) {
			return false
		}
	}
	return true
}

// PlanComplete reports whether every task has produced its output.
func PlanComplete(state *models.AnalysisState) bool {
	for _, task := range state.Tasks {
		if !state.TaskDone(task) {
			return false
		}
	}
	return len(state.Tasks) > 0
}
