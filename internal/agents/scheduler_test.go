package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/models"
)

func defaultState() *models.AnalysisState {
	state := models.NewAnalysisState("assess NVDA", 32)
	state.Tasks = models.DefaultTaskPlan()
	return state
}

func TestSelectNextTaskStartsWithCollection(t *testing.T) {
	state := defaultState()

	task := SelectNextTask(state)
	require.NotNil(t, task)
	assert.Equal(t, "collect_market_data", task.TaskID)
	assert.Equal(t, "data_collection", task.TaskType)
}

func TestSelectNextTaskGatesOnDependencies(t *testing.T) {
	state := defaultState()

	// Collection done unlocks analysis, the highest-priority runnable.
	state.Collected["collect_market_data"] = &models.CollectedData{TaskID: "collect_market_data", Timestamp: time.Now()}

	task := SelectNextTask(state)
	require.NotNil(t, task)
	assert.Equal(t, "analysis", task.TaskType)
}

func TestSelectNextTaskPriorityOrder(t *testing.T) {
	state := models.NewAnalysisState("test", 32)
	state.Tasks = []*models.Task{
		{TaskID: "low", TaskType: "data_collection", Priority: "Low"},
		{TaskID: "high", TaskType: "data_collection", Priority: "High"},
		{TaskID: "medium", TaskType: "data_collection", Priority: "Medium"},
	}

	task := SelectNextTask(state)
	require.NotNil(t, task)
	assert.Equal(t, "high", task.TaskID)
}

func TestSelectNextTaskFallsBackToBlockedCollection(t *testing.T) {
	state := models.NewAnalysisState("test", 32)
	state.Tasks = []*models.Task{
		{TaskID: "analyze", TaskType: "analysis", Priority: "High", RequiredData: []string{"gather"}},
		{TaskID: "gather", TaskType: "data_collection", Priority: "Low", RequiredData: []string{"analyze"}},
	}

	// The circular dependency leaves nothing cleanly runnable, so the
	// collection task is started to break the deadlock.
	task := SelectNextTask(state)
	require.NotNil(t, task)
	assert.Equal(t, "gather", task.TaskID)
}

func TestSelectNextTaskNilWhenComplete(t *testing.T) {
	state := defaultState()
	state.Collected["collect_market_data"] = &models.CollectedData{}
	for _, task := range state.Tasks {
		if task.TaskType == "analysis" {
			state.AnalysisResults[task.TaskID] = &models.AnalysisResult{}
		}
	}
	state.RiskAssessment = &models.RiskAssessment{}
	state.FinalReport = "done"

	assert.Nil(t, SelectNextTask(state))
	assert.True(t, PlanComplete(state))
}

func TestPlanCompleteEmptyPlan(t *testing.T) {
	state := models.NewAnalysisState("test", 32)
	assert.False(t, PlanComplete(state))
}
