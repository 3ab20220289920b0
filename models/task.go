package models

import "github.com/aletheia-intel/aletheia/consts"

// Task is one unit of work planned from a directive.
type Task struct {
	TaskID       string   `json:"task_id"`
	TaskType     string   `json:"task_type"`
	Description  string   `json:"description"`
	RequiredData []string `json:"required_data,omitempty"`
	Priority     string   `json:"priority"`
}

// PriorityRank orders priorities High > Medium > Low; unknown values sort last.
func PriorityRank(priority string) int {
	switch priority {
	case consts.PriorityHigh:
		return 0
	case consts.PriorityMedium:
		return 1
	case consts.PriorityLow:
		return 2
	default:
		return 3
	}
}

// DefaultTaskPlan is the fallback plan used when the planner response cannot
// be parsed.
func DefaultTaskPlan() []*Task {
	return []*Task{
		{
			TaskID:      "collect_market_data",
			TaskType:    consts.TaskDataCollection,
			Description: "Collect relevant market data",
			Priority:    consts.PriorityHigh,
		},
		{
			TaskID:       "analyze_sentiment",
			TaskType:     consts.TaskAnalysis,
			Description:  "Analyze market sentiment",
			RequiredData: []string{"collect_market_data"},
			Priority:     consts.PriorityMedium,
		},
		{
			TaskID:       "assess_risks",
			TaskType:     consts.TaskRiskAssessment,
			Description:  "Identify potential risks",
			RequiredData: []string{"collect_market_data"},
			Priority:     consts.PriorityMedium,
		},
		{
			TaskID:       "generate_report",
			TaskType:     consts.TaskSynthesis,
			Description:  "Generate final report",
			RequiredData: []string{"collect_market_data", "analyze_sentiment", "assess_risks"},
			Priority:     consts.PriorityLow,
		},
	}
}
