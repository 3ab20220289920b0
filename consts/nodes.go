package consts

// Orchestration graph nodes.
const (
	PlanTasks        = "plan_tasks"
	SelectNextTask   = "select_next_task"
	CollectData      = "collect_data"
	AnalyzeData      = "analyze_data"
	AssessRisks      = "assess_risks"
	SynthesizeReport = "synthesize_report"
)

// Agent roles.
const (
	AgentStrategist          = "Strategist"
	AgentOrchestrator        = "Orchestrator"
	AgentNarrativeHunter     = "Narrative Hunter"
	AgentQuantAnalyst        = "Quantitative Analyst"
	AgentIntelligenceAnalyst = "Intelligence Analyst"
	AgentRiskAnalyst         = "Risk Analyst"
)

// Task types produced by the planner.
const (
	TaskDataCollection = "data_collection"
	TaskAnalysis       = "analysis"
	TaskRiskAssessment = "risk_assessment"
	TaskSynthesis      = "synthesis"
)

// Task priorities, highest first.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)
