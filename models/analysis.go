package models

import "time"

// Effort and risk levels the analyzer may return. Anything outside this set
// is dropped during normalization.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// TaskSuggestions are the advisory outputs of a task analysis. Empty fields
// mean the analyzer had nothing to say about them.
type TaskSuggestions struct {
	EstimatedEffort   string       `json:"estimatedEffort,omitempty" bson:"estimatedEffort,omitempty"`
	SuggestedPriority TaskPriority `json:"suggestedPriority,omitempty" bson:"suggestedPriority,omitempty"`
	DependsOn         []string     `json:"dependsOn,omitempty" bson:"dependsOn,omitempty"`
	Skills            []string     `json:"skills,omitempty" bson:"skills,omitempty"`
	Risk              string       `json:"risk,omitempty" bson:"risk,omitempty"`
	SplitSuggestion   []string     `json:"splitSuggestion,omitempty" bson:"splitSuggestion,omitempty"`
	TimeEstimateMins  int          `json:"timeEstimate,omitempty" bson:"timeEstimate,omitempty"`
}

// Empty reports whether no suggestion field is populated.
func (s TaskSuggestions) Empty() bool {
	return s.EstimatedEffort == "" &&
		s.SuggestedPriority == 0 &&
		len(s.DependsOn) == 0 &&
		len(s.Skills) == 0 &&
		s.Risk == "" &&
		len(s.SplitSuggestion) == 0 &&
		s.TimeEstimateMins == 0
}

// SuggestedChanges are mutations the analyzer proposes to apply to the task
// itself. Only priority survives normalization; the service never applies
// arbitrary remote-suggested mutations.
type SuggestedChanges struct {
	Priority TaskPriority `json:"priority,omitempty"`
}

type TaskAnalysis struct {
	Suggestions      TaskSuggestions   `json:"suggestions"`
	SuggestedChanges *SuggestedChanges `json:"suggestedChanges,omitempty"`
	Confidence       float64           `json:"confidence"`
}

type WorkloadStatus string

const (
	WorkloadUnderutilized WorkloadStatus = "underutilized"
	WorkloadBalanced      WorkloadStatus = "balanced"
	WorkloadOverloaded    WorkloadStatus = "overloaded"
)

type UserWorkload struct {
	UserID         string         `json:"userId"`
	Status         WorkloadStatus `json:"status"`
	Recommendation string         `json:"recommendation"`
}

type TaskRecommendation struct {
	TaskID                string       `json:"taskId"`
	RecommendedAssigneeID string       `json:"recommendedAssigneeId,omitempty"`
	RecommendedDueDate    *time.Time   `json:"recommendedDueDate,omitempty"`
	RecommendedPriority   TaskPriority `json:"recommendedPriority,omitempty"`
	Reasoning             string       `json:"reasoning"`
}

type WorkloadAnalysis struct {
	OverallAssessment   string               `json:"overallAssessment"`
	UserWorkloads       []UserWorkload       `json:"userWorkloads"`
	TaskRecommendations []TaskRecommendation `json:"taskRecommendations"`
}

type PlannedTask struct {
	TaskID    string `json:"taskId"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Reasoning string `json:"reasoning"`
}

type PlanDay struct {
	Date  string        `json:"date"`
	Tasks []PlannedTask `json:"tasks"`
}

type WeeklyPlan struct {
	Days             []PlanDay `json:"days"`
	UnscheduledTasks []string  `json:"unscheduledTasks"`
	Summary          string    `json:"summary"`
}

// TimeRange bounds a workload analysis window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
