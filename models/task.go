package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority is a 1-5 scale, 1 being the most urgent. The string labels
// used by some clients map onto the numeric scale at the HTTP boundary.
type TaskPriority int

const (
	PriorityUrgent TaskPriority = 1
	PriorityHigh   TaskPriority = 2
	PriorityMedium TaskPriority = 3
	PriorityLow    TaskPriority = 4
	PriorityLowest TaskPriority = 5
)

// ValidPriority reports whether p is within the 1-5 scale.
func ValidPriority(p TaskPriority) bool {
	return p >= PriorityUrgent && p <= PriorityLowest
}

// ParsePriority maps the label form (urgent/high/medium/low) onto the
// numeric scale. Returns 0 for unknown labels.
func ParsePriority(label string) TaskPriority {
	switch label {
	case "urgent":
		return PriorityUrgent
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	}
	return 0
}

type Task struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description" bson:"description"`
	Status      TaskStatus          `json:"status" bson:"status"`
	Priority    TaskPriority        `json:"priority,omitempty" bson:"priority,omitempty"`
	LabelIDs    []string            `json:"labelIds,omitempty" bson:"labelIds,omitempty"`
	CreatedBy   primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	ProjectID   *primitive.ObjectID `json:"projectId,omitempty" bson:"projectId,omitempty"`
	AssigneeID  *primitive.ObjectID `json:"assigneeId,omitempty" bson:"assigneeId,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`

	// AISuggestions holds the latest analysis suggestions for the task.
	// Written after create/update analysis; never required to be present.
	AISuggestions *TaskSuggestions `json:"aiSuggestions,omitempty" bson:"aiSuggestions,omitempty"`
}

// TaskUpdate carries the mutable fields of a task update request. Pointer
// fields distinguish "not supplied" from an explicit zero value.
type TaskUpdate struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *TaskStatus          `json:"status,omitempty"`
	Priority    *TaskPriority        `json:"priority,omitempty"`
	LabelIDs    []string             `json:"labelIds,omitempty"`
	ProjectID   *primitive.ObjectID  `json:"projectId,omitempty"`
	AssigneeID  *primitive.ObjectID  `json:"assigneeId,omitempty"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
}

// TaskFilters are the caller-supplied filters for listing tasks. All of them
// compose conjunctively with the visibility restriction, except Search which
// shares the visibility $or (see repositories.TaskRepository.FindTasks).
type TaskFilters struct {
	Status     []TaskStatus
	Priority   []TaskPriority
	ProjectID  *primitive.ObjectID
	AssigneeID *primitive.ObjectID
	DueFrom    *time.Time
	DueTo      *time.Time
	LabelIDs   []string
	Search     string
}

type Pagination struct {
	Page  int
	Limit int
}

type SortOption struct {
	Field string
	Asc   bool
}
