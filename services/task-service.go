package services

import (
	"context"
	"time"

	"taskflow/backend/logging"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// completedReversionWindow is how long after completion a task may still be
// moved back to pending.
const completedReversionWindow = 7 * 24 * time.Hour

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// TaskService owns task CRUD business rules and access control, and triggers
// AI analysis after create/update. Analysis failures never block the primary
// mutation.
type TaskService struct {
	tasks    TaskRepository
	projects ProjectRepository
	analyzer Analyzer
	notifier Notifier
}

func NewTaskService(
	tasks TaskRepository,
	projects ProjectRepository,
	analyzer Analyzer,
	notifier Notifier,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		analyzer: analyzer,
		notifier: notifier,
	}
}

// CreateTaskInput carries the fields accepted for a new task.
type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	LabelIDs    []string            `json:"labelIds,omitempty"`
	ProjectID   *primitive.ObjectID `json:"projectId,omitempty"`
	AssigneeID  *primitive.ObjectID `json:"assigneeId,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
}

// GetTasks lists tasks the user can see, narrowed by the given filters.
// Visibility covers tasks the user created, is assigned, or that belong to a
// project the user is a member of.
func (s *TaskService) GetTasks(
	ctx context.Context,
	userID primitive.ObjectID,
	filters models.TaskFilters,
	page models.Pagination,
	sort models.SortOption,
) ([]models.Task, error) {
	projectIDs, err := s.projects.FindProjectIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindTasks(ctx, userID, projectIDs, filters, page, sort)
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, models.NewNotFound("task not found")
	}

	if err := s.hasAccess(ctx, task, userID, false); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTask validates, persists and analyzes a new task. The analysis step
// is best-effort: once validation and persistence succeed, creation succeeds.
// Auto-applicable suggested changes (priority only) are merged into the
// stored task and the refreshed record is returned.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput, userID primitive.ObjectID) (*models.Task, error) {
	if err := validateCreateTask(input); err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		project, err := s.projects.FindByID(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, models.NewNotFound("project not found")
		}
		if !project.HasMember(userID) {
			return nil, models.NewForbidden("you don't have access to this project")
		}
	}

	now := time.Now()
	status := input.Status
	if status == "" {
		status = models.StatusPending
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    input.Priority,
		LabelIDs:    input.LabelIDs,
		CreatedBy:   userID,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	task, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	if task.AssigneeID != nil && *task.AssigneeID != userID {
		if err := s.notifier.NotifyTaskAssigned(ctx, task); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFY_FAILED, Description: Failed to send assignment notification for task %s: %v", task.ID.Hex(), err)
		}
	}

	analysis := s.analyzer.AnalyzeTask(ctx, task)
	if analysis.SuggestedChanges != nil {
		fields := bson.M{
			"aiSuggestions": analysis.Suggestions,
			"priority":      analysis.SuggestedChanges.Priority,
			"updatedAt":     time.Now(),
		}
		updated, err := s.tasks.Update(ctx, task.ID, fields)
		if err != nil || updated == nil {
			logging.Logger.Warnf("Event ID: AI_APPLY_FAILED, Description: Failed to apply suggested changes to task %s: %v", task.ID.Hex(), err)
			return task, nil
		}
		return updated, nil
	}

	task.AISuggestions = &analysis.Suggestions
	return task, nil
}

// UpdateTask applies the given updates after access and business-rule
// checks, then re-analyzes when a significant field changed. Suggestions
// from the update analysis are stored without auto-applying any changes.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, updates models.TaskUpdate, userID primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, models.NewNotFound("task not found")
	}

	if err := s.hasAccess(ctx, task, userID, true); err != nil {
		return nil, err
	}
	if err := validateTaskUpdate(updates); err != nil {
		return nil, err
	}

	if updates.ProjectID != nil && (task.ProjectID == nil || *updates.ProjectID != *task.ProjectID) {
		target, err := s.projects.FindByID(ctx, *updates.ProjectID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, models.NewNotFound("project not found")
		}
		if !target.HasMember(userID) {
			return nil, models.NewForbidden("you don't have access to the target project")
		}
	}

	// Completed tasks older than the reversion window cannot be set back
	// to pending.
	if task.Status == models.StatusCompleted &&
		updates.Status != nil && *updates.Status == models.StatusPending &&
		task.CompletedAt != nil &&
		time.Since(*task.CompletedAt) > completedReversionWindow {
		return nil, models.NewBadRequest("completed tasks older than 7 days cannot be set back to pending")
	}

	if updates.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *updates.AssigneeID) {
		reassigned := *task
		reassigned.AssigneeID = updates.AssigneeID
		if err := s.notifier.NotifyTaskAssigned(ctx, &reassigned); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFY_FAILED, Description: Failed to send reassignment notification for task %s: %v", taskID.Hex(), err)
		}
	}

	fields := bson.M{"updatedAt": time.Now()}
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Status != nil {
		fields["status"] = *updates.Status
		if *updates.Status == models.StatusCompleted && task.Status != models.StatusCompleted {
			fields["completedAt"] = time.Now()
		}
	}
	if updates.Priority != nil {
		fields["priority"] = *updates.Priority
	}
	if updates.LabelIDs != nil {
		fields["labelIds"] = updates.LabelIDs
	}
	if updates.ProjectID != nil {
		fields["projectId"] = *updates.ProjectID
	}
	if updates.AssigneeID != nil {
		fields["assigneeId"] = *updates.AssigneeID
	}
	if updates.DueDate != nil {
		fields["dueDate"] = *updates.DueDate
	}

	updated, err := s.tasks.Update(ctx, taskID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.NewNotFound("task not found")
	}

	significant := updates.Title != nil ||
		updates.Description != nil ||
		updates.DueDate != nil ||
		updates.Priority != nil ||
		updates.Status != nil

	if significant {
		analysis := s.analyzer.AnalyzeTaskUpdate(ctx, updated, task)
		final, err := s.tasks.Update(ctx, taskID, bson.M{"aiSuggestions": analysis.Suggestions})
		if err != nil || final == nil {
			logging.Logger.Warnf("Event ID: AI_SUGGESTIONS_STORE_FAILED, Description: Failed to store analysis suggestions for task %s: %v", taskID.Hex(), err)
			return updated, nil
		}
		return final, nil
	}

	return updated, nil
}

// UpdateTaskStatus is UpdateTask restricted to the status field.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus, userID primitive.ObjectID) (*models.Task, error) {
	return s.UpdateTask(ctx, taskID, models.TaskUpdate{Status: &status}, userID)
}

// DeleteTask removes a task. Only the creator may delete it, or the project
// owner for project tasks.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID primitive.ObjectID) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return models.NewNotFound("task not found")
	}

	if task.CreatedBy != userID {
		if task.ProjectID == nil {
			return models.NewForbidden("you don't have permission to delete this task")
		}
		project, err := s.projects.FindByID(ctx, *task.ProjectID)
		if err != nil {
			return err
		}
		if project == nil || project.OwnerID != userID {
			return models.NewForbidden("you don't have permission to delete this task")
		}
	}

	return s.tasks.Delete(ctx, taskID)
}

// hasAccess is the shared access predicate: creator and assignee always have
// access; for project tasks the owner always has access and members do
// unless edit rights are required and their role grants none.
func (s *TaskService) hasAccess(ctx context.Context, task *models.Task, userID primitive.ObjectID, requireEdit bool) error {
	if task.CreatedBy == userID {
		return nil
	}
	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return nil
	}

	if task.ProjectID != nil {
		project, err := s.projects.FindByID(ctx, *task.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return models.NewNotFound("associated project not found")
		}
		if project.OwnerID == userID {
			return nil
		}
		if role := project.MemberRole(userID); role != "" {
			if !requireEdit || role.CanEdit() {
				return nil
			}
		}
	}

	return models.NewForbidden("you don't have access to this task")
}

func validateCreateTask(input CreateTaskInput) error {
	if input.Title == "" {
		return models.NewBadRequest("task title is required")
	}
	if len(input.Title) > maxTitleLength {
		return models.NewBadRequest("task title is too long")
	}
	if len(input.Description) > maxDescriptionLength {
		return models.NewBadRequest("task description is too long")
	}
	if input.Status != "" && !models.ValidStatus(input.Status) {
		return models.NewBadRequest("invalid task status")
	}
	if input.Priority != 0 && !models.ValidPriority(input.Priority) {
		return models.NewBadRequest("task priority must be between 1 and 5")
	}
	return nil
}

func validateTaskUpdate(updates models.TaskUpdate) error {
	if updates.Title != nil {
		if *updates.Title == "" {
			return models.NewBadRequest("task title cannot be empty")
		}
		if len(*updates.Title) > maxTitleLength {
			return models.NewBadRequest("task title is too long")
		}
	}
	if updates.Description != nil && len(*updates.Description) > maxDescriptionLength {
		return models.NewBadRequest("task description is too long")
	}
	if updates.Status != nil && !models.ValidStatus(*updates.Status) {
		return models.NewBadRequest("invalid task status")
	}
	if updates.Priority != nil && !models.ValidPriority(*updates.Priority) {
		return models.NewBadRequest("task priority must be between 1 and 5")
	}
	return nil
}
