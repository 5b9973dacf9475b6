package services

import (
	"context"
	"encoding/json"
	"time"

	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborator contracts the services depend on. The concrete Mongo,
// Cassandra and MCP implementations live in repositories/ and mcp/; tests
// substitute mocks.

type TaskRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindTasks(ctx context.Context, viewerID primitive.ObjectID, projectIDs []primitive.ObjectID, filters models.TaskFilters, page models.Pagination, sort models.SortOption) ([]models.Task, error)
	FindByProject(ctx context.Context, projectID primitive.ObjectID, from, to *time.Time, limit int, excludeID primitive.ObjectID) ([]models.Task, error)
	FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int, excludeID primitive.ObjectID) ([]models.Task, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProjectRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindProjectIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type AnalysisCache interface {
	GetTaskAnalysis(taskID string) *models.TaskAnalysis
	SaveTaskAnalysis(taskID string, analysis *models.TaskAnalysis, ttl time.Duration)
}

// ModelInvoker invokes a named model on the MCP endpoint.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, model string, payload any) (json.RawMessage, error)
}

// Notifier delivers user-facing notifications. Failures never block task
// mutation.
type Notifier interface {
	NotifyTaskAssigned(ctx context.Context, task *models.Task) error
}

// Analyzer is the slice of AIService the task service uses after mutations.
type Analyzer interface {
	AnalyzeTask(ctx context.Context, task *models.Task) *models.TaskAnalysis
	AnalyzeTaskUpdate(ctx context.Context, updated, previous *models.Task) *models.TaskAnalysis
}
