package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Function-backed mocks for the service collaborators. Unset functions
// return zero values.

type mockTaskRepo struct {
	findByID         func(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	findTasks        func(ctx context.Context, viewerID primitive.ObjectID, projectIDs []primitive.ObjectID, filters models.TaskFilters, page models.Pagination, sort models.SortOption) ([]models.Task, error)
	findByProject    func(ctx context.Context, projectID primitive.ObjectID, from, to *time.Time, limit int, excludeID primitive.ObjectID) ([]models.Task, error)
	findRecentByUser func(ctx context.Context, userID primitive.ObjectID, limit int, excludeID primitive.ObjectID) ([]models.Task, error)
	findByUser       func(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Task, error)
	create           func(ctx context.Context, task *models.Task) (*models.Task, error)
	update           func(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Task, error)
	delete           func(ctx context.Context, id primitive.ObjectID) error

	mu      sync.Mutex
	updates []bson.M
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	if m.findByID == nil {
		return nil, nil
	}
	return m.findByID(ctx, id)
}

func (m *mockTaskRepo) FindTasks(ctx context.Context, viewerID primitive.ObjectID, projectIDs []primitive.ObjectID, filters models.TaskFilters, page models.Pagination, sort models.SortOption) ([]models.Task, error) {
	if m.findTasks == nil {
		return nil, nil
	}
	return m.findTasks(ctx, viewerID, projectIDs, filters, page, sort)
}

func (m *mockTaskRepo) FindByProject(ctx context.Context, projectID primitive.ObjectID, from, to *time.Time, limit int, excludeID primitive.ObjectID) ([]models.Task, error) {
	if m.findByProject == nil {
		return nil, nil
	}
	return m.findByProject(ctx, projectID, from, to, limit, excludeID)
}

func (m *mockTaskRepo) FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int, excludeID primitive.ObjectID) ([]models.Task, error) {
	if m.findRecentByUser == nil {
		return nil, nil
	}
	return m.findRecentByUser(ctx, userID, limit, excludeID)
}

func (m *mockTaskRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Task, error) {
	if m.findByUser == nil {
		return nil, nil
	}
	return m.findByUser(ctx, userID, from, to)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if m.create == nil {
		if task.ID.IsZero() {
			task.ID = primitive.NewObjectID()
		}
		return task, nil
	}
	return m.create(ctx, task)
}

func (m *mockTaskRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Task, error) {
	m.mu.Lock()
	m.updates = append(m.updates, fields)
	m.mu.Unlock()
	if m.update == nil {
		return &models.Task{ID: id}, nil
	}
	return m.update(ctx, id, fields)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.delete == nil {
		return nil
	}
	return m.delete(ctx, id)
}

func (m *mockTaskRepo) recordedUpdates() []bson.M {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bson.M(nil), m.updates...)
}

type mockProjectRepo struct {
	findByID             func(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	findProjectIDsByUser func(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	if m.findByID == nil {
		return nil, nil
	}
	return m.findByID(ctx, id)
}

func (m *mockProjectRepo) FindProjectIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if m.findProjectIDsByUser == nil {
		return nil, nil
	}
	return m.findProjectIDsByUser(ctx, userID)
}

type mockUserRepo struct {
	findByID  func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	findByIDs func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.findByID == nil {
		return nil, nil
	}
	return m.findByID(ctx, id)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if m.findByIDs == nil {
		return nil, nil
	}
	return m.findByIDs(ctx, ids)
}

// mockInvoker returns Response (or Err) and records every call.
type mockInvoker struct {
	mu       sync.Mutex
	Response json.RawMessage
	Err      error
	Calls    int
	Models   []string
	Payloads []any
}

func (m *mockInvoker) InvokeModel(_ context.Context, model string, payload any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Models = append(m.Models, model)
	m.Payloads = append(m.Payloads, payload)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	Err      error
	Notified []*models.Task
}

func (m *mockNotifier) NotifyTaskAssigned(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notified = append(m.Notified, task)
	return m.Err
}

type mockAnalyzer struct {
	analysis       *models.TaskAnalysis
	updateAnalysis *models.TaskAnalysis
	TaskCalls      int
	UpdateCalls    int
}

func (m *mockAnalyzer) AnalyzeTask(_ context.Context, _ *models.Task) *models.TaskAnalysis {
	m.TaskCalls++
	if m.analysis == nil {
		return &models.TaskAnalysis{Suggestions: models.TaskSuggestions{}, Confidence: 0.1}
	}
	return m.analysis
}

func (m *mockAnalyzer) AnalyzeTaskUpdate(_ context.Context, _, _ *models.Task) *models.TaskAnalysis {
	m.UpdateCalls++
	if m.updateAnalysis == nil {
		return &models.TaskAnalysis{Suggestions: models.TaskSuggestions{}, Confidence: 0.1}
	}
	return m.updateAnalysis
}
