package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"taskflow/backend/models"
	"taskflow/backend/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAIService(taskRepo *mockTaskRepo, projectRepo *mockProjectRepo, userRepo *mockUserRepo, invoker *mockInvoker) (*AIService, *repositories.AnalysisCache) {
	cache := repositories.NewAnalysisCache(time.Hour)
	return NewAIService(taskRepo, projectRepo, userRepo, cache, invoker), cache
}

func TestAnalyzeTaskReturnsCachedResultWithoutSecondInvocation(t *testing.T) {
	invoker := &mockInvoker{Response: json.RawMessage(`{
		"suggestions": {"estimatedEffort": "medium"},
		"confidence": 0.8
	}`)}
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	task := &models.Task{ID: primitive.NewObjectID(), Title: "Write release notes"}

	first := svc.AnalyzeTask(context.Background(), task)
	second := svc.AnalyzeTask(context.Background(), task)

	require.Equal(t, 1, invoker.Calls)
	assert.Same(t, first, second)
	assert.Equal(t, 0.8, first.Confidence)
	assert.Equal(t, models.LevelMedium, first.Suggestions.EstimatedEffort)
}

func TestAnalyzeTaskFallsBackWhenRemoteFails(t *testing.T) {
	invoker := &mockInvoker{Err: errors.New("connection refused")}
	svc, cache := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	due := time.Now().Add(48 * time.Hour)
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       "Fix login redirect",
		Description: "Short description",
		DueDate:     &due,
	}

	analysis := svc.AnalyzeTask(context.Background(), task)

	require.NotNil(t, analysis)
	assert.Equal(t, 0.3, analysis.Confidence)
	assert.Equal(t, models.LevelLow, analysis.Suggestions.EstimatedEffort)
	assert.Equal(t, models.PriorityHigh, analysis.Suggestions.SuggestedPriority)

	// The fallback is cached, so a second call does not retry the remote.
	svc.AnalyzeTask(context.Background(), task)
	assert.Equal(t, 1, invoker.Calls)
	assert.Equal(t, 1, cache.Len())
}

func TestAnalyzeTaskReturnsMinimalWhenContextGatheringFails(t *testing.T) {
	taskRepo := &mockTaskRepo{
		findRecentByUser: func(context.Context, primitive.ObjectID, int, primitive.ObjectID) ([]models.Task, error) {
			return nil, errors.New("mongo unavailable")
		},
	}
	invoker := &mockInvoker{}
	svc, _ := newAIService(taskRepo, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	task := &models.Task{ID: primitive.NewObjectID(), Title: "Orphan task", CreatedBy: primitive.NewObjectID()}
	analysis := svc.AnalyzeTask(context.Background(), task)

	require.NotNil(t, analysis)
	assert.Equal(t, 0.1, analysis.Confidence)
	assert.True(t, analysis.Suggestions.Empty())
	assert.Equal(t, 0, invoker.Calls, "no remote call after a gathering failure")
}

func TestAnalyzeTaskNormalizesRemoteResult(t *testing.T) {
	invoker := &mockInvoker{Response: json.RawMessage(`{
		"suggestions": {
			"estimatedEffort": "enormous",
			"suggestedPriority": 9,
			"risk": "high",
			"skills": ["go", "mongodb"],
			"dependsOn": "not-an-array"
		},
		"suggestedChanges": {"priority": 2, "title": "injected title"}
	}`)}
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	task := &models.Task{ID: primitive.NewObjectID(), Title: "Migrate billing"}
	analysis := svc.AnalyzeTask(context.Background(), task)

	assert.Empty(t, analysis.Suggestions.EstimatedEffort, "unknown effort value must be dropped")
	assert.Zero(t, analysis.Suggestions.SuggestedPriority, "out-of-range priority must be dropped")
	assert.Nil(t, analysis.Suggestions.DependsOn, "non-array dependsOn must be dropped")
	assert.Equal(t, "high", analysis.Suggestions.Risk)
	assert.Equal(t, []string{"go", "mongodb"}, analysis.Suggestions.Skills)

	require.NotNil(t, analysis.SuggestedChanges)
	assert.Equal(t, models.PriorityHigh, analysis.SuggestedChanges.Priority)

	// Missing confidence defaults to the remote baseline.
	assert.Equal(t, 0.5, analysis.Confidence)
}

func TestAnalyzeTaskGathersProjectContext(t *testing.T) {
	projectID := primitive.NewObjectID()
	taskID := primitive.NewObjectID()
	var capturedLimit int
	var capturedExclude primitive.ObjectID

	taskRepo := &mockTaskRepo{
		findByProject: func(_ context.Context, _ primitive.ObjectID, _, _ *time.Time, limit int, excludeID primitive.ObjectID) ([]models.Task, error) {
			capturedLimit = limit
			capturedExclude = excludeID
			return nil, nil
		},
	}
	projectRepo := &mockProjectRepo{
		findByID: func(context.Context, primitive.ObjectID) (*models.Project, error) {
			return &models.Project{ID: projectID, Name: "Platform"}, nil
		},
	}
	invoker := &mockInvoker{Response: json.RawMessage(`{"suggestions": {}, "confidence": 0.6}`)}
	svc, _ := newAIService(taskRepo, projectRepo, &mockUserRepo{}, invoker)

	task := &models.Task{ID: taskID, Title: "Ship it", ProjectID: &projectID}
	svc.AnalyzeTask(context.Background(), task)

	assert.Equal(t, relatedTasksLimit, capturedLimit)
	assert.Equal(t, taskID, capturedExclude)

	require.Len(t, invoker.Payloads, 1)
	input, ok := invoker.Payloads[0].(taskAnalysisInput)
	require.True(t, ok)
	require.NotNil(t, input.Project)
	assert.Equal(t, "Platform", input.Project.Name)
}

func TestAnalyzeTaskUpdateShortCircuitsWithoutChanges(t *testing.T) {
	invoker := &mockInvoker{}
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	task := &models.Task{ID: primitive.NewObjectID(), Title: "Unchanged", Status: models.StatusPending}
	identical := *task

	analysis := svc.AnalyzeTaskUpdate(context.Background(), task, &identical)

	assert.Equal(t, 0.1, analysis.Confidence)
	assert.True(t, analysis.Suggestions.Empty())
	assert.Equal(t, 0, invoker.Calls)
}

func TestAnalyzeTaskUpdateSendsDetectedChanges(t *testing.T) {
	invoker := &mockInvoker{Response: json.RawMessage(`{"suggestions": {"risk": "low"}, "confidence": 0.7}`)}
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, invoker)

	previous := &models.Task{ID: primitive.NewObjectID(), Title: "Old title", Status: models.StatusPending}
	updated := *previous
	updated.Title = "New title"
	updated.Status = models.StatusInProgress

	analysis := svc.AnalyzeTaskUpdate(context.Background(), &updated, previous)

	require.Equal(t, 1, invoker.Calls)
	input, ok := invoker.Payloads[0].(taskAnalysisInput)
	require.True(t, ok)
	assert.Equal(t, "New title", input.Changes["title"])
	assert.Equal(t, models.StatusInProgress, input.Changes["status"])
	require.NotNil(t, input.PreviousVersion)
	assert.Equal(t, "Old title", input.PreviousVersion.Title)
	assert.Equal(t, "low", analysis.Suggestions.Risk)
}

func TestAnalyzeWorkloadRequiresExactlyOneTarget(t *testing.T) {
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, &mockInvoker{})
	window := models.TimeRange{Start: time.Now(), End: time.Now().Add(72 * time.Hour)}

	_, err := svc.AnalyzeWorkload(context.Background(), WorkloadOptions{TimeRange: window})
	assert.True(t, models.IsBadRequest(err))

	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	_, err = svc.AnalyzeWorkload(context.Background(), WorkloadOptions{
		ProjectID: &projectID,
		UserID:    &userID,
		TimeRange: window,
	})
	assert.True(t, models.IsBadRequest(err))
}

func TestAnalyzeWorkloadProjectNotFound(t *testing.T) {
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, &mockInvoker{})

	projectID := primitive.NewObjectID()
	_, err := svc.AnalyzeWorkload(context.Background(), WorkloadOptions{
		ProjectID: &projectID,
		TimeRange: models.TimeRange{Start: time.Now(), End: time.Now().Add(time.Hour)},
	})
	assert.True(t, models.IsNotFound(err))
}

func TestAnalyzeWorkloadFallbackReportsEveryUserBalanced(t *testing.T) {
	projectID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()

	projectRepo := &mockProjectRepo{
		findByID: func(context.Context, primitive.ObjectID) (*models.Project, error) {
			return &models.Project{
				ID:      projectID,
				OwnerID: owner,
				Members: []models.Member{{UserID: member, Role: models.RoleEditor}},
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDs: func(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
			users := make([]models.User, len(ids))
			for i, id := range ids {
				users[i] = models.User{ID: id, Name: "user"}
			}
			return users, nil
		},
	}
	taskRepo := &mockTaskRepo{
		findByProject: func(context.Context, primitive.ObjectID, *time.Time, *time.Time, int, primitive.ObjectID) ([]models.Task, error) {
			return []models.Task{{ID: primitive.NewObjectID()}, {ID: primitive.NewObjectID()}}, nil
		},
	}
	invoker := &mockInvoker{Err: errors.New("timeout")}
	svc, _ := newAIService(taskRepo, projectRepo, userRepo, invoker)

	analysis, err := svc.AnalyzeWorkload(context.Background(), WorkloadOptions{
		ProjectID: &projectID,
		TimeRange: models.TimeRange{Start: time.Now(), End: time.Now().Add(time.Hour)},
	})

	require.NoError(t, err)
	assert.Equal(t, "Analyzing 2 tasks across 2 users", analysis.OverallAssessment)
	require.Len(t, analysis.UserWorkloads, 2)
	for _, w := range analysis.UserWorkloads {
		assert.Equal(t, models.WorkloadBalanced, w.Status)
		assert.Equal(t, fallbackNoRecsText, w.Recommendation)
	}
	assert.Empty(t, analysis.TaskRecommendations)
}

func TestGenerateWeeklyPlanFallbackDistribution(t *testing.T) {
	userID := primitive.NewObjectID()
	tasks := make([]models.Task, 10)
	for i := range tasks {
		tasks[i] = models.Task{ID: primitive.NewObjectID()}
	}

	userRepo := &mockUserRepo{
		findByID: func(context.Context, primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: userID, Name: "planner"}, nil
		},
	}
	taskRepo := &mockTaskRepo{
		findByUser: func(context.Context, primitive.ObjectID, time.Time, time.Time) ([]models.Task, error) {
			return tasks, nil
		},
	}
	invoker := &mockInvoker{Err: errors.New("unavailable")}
	svc, _ := newAIService(taskRepo, &mockProjectRepo{}, userRepo, invoker)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan, err := svc.GenerateWeeklyPlan(context.Background(), userID, start)

	require.NoError(t, err)
	require.Len(t, plan.Days, 7)
	assert.Equal(t, "2026-03-02", plan.Days[0].Date)
	assert.Equal(t, "2026-03-08", plan.Days[6].Date)

	// ceil(10/7) = 2 per day: 2,2,2,2,2,0,0 and nothing left over.
	for i := 0; i < 5; i++ {
		assert.Len(t, plan.Days[i].Tasks, 2, "day %d", i)
	}
	assert.Empty(t, plan.Days[5].Tasks)
	assert.Empty(t, plan.Days[6].Tasks)
	assert.Empty(t, plan.UnscheduledTasks)
}

func TestGenerateWeeklyPlanUserNotFound(t *testing.T) {
	svc, _ := newAIService(&mockTaskRepo{}, &mockProjectRepo{}, &mockUserRepo{}, &mockInvoker{})

	_, err := svc.GenerateWeeklyPlan(context.Background(), primitive.NewObjectID(), time.Now())
	assert.True(t, models.IsNotFound(err))
}

func TestGenerateWeeklyPlanEmptyOnRepositoryFailure(t *testing.T) {
	userID := primitive.NewObjectID()
	userRepo := &mockUserRepo{
		findByID: func(context.Context, primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: userID}, nil
		},
	}
	taskRepo := &mockTaskRepo{
		findByUser: func(context.Context, primitive.ObjectID, time.Time, time.Time) ([]models.Task, error) {
			return nil, errors.New("mongo unavailable")
		},
	}
	svc, _ := newAIService(taskRepo, &mockProjectRepo{}, userRepo, &mockInvoker{})

	plan, err := svc.GenerateWeeklyPlan(context.Background(), userID, time.Now())

	require.NoError(t, err)
	assert.Empty(t, plan.Days)
	assert.Empty(t, plan.UnscheduledTasks)
	assert.Contains(t, plan.Summary, "Unable to generate weekly plan")
}
