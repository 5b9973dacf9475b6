package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskflow/backend/middleware"
	"taskflow/backend/models"
	"taskflow/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AIHandler struct {
	aiService   *services.AIService
	taskService *services.TaskService
}

func NewAIHandler(aiService *services.AIService, taskService *services.TaskService) *AIHandler {
	return &AIHandler{aiService: aiService, taskService: taskService}
}

// AnalyzeTask runs an on-demand analysis of a single task. The task service
// performs the access check before the analysis is produced.
func (h *AIHandler) AnalyzeTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskID"])
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.GetTaskByID(r.Context(), taskID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis := h.aiService.AnalyzeTask(r.Context(), task)
	writeJSON(w, http.StatusOK, analysis)
}

// AnalyzeWorkload analyzes the workload of a project or user over a window.
func (h *AIHandler) AnalyzeWorkload(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ProjectID *string          `json:"projectId,omitempty"`
		UserID    *string          `json:"userId,omitempty"`
		TimeRange models.TimeRange `json:"timeRange"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var opts services.WorkloadOptions
	opts.TimeRange = body.TimeRange
	if body.ProjectID != nil {
		id, err := primitive.ObjectIDFromHex(*body.ProjectID)
		if err != nil {
			http.Error(w, "Invalid project ID format", http.StatusBadRequest)
			return
		}
		opts.ProjectID = &id
	}
	if body.UserID != nil {
		id, err := primitive.ObjectIDFromHex(*body.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}
		opts.UserID = &id
	}

	analysis, err := h.aiService.AnalyzeWorkload(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GenerateWeeklyPlan plans the authenticated user's week from startDate.
func (h *AIHandler) GenerateWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		StartDate time.Time `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.StartDate.IsZero() {
		body.StartDate = time.Now()
	}

	plan, err := h.aiService.GenerateWeeklyPlan(r.Context(), userID, body.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
