package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskflow/backend/middleware"
	"taskflow/backend/models"
	"taskflow/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), input, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filters, page, sort, err := parseTaskListQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.service.GetTasks(r.Context(), userID, filters, page, sort)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
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

	task, err := h.service.GetTaskByID(r.Context(), taskID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
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

	var updates models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, updates, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTaskStatus(r.Context(), taskID, body.Status, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteTask(r.Context(), taskID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTaskListQuery(r *http.Request) (models.TaskFilters, models.Pagination, models.SortOption, error) {
	q := r.URL.Query()
	var filters models.TaskFilters
	var page models.Pagination
	var sort models.SortOption

	if statuses := q.Get("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			status := models.TaskStatus(s)
			if !models.ValidStatus(status) {
				return filters, page, sort, models.NewBadRequest("invalid status filter: " + s)
			}
			filters.Status = append(filters.Status, status)
		}
	}

	if priorities := q.Get("priority"); priorities != "" {
		for _, p := range strings.Split(priorities, ",") {
			value, err := strconv.Atoi(p)
			if err != nil || !models.ValidPriority(models.TaskPriority(value)) {
				return filters, page, sort, models.NewBadRequest("invalid priority filter: " + p)
			}
			filters.Priority = append(filters.Priority, models.TaskPriority(value))
		}
	}

	if projectID := q.Get("projectId"); projectID != "" {
		id, err := primitive.ObjectIDFromHex(projectID)
		if err != nil {
			return filters, page, sort, models.NewBadRequest("invalid projectId filter")
		}
		filters.ProjectID = &id
	}

	if assigneeID := q.Get("assigneeId"); assigneeID != "" {
		id, err := primitive.ObjectIDFromHex(assigneeID)
		if err != nil {
			return filters, page, sort, models.NewBadRequest("invalid assigneeId filter")
		}
		filters.AssigneeID = &id
	}

	if from := q.Get("dueFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filters, page, sort, models.NewBadRequest("invalid dueFrom filter")
		}
		filters.DueFrom = &t
	}
	if to := q.Get("dueTo"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filters, page, sort, models.NewBadRequest("invalid dueTo filter")
		}
		filters.DueTo = &t
	}

	if labels := q.Get("labels"); labels != "" {
		filters.LabelIDs = strings.Split(labels, ",")
	}
	filters.Search = q.Get("search")

	if p := q.Get("page"); p != "" {
		page.Page, _ = strconv.Atoi(p)
	}
	if l := q.Get("limit"); l != "" {
		page.Limit, _ = strconv.Atoi(l)
	}

	sort.Field = q.Get("sortBy")
	sort.Asc = q.Get("order") != "desc"

	return filters, page, sort, nil
}
