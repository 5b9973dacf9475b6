package handlers

import (
	"net/http"
	"time"

	"taskflow/backend/middleware"
	"taskflow/backend/models"
	"taskflow/backend/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.service.GetNotifications(userID.Hex())
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notificationID := mux.Vars(r)["notificationID"]
	createdAt, err := time.Parse(time.RFC3339, r.URL.Query().Get("createdAt"))
	if err != nil {
		http.Error(w, "Invalid or missing createdAt", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkAsRead(userID.Hex(), notificationID, createdAt); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
