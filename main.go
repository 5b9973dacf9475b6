package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"taskflow/backend/handlers"
	"taskflow/backend/logging"
	"taskflow/backend/middleware"
	"taskflow/backend/repositories"
	"taskflow/backend/services"

	mcpclient "taskflow/backend/mcp"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting TaskFlow backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	taskRepo := repositories.NewTaskRepository(db.Collection("tasks"))
	projectRepo := repositories.NewProjectRepository(db.Collection("projects"))
	userRepo := repositories.NewUserRepository(db.Collection("users"))

	notificationRepo, err := repositories.NewNotificationRepository()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASSANDRA_CONNECTION_FAILED, Description: Cassandra connection failed: %v", err)
	}
	defer notificationRepo.Close()

	mcpBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mcp-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	mcpBaseURL := os.Getenv("MCP_BASE_URL")
	if mcpBaseURL == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: MCP_BASE_URL is not set.")
	}
	mcpTimeout := 10 * time.Second
	if v := os.Getenv("MCP_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			mcpTimeout = time.Duration(seconds) * time.Second
		}
	}
	mcpClient := mcpclient.NewClient(mcpBaseURL, mcpTimeout, mcpBreaker)

	cacheTTL := repositories.DefaultAnalysisTTL
	if v := os.Getenv("AI_CACHE_TTL_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cacheTTL = time.Duration(seconds) * time.Second
		}
	}
	analysisCache := repositories.NewAnalysisCache(cacheTTL)

	notificationService := services.NewNotificationService(notificationRepo)
	aiService := services.NewAIService(taskRepo, projectRepo, userRepo, analysisCache, mcpClient)
	taskService := services.NewTaskService(taskRepo, projectRepo, aiService, notificationService)

	taskHandler := handlers.NewTaskHandler(taskService)
	aiHandler := handlers.NewAIHandler(aiService, taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set.")
	}

	r := mux.NewRouter()

	r.HandleFunc("/api/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/api/tasks/{taskID}/status", taskHandler.UpdateTaskStatus).Methods(http.MethodPatch)

	r.HandleFunc("/api/ai/tasks/{taskID}/analyze", aiHandler.AnalyzeTask).Methods(http.MethodPost)
	r.HandleFunc("/api/ai/workload", aiHandler.AnalyzeWorkload).Methods(http.MethodPost)
	r.HandleFunc("/api/ai/weekly-plan", aiHandler.GenerateWeeklyPlan).Methods(http.MethodPost)

	r.HandleFunc("/api/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications/{notificationID}/read", notificationHandler.MarkAsRead).Methods(http.MethodPatch)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	handler := corsHandler.Handler(middleware.Auth(jwtSecret, r))

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, handler); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
