package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"taskflow/backend/logging"
	"taskflow/backend/mcp"
	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Confidence levels by analysis origin.
const (
	confidenceRemoteDefault = 0.5 // remote result without its own confidence
	confidenceFallback      = 0.3 // local heuristic
	confidenceMinimal       = 0.1 // nothing usable happened
)

// fallbackAnalysisTTL is the shortened cache TTL for fallback results, so a
// recovered model endpoint gets asked again soon.
const fallbackAnalysisTTL = 1800 * time.Second

const (
	relatedTasksLimit    = 10
	recentTasksLimit     = 5
	fallbackNoRecsText   = "No specific recommendations available in fallback mode"
	fallbackDistribution = "Basic distribution (fallback mode)"
)

// AIService produces analyses for tasks, workload windows and weekly plans,
// masking remote-model failures behind local heuristics. AnalyzeTask and
// AnalyzeTaskUpdate never fail: whatever goes wrong internally, the caller
// gets at worst a minimal analysis, because analysis must never block a task
// mutation.
type AIService struct {
	tasks    TaskRepository
	projects ProjectRepository
	users    UserRepository
	cache    AnalysisCache
	invoker  ModelInvoker
}

func NewAIService(
	tasks TaskRepository,
	projects ProjectRepository,
	users UserRepository,
	cache AnalysisCache,
	invoker ModelInvoker,
) *AIService {
	return &AIService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		cache:    cache,
		invoker:  invoker,
	}
}

// WorkloadOptions select the task set for a workload analysis. Exactly one
// of ProjectID and UserID must be set.
type WorkloadOptions struct {
	ProjectID *primitive.ObjectID
	UserID    *primitive.ObjectID
	TimeRange models.TimeRange
}

// Payload shapes sent to the models. Only sanitized entities appear here;
// emails, roles and tokens are never transmitted.

type sanitizedTask struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
	ProjectID   string              `json:"projectId,omitempty"`
	AssigneeID  string              `json:"assigneeId,omitempty"`
	LabelIDs    []string            `json:"labelIds,omitempty"`
}

type sanitizedProject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type sanitizedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type taskAnalysisInput struct {
	Task            sanitizedTask     `json:"task"`
	Project         *sanitizedProject `json:"project"`
	Assignee        *sanitizedUser    `json:"assignee"`
	RelatedTasks    []sanitizedTask   `json:"relatedTasks"`
	CurrentTime     string            `json:"currentTime"`
	Changes         map[string]any    `json:"changes,omitempty"`
	PreviousVersion *sanitizedTask    `json:"previousVersion,omitempty"`
}

// AnalyzeTask returns an analysis for the task: cached if fresh, otherwise
// remote, otherwise the local fallback, otherwise minimal. Never fails.
func (s *AIService) AnalyzeTask(ctx context.Context, task *models.Task) *models.TaskAnalysis {
	taskID := task.ID.Hex()

	if cached := s.cache.GetTaskAnalysis(taskID); cached != nil {
		logging.Logger.Debugf("Event ID: AI_CACHE_HIT, Description: Using cached analysis for task %s", taskID)
		return cached
	}

	project, assignee, related, err := s.gatherTaskContext(ctx, task)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_ANALYSIS_FAILED, Description: Task analysis failed completely for task %s: %v", taskID, err)
		return minimalAnalysis()
	}

	input := s.buildTaskAnalysisInput(task, project, assignee, related)

	raw, err := s.invoker.InvokeModel(ctx, mcp.ModelTaskAnalyzer, input)
	if err == nil {
		if analysis, normErr := normalizeTaskAnalysis(raw); normErr == nil {
			s.cache.SaveTaskAnalysis(taskID, analysis, 0)
			return analysis
		} else {
			err = normErr
		}
	}

	logging.Logger.Warnf("Event ID: AI_ANALYSIS_FALLBACK, Description: Remote analysis failed for task %s, using fallback: %v", taskID, err)
	fallback := fallbackTaskAnalysis(task, time.Now())
	s.cache.SaveTaskAnalysis(taskID, fallback, fallbackAnalysisTTL)
	return fallback
}

// AnalyzeTaskUpdate analyzes the change between two versions of a task.
// When no tracked field differs it short-circuits to the minimal analysis
// without touching the model endpoint. Never fails.
func (s *AIService) AnalyzeTaskUpdate(ctx context.Context, updated, previous *models.Task) *models.TaskAnalysis {
	taskID := updated.ID.Hex()

	changes := detectSignificantChanges(updated, previous)
	if len(changes) == 0 {
		return minimalAnalysis()
	}

	project, assignee, related, err := s.gatherTaskContext(ctx, updated)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_UPDATE_ANALYSIS_FAILED, Description: Update analysis failed completely for task %s: %v", taskID, err)
		return minimalAnalysis()
	}

	input := s.buildTaskAnalysisInput(updated, project, assignee, related)
	input.Changes = changes
	prev := sanitizeTask(previous)
	input.PreviousVersion = &prev

	raw, err := s.invoker.InvokeModel(ctx, mcp.ModelTaskAnalyzer, input)
	if err == nil {
		if analysis, normErr := normalizeTaskAnalysis(raw); normErr == nil {
			s.cache.SaveTaskAnalysis(taskID, analysis, 0)
			return analysis
		} else {
			err = normErr
		}
	}

	logging.Logger.Warnf("Event ID: AI_UPDATE_ANALYSIS_FALLBACK, Description: Remote update analysis failed for task %s, using fallback: %v", taskID, err)
	return fallbackTaskAnalysis(updated, time.Now())
}

// AnalyzeWorkload analyzes the workload of a project or a single user within
// a time window. Precondition violations and missing project/user surface as
// errors before any model call; everything later degrades to a conservative
// result.
func (s *AIService) AnalyzeWorkload(ctx context.Context, opts WorkloadOptions) (*models.WorkloadAnalysis, error) {
	if (opts.ProjectID == nil) == (opts.UserID == nil) {
		return nil, models.NewBadRequest("exactly one of projectId or userId must be provided")
	}

	if opts.ProjectID != nil {
		return s.analyzeProjectWorkload(ctx, *opts.ProjectID, opts.TimeRange)
	}
	return s.analyzeUserWorkload(ctx, *opts.UserID, opts.TimeRange)
}

func (s *AIService) analyzeProjectWorkload(ctx context.Context, projectID primitive.ObjectID, window models.TimeRange) (*models.WorkloadAnalysis, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_WORKLOAD_FAILED, Description: Workload analysis failed completely: %v", err)
		return unavailableWorkloadAnalysis(), nil
	}
	if project == nil {
		return nil, models.NewNotFound("project not found")
	}

	userIDs := make([]primitive.ObjectID, 0, len(project.Members)+1)
	userIDs = append(userIDs, project.OwnerID)
	for _, m := range project.Members {
		userIDs = append(userIDs, m.UserID)
	}

	var tasks []models.Task
	var users []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.FindByProject(gctx, projectID, &window.Start, &window.End, 0, primitive.NilObjectID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.FindByIDs(gctx, userIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Logger.Errorf("Event ID: AI_WORKLOAD_FAILED, Description: Workload analysis failed completely: %v", err)
		return unavailableWorkloadAnalysis(), nil
	}

	sp := sanitizeProject(project)
	input := map[string]any{
		"project":   &sp,
		"tasks":     sanitizeTasks(tasks),
		"users":     sanitizeUsers(users),
		"timeRange": window,
	}

	raw, err := s.invoker.InvokeModel(ctx, mcp.ModelWorkloadOptimizer, input)
	if err == nil {
		if analysis, normErr := normalizeWorkloadAnalysis(raw); normErr == nil {
			return analysis, nil
		} else {
			err = normErr
		}
	}

	logging.Logger.Warnf("Event ID: AI_WORKLOAD_FALLBACK, Description: Remote workload analysis failed for project %s, using fallback: %v", projectID.Hex(), err)
	return fallbackWorkloadAnalysis(tasks, users), nil
}

func (s *AIService) analyzeUserWorkload(ctx context.Context, userID primitive.ObjectID, window models.TimeRange) (*models.WorkloadAnalysis, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_WORKLOAD_FAILED, Description: Workload analysis failed completely: %v", err)
		return unavailableWorkloadAnalysis(), nil
	}
	if user == nil {
		return nil, models.NewNotFound("user not found")
	}

	tasks, err := s.tasks.FindByUser(ctx, userID, window.Start, window.End)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_WORKLOAD_FAILED, Description: Workload analysis failed completely: %v", err)
		return unavailableWorkloadAnalysis(), nil
	}

	su := sanitizeUser(user)
	input := map[string]any{
		"user":      &su,
		"tasks":     sanitizeTasks(tasks),
		"timeRange": window,
	}

	raw, err := s.invoker.InvokeModel(ctx, mcp.ModelWorkloadOptimizer, input)
	if err == nil {
		if analysis, normErr := normalizeWorkloadAnalysis(raw); normErr == nil {
			return analysis, nil
		} else {
			err = normErr
		}
	}

	logging.Logger.Warnf("Event ID: AI_WORKLOAD_FALLBACK, Description: Remote workload analysis failed for user %s, using fallback: %v", userID.Hex(), err)
	return fallbackWorkloadAnalysis(tasks, []models.User{*user}), nil
}

// GenerateWeeklyPlan plans the user's tasks over a fixed 7-day window from
// startDate. A missing user surfaces as NotFound; everything later degrades
// to the even-distribution fallback or an empty plan.
func (s *AIService) GenerateWeeklyPlan(ctx context.Context, userID primitive.ObjectID, startDate time.Time) (*models.WeeklyPlan, error) {
	endDate := startDate.AddDate(0, 0, 7)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_WEEKLY_PLAN_FAILED, Description: Weekly plan generation failed completely for user %s: %v", userID.Hex(), err)
		return emptyWeeklyPlan(), nil
	}
	if user == nil {
		return nil, models.NewNotFound("user not found")
	}

	tasks, err := s.tasks.FindByUser(ctx, userID, startDate, endDate)
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_WEEKLY_PLAN_FAILED, Description: Weekly plan generation failed completely for user %s: %v", userID.Hex(), err)
		return emptyWeeklyPlan(), nil
	}

	su := sanitizeUser(user)
	input := map[string]any{
		"user":      &su,
		"tasks":     sanitizeTasks(tasks),
		"startDate": startDate,
		"endDate":   endDate,
	}

	raw, err := s.invoker.InvokeModel(ctx, mcp.ModelWorkloadOptimizer, input)
	if err == nil {
		if plan, normErr := normalizeWeeklyPlan(raw); normErr == nil {
			return plan, nil
		} else {
			err = normErr
		}
	}

	logging.Logger.Warnf("Event ID: AI_WEEKLY_PLAN_FALLBACK, Description: Remote weekly plan failed for user %s, using fallback: %v", userID.Hex(), err)
	return fallbackWeeklyPlan(tasks, startDate), nil
}

// gatherTaskContext fetches the project, assignee and related tasks for a
// task concurrently.
func (s *AIService) gatherTaskContext(ctx context.Context, task *models.Task) (*models.Project, *models.User, []models.Task, error) {
	var (
		project  *models.Project
		assignee *models.User
		related  []models.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if task.ProjectID == nil {
			return nil
		}
		var err error
		project, err = s.projects.FindByID(gctx, *task.ProjectID)
		return err
	})
	g.Go(func() error {
		if task.AssigneeID == nil {
			return nil
		}
		var err error
		assignee, err = s.users.FindByID(gctx, *task.AssigneeID)
		return err
	})
	g.Go(func() error {
		var err error
		related, err = s.relatedTasks(gctx, task)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return project, assignee, related, nil
}

// relatedTasks returns up to 10 tasks of the same project, or, for tasks
// without a project, up to 5 recent tasks by the same creator.
func (s *AIService) relatedTasks(ctx context.Context, task *models.Task) ([]models.Task, error) {
	if task.ProjectID != nil {
		return s.tasks.FindByProject(ctx, *task.ProjectID, nil, nil, relatedTasksLimit, task.ID)
	}
	return s.tasks.FindRecentByUser(ctx, task.CreatedBy, recentTasksLimit, task.ID)
}

func (s *AIService) buildTaskAnalysisInput(task *models.Task, project *models.Project, assignee *models.User, related []models.Task) taskAnalysisInput {
	input := taskAnalysisInput{
		Task:         sanitizeTask(task),
		RelatedTasks: sanitizeTasks(related),
		CurrentTime:  time.Now().UTC().Format(time.RFC3339),
	}
	if project != nil {
		sp := sanitizeProject(project)
		input.Project = &sp
	}
	if assignee != nil {
		su := sanitizeUser(assignee)
		input.Assignee = &su
	}
	return input
}

// detectSignificantChanges compares the tracked fields of two task versions
// and returns the changed values keyed by field name.
func detectSignificantChanges(updated, previous *models.Task) map[string]any {
	changes := map[string]any{}

	if updated.Title != previous.Title {
		changes["title"] = updated.Title
	}
	if updated.Description != previous.Description {
		changes["description"] = updated.Description
	}
	if updated.Status != previous.Status {
		changes["status"] = updated.Status
	}
	if updated.Priority != previous.Priority {
		changes["priority"] = updated.Priority
	}
	if !equalTimePtr(updated.DueDate, previous.DueDate) {
		changes["dueDate"] = updated.DueDate
	}
	if !equalObjectIDPtr(updated.AssigneeID, previous.AssigneeID) {
		changes["assigneeId"] = objectIDHex(updated.AssigneeID)
	}
	if !equalLabelSets(updated.LabelIDs, previous.LabelIDs) {
		changes["labelIds"] = updated.LabelIDs
	}

	return changes
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalObjectIDPtr(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// equalLabelSets compares label lists ignoring order.
func equalLabelSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(b))
	for _, l := range b {
		set[l] = true
	}
	for _, l := range a {
		if !set[l] {
			return false
		}
	}
	return true
}

func objectIDHex(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

func sanitizeTask(task *models.Task) sanitizedTask {
	st := sanitizedTask{
		ID:          task.ID.Hex(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
		LabelIDs:    task.LabelIDs,
	}
	if task.ProjectID != nil {
		st.ProjectID = task.ProjectID.Hex()
	}
	if task.AssigneeID != nil {
		st.AssigneeID = task.AssigneeID.Hex()
	}
	return st
}

func sanitizeTasks(tasks []models.Task) []sanitizedTask {
	sanitized := make([]sanitizedTask, 0, len(tasks))
	for i := range tasks {
		sanitized = append(sanitized, sanitizeTask(&tasks[i]))
	}
	return sanitized
}

func sanitizeProject(project *models.Project) sanitizedProject {
	return sanitizedProject{
		ID:          project.ID.Hex(),
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	}
}

func sanitizeUser(user *models.User) sanitizedUser {
	return sanitizedUser{
		ID:   user.ID.Hex(),
		Name: user.Name,
	}
}

func sanitizeUsers(users []models.User) []sanitizedUser {
	sanitized := make([]sanitizedUser, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, sanitizeUser(&users[i]))
	}
	return sanitized
}

// normalizeTaskAnalysis checks every model-returned field against its
// allow-list; unrecognized values are dropped, never passed through raw.
// Suggested automatic changes are restricted to priority.
func normalizeTaskAnalysis(raw json.RawMessage) (*models.TaskAnalysis, error) {
	var decoded struct {
		Suggestions      map[string]json.RawMessage `json:"suggestions"`
		SuggestedChanges map[string]json.RawMessage `json:"suggestedChanges"`
		Confidence       float64                    `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("malformed analysis result: %v", err)
	}

	analysis := &models.TaskAnalysis{
		Confidence: decoded.Confidence,
	}
	if analysis.Confidence <= 0 || analysis.Confidence > 1 {
		analysis.Confidence = confidenceRemoteDefault
	}

	if decoded.Suggestions != nil {
		analysis.Suggestions = models.TaskSuggestions{
			EstimatedEffort:   decodeLevel(decoded.Suggestions["estimatedEffort"]),
			SuggestedPriority: decodePriority(decoded.Suggestions["suggestedPriority"]),
			DependsOn:         decodeStringList(decoded.Suggestions["dependsOn"]),
			Skills:            decodeStringList(decoded.Suggestions["skills"]),
			Risk:              decodeLevel(decoded.Suggestions["risk"]),
			SplitSuggestion:   decodeStringList(decoded.Suggestions["splitSuggestion"]),
			TimeEstimateMins:  decodePositiveInt(decoded.Suggestions["timeEstimate"]),
		}
	}

	if decoded.SuggestedChanges != nil {
		if priority := decodePriority(decoded.SuggestedChanges["priority"]); priority != 0 {
			analysis.SuggestedChanges = &models.SuggestedChanges{Priority: priority}
		}
	}

	return analysis, nil
}

func decodeLevel(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	switch value {
	case models.LevelLow, models.LevelMedium, models.LevelHigh:
		return value
	}
	return ""
}

func decodePriority(raw json.RawMessage) models.TaskPriority {
	if raw == nil {
		return 0
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0
	}
	if !models.ValidPriority(models.TaskPriority(value)) {
		return 0
	}
	return models.TaskPriority(value)
}

func decodeStringList(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func decodePositiveInt(raw json.RawMessage) int {
	if raw == nil {
		return 0
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil || value < 0 {
		return 0
	}
	return value
}

// normalizeWorkloadAnalysis decodes the optimizer result, dropping user
// workload entries whose status is not a known value.
func normalizeWorkloadAnalysis(raw json.RawMessage) (*models.WorkloadAnalysis, error) {
	var analysis models.WorkloadAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("malformed workload result: %v", err)
	}

	kept := analysis.UserWorkloads[:0]
	for _, w := range analysis.UserWorkloads {
		switch w.Status {
		case models.WorkloadUnderutilized, models.WorkloadBalanced, models.WorkloadOverloaded:
			kept = append(kept, w)
		}
	}
	analysis.UserWorkloads = kept

	for i := range analysis.TaskRecommendations {
		if !models.ValidPriority(analysis.TaskRecommendations[i].RecommendedPriority) {
			analysis.TaskRecommendations[i].RecommendedPriority = 0
		}
	}

	return &analysis, nil
}

func normalizeWeeklyPlan(raw json.RawMessage) (*models.WeeklyPlan, error) {
	var plan models.WeeklyPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("malformed weekly plan result: %v", err)
	}
	return &plan, nil
}

func minimalAnalysis() *models.TaskAnalysis {
	return &models.TaskAnalysis{
		Suggestions: models.TaskSuggestions{},
		Confidence:  confidenceMinimal,
	}
}

// fallbackTaskAnalysis is the deterministic local heuristic used when the
// model endpoint is unavailable: effort from description length, priority
// from days until due.
func fallbackTaskAnalysis(task *models.Task, now time.Time) *models.TaskAnalysis {
	analysis := &models.TaskAnalysis{
		Suggestions: models.TaskSuggestions{},
		Confidence:  confidenceFallback,
	}

	if task.Description != "" {
		switch {
		case len(task.Description) < 100:
			analysis.Suggestions.EstimatedEffort = models.LevelLow
		case len(task.Description) < 500:
			analysis.Suggestions.EstimatedEffort = models.LevelMedium
		default:
			analysis.Suggestions.EstimatedEffort = models.LevelHigh
		}
	}

	if task.DueDate != nil {
		daysUntilDue := int(math.Ceil(task.DueDate.Sub(now).Hours() / 24))
		switch {
		case daysUntilDue <= 1:
			analysis.Suggestions.SuggestedPriority = models.PriorityUrgent
		case daysUntilDue <= 3:
			analysis.Suggestions.SuggestedPriority = models.PriorityHigh
		case daysUntilDue <= 7:
			analysis.Suggestions.SuggestedPriority = models.PriorityMedium
		default:
			analysis.Suggestions.SuggestedPriority = models.PriorityLow
		}
	}

	return analysis
}

// fallbackWorkloadAnalysis reports every user as balanced with no specific
// recommendation. A conservative default, not a real assessment.
func fallbackWorkloadAnalysis(tasks []models.Task, users []models.User) *models.WorkloadAnalysis {
	workloads := make([]models.UserWorkload, 0, len(users))
	for _, u := range users {
		workloads = append(workloads, models.UserWorkload{
			UserID:         u.ID.Hex(),
			Status:         models.WorkloadBalanced,
			Recommendation: fallbackNoRecsText,
		})
	}
	return &models.WorkloadAnalysis{
		OverallAssessment:   fmt.Sprintf("Analyzing %d tasks across %d users", len(tasks), len(users)),
		UserWorkloads:       workloads,
		TaskRecommendations: []models.TaskRecommendation{},
	}
}

func unavailableWorkloadAnalysis() *models.WorkloadAnalysis {
	return &models.WorkloadAnalysis{
		OverallAssessment:   "Unable to analyze workload due to an error",
		UserWorkloads:       []models.UserWorkload{},
		TaskRecommendations: []models.TaskRecommendation{},
	}
}

// fallbackWeeklyPlan distributes tasks evenly across the 7 days by index
// partition, ceil(len/7) per day; anything left over is unscheduled.
func fallbackWeeklyPlan(tasks []models.Task, startDate time.Time) *models.WeeklyPlan {
	days := make([]models.PlanDay, 7)
	for i := range days {
		days[i] = models.PlanDay{
			Date:  startDate.AddDate(0, 0, i).Format("2006-01-02"),
			Tasks: []models.PlannedTask{},
		}
	}

	tasksPerDay := 0
	if len(tasks) > 0 {
		tasksPerDay = (len(tasks) + 6) / 7
	}

	scheduled := make(map[string]bool, len(tasks))
	for i := range days {
		start := i * tasksPerDay
		end := start + tasksPerDay
		if end > len(tasks) {
			end = len(tasks)
		}
		for j := start; j < end; j++ {
			id := tasks[j].ID.Hex()
			days[i].Tasks = append(days[i].Tasks, models.PlannedTask{
				TaskID:    id,
				Reasoning: fallbackDistribution,
			})
			scheduled[id] = true
		}
	}

	unscheduled := []string{}
	for i := range tasks {
		if id := tasks[i].ID.Hex(); !scheduled[id] {
			unscheduled = append(unscheduled, id)
		}
	}

	return &models.WeeklyPlan{
		Days:             days,
		UnscheduledTasks: unscheduled,
		Summary:          "Basic weekly plan generated in fallback mode",
	}
}

func emptyWeeklyPlan() *models.WeeklyPlan {
	return &models.WeeklyPlan{
		Days:             []models.PlanDay{},
		UnscheduledTasks: []string{},
		Summary:          "Unable to generate weekly plan due to an error",
	}
}
