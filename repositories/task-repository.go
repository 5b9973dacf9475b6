package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository persists tasks in MongoDB. Absence is reported as a nil
// task, not an error.
type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(collection *mongo.Collection) *TaskRepository {
	return &TaskRepository{collection: collection}
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %v", err)
	}
	return &task, nil
}

// FindTasks lists tasks visible to viewerID (creator, assignee, or member of
// one of projectIDs), narrowed by the given filters.
//
// The free-text search clause is appended to the same $or list as the
// visibility clauses, so a search term can match tasks the visibility
// restriction alone would exclude. Kept as-is; see DESIGN.md.
func (r *TaskRepository) FindTasks(
	ctx context.Context,
	viewerID primitive.ObjectID,
	projectIDs []primitive.ObjectID,
	filters models.TaskFilters,
	page models.Pagination,
	sort models.SortOption,
) ([]models.Task, error) {
	or := []bson.M{
		{"createdBy": viewerID},
		{"assigneeId": viewerID},
		{"projectId": bson.M{"$in": projectIDs}},
	}

	query := bson.M{}

	if len(filters.Status) > 0 {
		query["status"] = bson.M{"$in": filters.Status}
	}
	if len(filters.Priority) > 0 {
		query["priority"] = bson.M{"$in": filters.Priority}
	}
	if filters.ProjectID != nil {
		query["projectId"] = *filters.ProjectID
	}
	if filters.AssigneeID != nil {
		query["assigneeId"] = *filters.AssigneeID
	}
	if filters.DueFrom != nil || filters.DueTo != nil {
		due := bson.M{}
		if filters.DueFrom != nil {
			due["$gte"] = *filters.DueFrom
		}
		if filters.DueTo != nil {
			due["$lte"] = *filters.DueTo
		}
		query["dueDate"] = due
	}
	if len(filters.LabelIDs) > 0 {
		query["labelIds"] = bson.M{"$in": filters.LabelIDs}
	}
	if filters.Search != "" {
		or = append(or,
			bson.M{"title": bson.M{"$regex": filters.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": filters.Search, "$options": "i"}},
		)
	}

	query["$or"] = or

	findOpts := options.Find()
	if page.Limit > 0 {
		findOpts.SetLimit(int64(page.Limit))
		if page.Page > 1 {
			findOpts.SetSkip(int64((page.Page - 1) * page.Limit))
		}
	}
	if sort.Field != "" {
		order := -1
		if sort.Asc {
			order = 1
		}
		findOpts.SetSort(bson.D{{Key: sort.Field, Value: order}})
	}

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// FindByProject returns up to limit tasks of a project, optionally bounded
// by a due-date window, excluding excludeID when set.
func (r *TaskRepository) FindByProject(
	ctx context.Context,
	projectID primitive.ObjectID,
	from, to *time.Time,
	limit int,
	excludeID primitive.ObjectID,
) ([]models.Task, error) {
	query := bson.M{"projectId": projectID}
	if excludeID != primitive.NilObjectID {
		query["_id"] = bson.M{"$ne": excludeID}
	}
	if from != nil || to != nil {
		due := bson.M{}
		if from != nil {
			due["$gte"] = *from
		}
		if to != nil {
			due["$lte"] = *to
		}
		query["dueDate"] = due
	}

	findOpts := options.Find()
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode project tasks: %v", err)
	}
	return tasks, nil
}

// FindRecentByUser returns the most recently created tasks by a user,
// excluding excludeID when set.
func (r *TaskRepository) FindRecentByUser(
	ctx context.Context,
	userID primitive.ObjectID,
	limit int,
	excludeID primitive.ObjectID,
) ([]models.Task, error) {
	query := bson.M{"createdBy": userID}
	if excludeID != primitive.NilObjectID {
		query["_id"] = bson.M{"$ne": excludeID}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode recent tasks: %v", err)
	}
	return tasks, nil
}

// FindByUser returns tasks the user created or is assigned, with a due date
// inside the given window.
func (r *TaskRepository) FindByUser(
	ctx context.Context,
	userID primitive.ObjectID,
	from, to time.Time,
) ([]models.Task, error) {
	query := bson.M{
		"$or": []bson.M{
			{"assigneeId": userID},
			{"createdBy": userID},
		},
		"dueDate": bson.M{"$gte": from, "$lte": to},
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode user tasks: %v", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return task, nil
}

// Update applies a $set of the given fields and returns the updated task.
func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Task, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("task not found for deletion")
	}
	return nil
}
