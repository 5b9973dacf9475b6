package repositories

import (
	"fmt"
	"os"
	"time"

	"taskflow/backend/logging"
	"taskflow/backend/models"

	"github.com/gocql/gocql"
)

// NotificationRepository stores task-assignment notifications in Cassandra,
// partitioned by user id with newest-first clustering.
type NotificationRepository struct {
	session *gocql.Session
}

// NewNotificationRepository connects to the Cassandra cluster from CASS_DB
// (default 127.0.0.1), creates the taskflow keyspace and notifications table
// when missing, and returns a repository bound to a session on that keyspace.
func NewNotificationRepository() (*NotificationRepository, error) {
	host := os.Getenv("CASS_DB")
	if host == "" {
		host = "127.0.0.1"
	}

	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %v", err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS taskflow
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create keyspace: %v", err)
	}
	session.Close()

	cluster.Keyspace = "taskflow"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to taskflow keyspace: %v", err)
	}

	err = session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			user_id TEXT,
			task_id TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create notifications table: %v", err)
	}

	logging.Logger.Info("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra taskflow keyspace.")
	return &NotificationRepository{session: session}, nil
}

func (r *NotificationRepository) Close() {
	r.session.Close()
}

func (r *NotificationRepository) Create(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := r.session.Query(
		`INSERT INTO notifications (id, user_id, task_id, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.TaskID,
		notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

func (r *NotificationRepository) FindByUser(userID string) ([]models.Notification, error) {
	iter := r.session.Query(
		`SELECT id, user_id, task_id, message, created_at, is_read
		 FROM notifications WHERE user_id = ?`, userID).Iter()

	var notifications []models.Notification
	var n models.Notification
	for iter.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to retrieve notifications: %v", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkAsRead(userID, notificationID string, createdAt time.Time) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %v", err)
	}

	err = r.session.Query(
		`UPDATE notifications SET is_read = true
		 WHERE user_id = ? AND created_at = ? AND id = ?`,
		userID, createdAt, id,
	).Exec()
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %v", err)
	}
	return nil
}
