// Package taskanalytics provides the read-only analytics aggregation for
// a workspace's tasks. Everything is computed server-side in a single
// $facet pipeline so the numbers are consistent with each other.
package taskanalytics

import (
	"context"
	"time"

	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// completedWindowDays is how far back the completed-over-time series goes.
const completedWindowDays = 30

// CountRow is one bucket of a grouped count.
type CountRow struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// UserCountRow is a per-assignee bucket with the user's name resolved.
// Tasks with no assignee land in a bucket with a nil UserID.
type UserCountRow struct {
	UserID *primitive.ObjectID `bson:"_id" json:"user_id"`
	Name   string              `bson:"name" json:"name"`
	Count  int64               `bson:"count" json:"count"`
}

// DayCountRow is one day of the completed-over-time series.
type DayCountRow struct {
	Day   string `bson:"_id" json:"day"` // YYYY-MM-DD
	Count int64  `bson:"count" json:"count"`
}

// Analytics is the full analytics payload for a workspace (optionally
// narrowed to one project).
type Analytics struct {
	TotalTasks     int64 `json:"total_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	PendingTasks   int64 `json:"pending_tasks"`

	TasksByPriority []CountRow     `json:"tasks_by_priority"`
	TasksByStatus   []CountRow     `json:"tasks_by_status"`
	TasksByUser     []UserCountRow `json:"tasks_by_user"`

	TasksDueToday     int64         `json:"tasks_due_today"`
	CompletedOverTime []DayCountRow `json:"completed_over_time"`

	// AverageCompletionHours is the mean created-to-completed latency of
	// DONE tasks, in hours. Zero when nothing has completed yet.
	AverageCompletionHours float64 `json:"average_completion_hours"`
}

// Compute runs the analytics pipeline. The caller supplies now so "today"
// and "overdue" are deterministic under test.
func Compute(ctx context.Context, db *mongo.Database, workspaceID primitive.ObjectID, projectID *primitive.ObjectID, now time.Time) (Analytics, error) {
	match := bson.M{"workspace_id": workspaceID}
	if projectID != nil {
		match["project_id"] = *projectID
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	windowStart := dayStart.AddDate(0, 0, -completedWindowDays)

	countOnly := []bson.M{{"$count": "count"}}

	pipeline := []bson.M{
		{"$match": match},
		{"$facet": bson.M{
			"total": countOnly,
			"overdue": []bson.M{
				{"$match": bson.M{
					"due_date": bson.M{"$lt": now},
					"status":   bson.M{"$ne": models.TaskStatusDone},
				}},
				{"$count": "count"},
			},
			"completed": []bson.M{
				{"$match": bson.M{"status": models.TaskStatusDone}},
				{"$count": "count"},
			},
			"pending": []bson.M{
				{"$match": bson.M{"status": bson.M{"$nin": bson.A{
					models.TaskStatusDone, models.TaskStatusBacklog,
				}}}},
				{"$count": "count"},
			},
			"byPriority": []bson.M{
				{"$group": bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}},
				{"$sort": bson.M{"_id": 1}},
			},
			"byStatus": []bson.M{
				{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
				{"$sort": bson.M{"_id": 1}},
			},
			"byUser": []bson.M{
				{"$group": bson.M{"_id": "$assigned_to", "count": bson.M{"$sum": 1}}},
				{"$lookup": bson.M{
					"from":         "users",
					"localField":   "_id",
					"foreignField": "_id",
					"as":           "user",
				}},
				{"$unwind": bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}},
				{"$project": bson.M{
					"count": 1,
					"name":  bson.M{"$ifNull": bson.A{"$user.name", "Unassigned"}},
				}},
				{"$sort": bson.M{"count": -1, "name": 1}},
			},
			"dueToday": []bson.M{
				{"$match": bson.M{
					"due_date": bson.M{"$gte": dayStart, "$lt": dayEnd},
					"status":   bson.M{"$ne": models.TaskStatusDone},
				}},
				{"$count": "count"},
			},
			"completedOverTime": []bson.M{
				{"$match": bson.M{
					"status":       models.TaskStatusDone,
					"completed_at": bson.M{"$gte": windowStart},
				}},
				{"$group": bson.M{
					"_id": bson.M{"$dateToString": bson.M{
						"format": "%Y-%m-%d",
						"date":   "$completed_at",
					}},
					"count": bson.M{"$sum": 1},
				}},
				{"$sort": bson.M{"_id": 1}},
			},
			"avgCompletion": []bson.M{
				{"$match": bson.M{
					"status":       models.TaskStatusDone,
					"completed_at": bson.M{"$ne": nil},
				}},
				{"$project": bson.M{
					"latency_ms": bson.M{"$subtract": bson.A{"$completed_at", "$created_at"}},
				}},
				{"$group": bson.M{"_id": nil, "avg_ms": bson.M{"$avg": "$latency_ms"}}},
			},
		}},
	}

	cur, err := db.Collection("tasks").Aggregate(ctx, pipeline)
	if err != nil {
		return Analytics{}, err
	}
	defer cur.Close(ctx)

	var raw []struct {
		Total             []CountRow     `bson:"total"`
		Overdue           []CountRow     `bson:"overdue"`
		Completed         []CountRow     `bson:"completed"`
		Pending           []CountRow     `bson:"pending"`
		ByPriority        []CountRow     `bson:"byPriority"`
		ByStatus          []CountRow     `bson:"byStatus"`
		ByUser            []UserCountRow `bson:"byUser"`
		DueToday          []CountRow     `bson:"dueToday"`
		CompletedOverTime []DayCountRow  `bson:"completedOverTime"`
		AvgCompletion     []struct {
			AvgMS float64 `bson:"avg_ms"`
		} `bson:"avgCompletion"`
	}
	if err := cur.All(ctx, &raw); err != nil {
		return Analytics{}, err
	}
	if len(raw) == 0 {
		return Analytics{}, nil
	}
	r := raw[0]

	a := Analytics{
		TotalTasks:        firstCount(r.Total),
		OverdueTasks:      firstCount(r.Overdue),
		CompletedTasks:    firstCount(r.Completed),
		PendingTasks:      firstCount(r.Pending),
		TasksByPriority:   emptyIfNil(r.ByPriority),
		TasksByStatus:     emptyIfNil(r.ByStatus),
		TasksByUser:       r.ByUser,
		TasksDueToday:     firstCount(r.DueToday),
		CompletedOverTime: emptyIfNil(r.CompletedOverTime),
	}
	if a.TasksByUser == nil {
		a.TasksByUser = []UserCountRow{}
	}
	if len(r.AvgCompletion) > 0 {
		a.AverageCompletionHours = r.AvgCompletion[0].AvgMS / float64(time.Hour/time.Millisecond)
	}
	return a, nil
}

// A $count facet yields no rows at all when nothing matches.
func firstCount(rows []CountRow) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Count
}

func emptyIfNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
