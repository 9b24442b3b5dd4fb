// internal/app/features/projects/handler.go
package projects

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
)

// Handler is the feature-level entry point for projects.
type Handler struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Gate     *gates.Gate
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, projects *projectstore.Store, gate *gates.Gate, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Projects: projects, Gate: gate, Log: logger}
}
