package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/repository/file"
	"github.com/topicscout/topicscout/pkg/repository/firestore"
	"github.com/topicscout/topicscout/pkg/repository/memory"
	"github.com/topicscout/topicscout/pkg/repository/sqlite"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backend names
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	path       string
	projectID  string
	databaseID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type [file|sqlite|firestore|memory]",
			Category:    "Repository",
			Value:       BackendFile,
			Sources:     cli.EnvVars("TOPICSCOUT_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "repository-path",
			Usage:       "Database file path for the file and sqlite backends",
			Category:    "Repository",
			Value:       "topicscout_research.json",
			Sources:     cli.EnvVars("TOPICSCOUT_REPOSITORY_PATH"),
			Destination: &r.path,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOPICSCOUT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOPICSCOUT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("path", r.path),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFile:
		repo, err := file.New(ctx, r.path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open file repository")
		}
		logging.Default().Info("Using file repository", "path", r.path)
		return repo, nil

	case BackendSQLite:
		repo, err := sqlite.New(ctx, r.path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.path)
		return repo, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
