package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Steps are idempotent so a partially migrated schema (for example a productos
// table created before attachments existed) converges on rerun.
var steps = []migrationStep{
	{
		Name: "create_table_productos",
		SQL: `CREATE TABLE IF NOT EXISTS productos (
  id       SERIAL  PRIMARY KEY,
  producto TEXT    NOT NULL CHECK (btrim(producto) <> ''),
  cantidad INTEGER NOT NULL
);`,
	},
	{
		Name: "add_column_imagen_url",
		SQL:  `ALTER TABLE productos ADD COLUMN IF NOT EXISTS imagen_url TEXT;`,
	},
	{
		Name: "add_column_video_url",
		SQL:  `ALTER TABLE productos ADD COLUMN IF NOT EXISTS video_url TEXT;`,
	},
}

const sentinelQuery = `SELECT EXISTS (
  SELECT 1 FROM information_schema.columns
  WHERE table_schema = current_schema() AND table_name = 'productos' AND column_name = 'video_url'
)`

// EnsureMigrated checks whether the latest schema is present and applies the steps if it isn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "database", "db_host", dbHost)
	start := time.Now()

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel column: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
