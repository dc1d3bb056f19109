package migration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()
	sentinel := regexp.QuoteMeta("SELECT EXISTS (")

	t.Run("schema present skips steps", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, newLogger(&buf), "db")

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_skip")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies every step in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS productos").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ADD COLUMN IF NOT EXISTS imagen_url").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ADD COLUMN IF NOT EXISTS video_url").WillReturnResult(sqlmock.NewResult(0, 0))

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, newLogger(&buf), "db")

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_success")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(ctx, db, nil, "db")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check sentinel column: conn refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step error stops the run", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS productos").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ADD COLUMN IF NOT EXISTS imagen_url").WillReturnError(errors.New("permission denied"))

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, newLogger(&buf), "db")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migration step add_column_imagen_url failed")
		assert.Contains(t, buf.String(), `"migration_step":"add_column_imagen_url"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
