package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/model"
)

var productCols = []string{"id", "producto", "cantidad", "imagen_url", "video_url"}

func strPtr(s string) *string { return &s }

func newRepo(t *testing.T) (*ProductPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductPostgres(db), mock
}

func TestProductPostgres_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("without attachments", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("INSERT INTO productos").
			WithArgs("Leche", 2, nil, nil).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(1, "Leche", 2, nil, nil))

		got, err := repo.Create(ctx, &model.Product{Name: "Leche", Quantity: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "Leche", got.Name)
		assert.Equal(t, 2, got.Quantity)
		assert.Nil(t, got.Image)
		assert.Nil(t, got.Video)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with attachments", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("INSERT INTO productos").
			WithArgs("Pan", 3, "/uploads/a.png", "/uploads/b.mp4").
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Pan", 3, "/uploads/a.png", "/uploads/b.mp4"))

		got, err := repo.Create(ctx, &model.Product{
			Name:     "Pan",
			Quantity: 3,
			Image:    strPtr("/uploads/a.png"),
			Video:    strPtr("/uploads/b.mp4"),
		})

		require.NoError(t, err)
		require.NotNil(t, got.Image)
		require.NotNil(t, got.Video)
		assert.Equal(t, "/uploads/a.png", *got.Image)
		assert.Equal(t, "/uploads/b.mp4", *got.Video)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("INSERT INTO productos").WillReturnError(errors.New("insert failed"))

		got, err := repo.Create(ctx, &model.Product{Name: "x", Quantity: 1})

		assert.EqualError(t, err, "insert failed")
		assert.Nil(t, got)
	})
}

func TestProductPostgres_FindByID(t *testing.T) {
	ctx := context.Background()
	repo, mock := newRepo(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM productos WHERE id = ?").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(4, "Arroz", 10, "/uploads/r.jpg", nil))

		p, err := repo.FindByID(ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, int64(4), p.ID)
		assert.Equal(t, "/uploads/r.jpg", *p.Image)
		assert.Nil(t, p.Video)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM productos WHERE id = ?").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(productCols))

		p, err := repo.FindByID(ctx, 99)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_List(t *testing.T) {
	ctx := context.Background()

	t.Run("ordered rows", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM productos ORDER BY id ASC").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, "Leche", 2, nil, nil).
				AddRow(2, "Pan", 5, "/uploads/p.png", nil))

		items, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, int64(1), items[0].ID)
		assert.Equal(t, int64(2), items[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM productos ORDER BY id ASC").
			WillReturnRows(sqlmock.NewRows(productCols))

		items, err := repo.List(ctx)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM productos").WillReturnError(errors.New("down"))

		items, err := repo.List(ctx)

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	t.Run("row iteration error", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM productos").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, "Leche", 2, nil, nil).
				RowError(0, errors.New("broken row")))

		items, err := repo.List(ctx)

		assert.EqualError(t, err, "broken row")
		assert.Nil(t, items)
	})
}

func TestProductPostgres_Update(t *testing.T) {
	ctx := context.Background()
	repo, mock := newRepo(t)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectQuery("UPDATE productos SET (.+) WHERE id = ?").
			WithArgs("Leche", 5, nil, "/uploads/v.mp4", int64(1)).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(1, "Leche", 5, nil, "/uploads/v.mp4"))

		p, err := repo.Update(ctx, &model.Product{ID: 1, Name: "Leche", Quantity: 5, Video: strPtr("/uploads/v.mp4")})

		require.NoError(t, err)
		assert.Equal(t, 5, p.Quantity)
		assert.Equal(t, "/uploads/v.mp4", *p.Video)
	})

	t.Run("row vanished", func(t *testing.T) {
		mock.ExpectQuery("UPDATE productos").
			WithArgs("Leche", 5, nil, nil, int64(2)).
			WillReturnRows(sqlmock.NewRows(productCols))

		p, err := repo.Update(ctx, &model.Product{ID: 2, Name: "Leche", Quantity: 5})

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mock := newRepo(t)

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM productos WHERE id = ?").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(1, "Leche", 2, "/uploads/a.png", nil))

		p, err := repo.Delete(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "/uploads/a.png", *p.Image)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM productos WHERE id = ?").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(productCols))

		p, err := repo.Delete(ctx, 1)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
