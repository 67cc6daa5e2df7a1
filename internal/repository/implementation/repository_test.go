package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestGraphRepository_TreatmentFor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGraphRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM "diseases" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "treatment"}).AddRow("d1", "磺胺类药物"))

	text, err := repo.TreatmentFor(context.Background(), "传染性鼻炎")
	require.NoError(t, err)
	assert.Equal(t, "磺胺类药物", text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_UnknownDiseaseHasNoText(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGraphRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM "diseases" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "prevention"}))

	text, err := repo.PreventionFor(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGraphRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM "diseases"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.TreatmentFor(context.Background(), "传染性鼻炎")
	assert.Error(t, err)
}

func TestGraphRepository_DiseasesForSymptom(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGraphRepository(db)

	mock.ExpectQuery(`JOIN features f ON f.id = df.feature_id WHERE f.name = \$1 ORDER BY d.name LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("传染性鼻炎").AddRow("支原体病"))

	names, err := repo.DiseasesForSymptom(context.Background(), "咳嗽")
	require.NoError(t, err)
	assert.Equal(t, []string{"传染性鼻炎", "支原体病"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSymptomVectorRepository_FindAllOrdersByPosition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSymptomVectorRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "symptom_vectors" ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "position", "embedding", "model", "updated_at"}).
			AddRow("f2", "流鼻涕", 0, "[0,1]", "m3e-small", now).
			AddRow("f1", "咳嗽", 1, "[1,0]", "m3e-small", now))

	entries, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "流鼻涕", entries[0].Name)
	assert.Equal(t, []float32{0, 1}, entries[0].Vector)
	assert.Equal(t, "f1", entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSymptomVectorRepository_ReplaceAll(t *testing.T) {
	t.Run("empty vocabulary clears the table", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "symptom_vectors"`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		require.NoError(t, NewSymptomVectorRepository(db).ReplaceAll(context.Background(), nil, "m3e-small"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed delete rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "symptom_vectors"`).WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		assert.Error(t, NewSymptomVectorRepository(db).ReplaceAll(context.Background(), nil, "m3e-small"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
