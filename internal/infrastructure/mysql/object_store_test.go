package mysql

import (
	"context"
	"errors"
	"testing"

	"auction-house/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLObjectStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLObjectStore(db), mock
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS object_records").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT data FROM object_records WHERE category = \? AND record_key = \?`).
		WithArgs("item", "widget").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"name":"widget","status":1}`)))

	rec, ok, err := s.Get(ctx, "item", "widget")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Record{"name": "widget", "status": float64(1)}, rec)

	mock.ExpectQuery(`SELECT data FROM object_records`).
		WithArgs("item", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, ok, err = s.Get(ctx, "item", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllFiltersClientSide(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT record_key, data FROM object_records WHERE category = \?`).
		WithArgs("auction").
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "data"}).
			AddRow("a1", []byte(`{"id":"a1","status":1}`)).
			AddRow("a2", []byte(`{"id":"a2","status":3}`)))

	live, err := s.GetAll(context.Background(), "auction", func(r domain.Record) bool {
		return r["status"] == float64(1)
	})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "a1", live[0]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllCorruptRecord(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT record_key, data FROM object_records`).
		WithArgs("bid").
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "data"}).AddRow("b1", []byte(`oops`)))

	_, err := s.GetAll(context.Background(), "bid", nil)
	assert.True(t, errors.Is(err, domain.ErrIntegrity))
}

func TestPutDeleteClear(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO object_records`).
		WithArgs("user", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM object_records WHERE category = \? AND record_key = \?`).
		WithArgs("user", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM object_records`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, s.Put(ctx, "user", "u1", domain.Record{"id": "u1"}))
	require.NoError(t, s.Delete(ctx, "user", "u1"))
	require.NoError(t, s.ClearAll(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndPut(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO object_records .* ON DUPLICATE KEY UPDATE`).
		WithArgs("auction", "a1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE object_records SET data = \?, version = version \+ 1`).
		WithArgs(sqlmock.AnyArg(), "auction", "a1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE object_records SET data = \?, version = version \+ 1`).
		WithArgs(sqlmock.AnyArg(), "auction", "a1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.CompareAndPut(ctx, "auction", "a1", 0, domain.Record{"id": "a1"}))
	require.NoError(t, s.CompareAndPut(ctx, "auction", "a1", 1, domain.Record{"id": "a1"}))

	err := s.CompareAndPut(ctx, "auction", "a1", 1, domain.Record{"id": "a1"})
	assert.True(t, errors.Is(err, domain.ErrVersionConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUnavailable(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT data FROM object_records`).WillReturnError(errors.New("connection refused"))

	_, _, err := s.Get(context.Background(), "item", "widget")
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}
