package docstore

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBackend(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQL(db), mock
}

func TestMySQLGetNotFound(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version, body FROM documents WHERE collection = ? AND id = ?`)).
		WithArgs("workshops", "w1").
		WillReturnRows(sqlmock.NewRows([]string{"version", "body"}))

	_, err := m.Get(context.Background(), "workshops", "w1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLQueryWithFilter(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, version, body FROM documents WHERE collection = ? AND JSON_EXTRACT(body, ?) = CAST(? AS JSON) ORDER BY id`)).
		WithArgs("pauseArt", "$.status", `"published"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "body"}).
			AddRow("s1", 4, []byte(`{"status":"published"}`)))

	docs, err := m.Query(context.Background(), "pauseArt", &Filter{Field: "status", Value: "published"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s1", docs[0].ID)
	assert.EqualValues(t, 4, docs[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCommitAppliesWrites(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version FROM documents WHERE collection = ? AND id = ? FOR UPDATE`)).
		WithArgs("workshops", "w1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, version, body) VALUES (?, ?, 1, ?)`)).
		WithArgs("bookings", "b1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`ON DUPLICATE KEY UPDATE version = version \+ 1`).
		WithArgs("workshops", "w1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := m.Commit(context.Background(), Commit{
		Reads: map[Key]int64{{Collection: "workshops", ID: "w1"}: 2},
		Writes: []Write{
			{Kind: WriteCreate, Key: Key{Collection: "bookings", ID: "b1"}, Body: []byte(`{}`)},
			{Kind: WritePut, Key: Key{Collection: "workshops", ID: "w1"}, Body: []byte(`{}`)},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCommitStaleVersion(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version FROM documents WHERE collection = ? AND id = ? FOR UPDATE`)).
		WithArgs("workshops", "w1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
	mock.ExpectRollback()

	err := m.Commit(context.Background(), Commit{
		Reads:  map[Key]int64{{Collection: "workshops", ID: "w1"}: 2},
		Writes: []Write{{Kind: WriteDelete, Key: Key{Collection: "workshops", ID: "w1"}}},
	})
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCommitDuplicateKeyIsStale(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, version, body) VALUES (?, ?, 1, ?)`)).
		WithArgs("categories", "c1", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: errDupEntry, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := m.Commit(context.Background(), Commit{
		Writes: []Write{{Kind: WriteCreate, Key: Key{Collection: "categories", ID: "c1"}, Body: []byte(`{}`)}},
	})
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCommitPhantomRow(t *testing.T) {
	m, mock := newMockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, version, body FROM documents WHERE collection = ? AND JSON_EXTRACT(body, ?) = CAST(? AS JSON) ORDER BY id FOR UPDATE`)).
		WithArgs("categories", "$.slug", `"peinture"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "body"}).
			AddRow("c9", 1, []byte(`{"slug":"peinture"}`)))
	mock.ExpectRollback()

	err := m.Commit(context.Background(), Commit{
		Queries: []QueryRead{{
			Collection: "categories",
			Filter:     &Filter{Field: "slug", Value: "peinture"},
			Seen:       map[string]int64{},
		}},
		Writes: []Write{{Kind: WriteCreate, Key: Key{Collection: "categories", ID: "c1"}, Body: []byte(`{}`)}},
	})
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}
