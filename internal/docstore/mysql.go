package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
  collection VARCHAR(64)  NOT NULL,
  id         VARCHAR(64)  NOT NULL,
  version    BIGINT       NOT NULL,
  body       JSON         NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (collection, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQL error numbers that mean "someone else got there first".
const (
	errDupEntry        = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// MySQL stores every collection in one versioned documents table.  Commit
// re-reads the transaction's read set under row locks and applies the
// writes in the same SQL transaction.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps an open connection pool.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// EnsureSchema creates the documents table if it is missing.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, schema)
	return err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (m *MySQL) Get(ctx context.Context, collection, id string) (Doc, error) {
	d := Doc{Key: Key{Collection: collection, ID: id}}
	err := m.db.QueryRowContext(ctx,
		`SELECT version, body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&d.Version, &d.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Doc{}, ErrNotFound
	}
	if err != nil {
		return Doc{}, err
	}
	return d, nil
}

func (m *MySQL) Query(ctx context.Context, collection string, filter *Filter) ([]Doc, error) {
	return query(ctx, m.db, collection, filter, false)
}

func query(ctx context.Context, q querier, collection string, filter *Filter, lock bool) ([]Doc, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, version, body FROM documents WHERE collection = ?`)
	args := []any{collection}
	if filter != nil {
		want, err := filter.encoded()
		if err != nil {
			return nil, err
		}
		sb.WriteString(` AND JSON_EXTRACT(body, ?) = CAST(? AS JSON)`)
		args = append(args, "$."+filter.Field, string(want))
	}
	sb.WriteString(` ORDER BY id`)
	if lock {
		sb.WriteString(` FOR UPDATE`)
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		d := Doc{Key: Key{Collection: collection}}
		if err := rows.Scan(&d.ID, &d.Version, &d.Body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (m *MySQL) Commit(ctx context.Context, c Commit) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := validate(ctx, tx, c); err != nil {
		return classify(err)
	}
	for _, w := range c.Writes {
		if err := apply(ctx, tx, w); err != nil {
			return classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

func validate(ctx context.Context, tx *sql.Tx, c Commit) error {
	for _, k := range sortedKeys(c.Reads) {
		var current int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM documents WHERE collection = ? AND id = ? FOR UPDATE`,
			k.Collection, k.ID,
		).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if current != c.Reads[k] {
			return ErrStale
		}
	}
	for _, q := range c.Queries {
		docs, err := query(ctx, tx, q.Collection, q.Filter, true)
		if err != nil {
			return err
		}
		if !sameResult(q.Seen, docs) {
			return ErrStale
		}
	}
	return nil
}

func apply(ctx context.Context, tx *sql.Tx, w Write) error {
	var err error
	switch w.Kind {
	case WriteCreate:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, version, body) VALUES (?, ?, 1, ?)`,
			w.Key.Collection, w.Key.ID, w.Body)
	case WritePut:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, version, body) VALUES (?, ?, 1, ?)
			 ON DUPLICATE KEY UPDATE version = version + 1, body = VALUES(body)`,
			w.Key.Collection, w.Key.ID, w.Body)
	case WriteDelete:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND id = ?`,
			w.Key.Collection, w.Key.ID)
	default:
		err = fmt.Errorf("unknown write kind %d", w.Kind)
	}
	return err
}

// classify maps lock and duplicate-key failures onto ErrStale so the store
// retries them like any other lost race.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry, errLockWaitTimeout, errDeadlock:
			return ErrStale
		}
	}
	return err
}
