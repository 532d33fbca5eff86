// Package database opens the document store the services run on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/atelier-booking/internal/config"
	"github.com/iliyamo/atelier-booking/internal/docstore"
)

// Open connects to MySQL and verifies the connection.
func Open(cfg config.Config) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenStore builds the document store for cfg.StoreBackend.  The memory
// backend loses everything on exit and is meant for local runs and demos.
// The returned close func releases the database pool.
func OpenStore(ctx context.Context, cfg config.Config) (*docstore.Store, func(), error) {
	opts := []docstore.Option{
		docstore.WithMaxAttempts(cfg.Store.MaxAttempts),
		docstore.WithBackoff(cfg.Store.Backoff),
	}
	switch cfg.StoreBackend {
	case "memory":
		log.Printf("store: using in-memory backend; data is not persisted")
		return docstore.New(docstore.NewMemory(), opts...), func() {}, nil
	case "mysql":
		db, err := Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		backend := docstore.NewMySQL(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return docstore.New(backend, opts...), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
