package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/DelphiTri/website/internal/config"
)

// InitPostgres opens the sqlx handle used for raw read-only queries and the
// health check. Connection is retried while the database container starts.
func InitPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn := "postgres", cfg.DSN()
	if cfg.Driver == "sqlite" {
		driver, dsn = "sqlite3", cfg.SQLitePath
	}

	var (
		conn *sqlx.DB
		err  error
	)
	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect(driver, dsn)
		if err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, err
}
