package infra_db_init

import (
	"fmt"
	"log"

	"github.com/humanbelnik/lootsplit/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

func Open(cfg config.Database) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return sqlx.Connect(DriverPostgres, dsn)
	case DriverSQLite:
		db, err := sqlx.Connect(DriverSQLite, cfg.SQLitePath+"?_busy_timeout=5000")
		if err != nil {
			return nil, err
		}
		// a single connection keeps :memory: databases shared and writes serialized
		db.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func MustEstablishConn(cfg config.Database) *sqlx.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return db
}
