// file: factory.go
package dbconnector

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// NewConnector opens a connection for the configured database type.
// The connection is opened lazily; call TestConnection to verify it.
func NewConnector(cfg ConnectionConfig) (*Connector, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, errors.New("connection type is required")
	}
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	var driverName, dsn string
	switch cfg.Type {
	case "mysql":
		driverName = "mysql"
		dsn = mysqlDSN(&cfg)
	case "postgres", "postgresql":
		cfg.Type = "postgres"
		driverName = "postgres"
		dsn = postgresDSN(&cfg)
	case "mssql", "sqlserver":
		cfg.Type = "mssql"
		driverName = "sqlserver"
		dsn = mssqlDSN(&cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := openDatabase(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", cfg.Type, err)
	}
	return &Connector{cfg: cfg, db: db}, nil
}

func openDatabase(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	return db, nil
}
