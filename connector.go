// file: connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultPingTimeout  = 5 * time.Second
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
)

// ConnectionConfig describes a SQL database connection.
type ConnectionConfig struct {
	Type     string // mysql | postgres | mssql
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Connector wraps a database/sql handle opened for one of the supported
// drivers.
type Connector struct {
	cfg ConnectionConfig
	db  *sql.DB
}

// DB returns the underlying database handle.
func (c *Connector) DB() *sql.DB {
	return c.db
}

// Type returns the normalized driver type the connector was opened with.
func (c *Connector) Type() string {
	return c.cfg.Type
}

// TestConnection pings the database with a bounded timeout.
func (c *Connector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", c.cfg.Type, err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
