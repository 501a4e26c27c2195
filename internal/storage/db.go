package storage

import (
	"context"
	"database/sql"
	"errors"

	dbconnector "assetscan-backend"
)

type Store struct {
	conn *dbconnector.Connector
	DB   *sql.DB
}

func NewStore(ctx context.Context, cfg dbconnector.ConnectionConfig) (*Store, error) {
	conn, err := dbconnector.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	if err := conn.TestConnection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{conn: conn, DB: conn.DB()}, nil
}

func (s *Store) DriverType() string {
	return s.conn.Type()
}

func (s *Store) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

var ErrNotFound = errors.New("not found")
