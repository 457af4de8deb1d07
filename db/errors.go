package db

import "github.com/ceyewan/shardmanager/xerrors"

var (
	// ErrSQLiteConnectorRequired SQLite 连接器未提供
	ErrSQLiteConnectorRequired = xerrors.New("db: sqlite connector is required")

	// ErrNotConnected 连接器尚未 Connect
	ErrNotConnected = xerrors.New("db: connector is not connected")
)
