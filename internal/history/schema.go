package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/ceyewan/shardmanager/db"
	"github.com/ceyewan/shardmanager/xerrors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		hash_code INTEGER NOT NULL,
		mysql_prefix TEXT,
		mysql_shard_count INTEGER,
		mysql_shard_index INTEGER,
		mysql_table_name TEXT,
		mongo_prefix TEXT,
		mongo_shard_count INTEGER,
		mongo_shard_index INTEGER,
		mongo_table_name TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_created_at ON history(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_user_id ON history(user_id)`,
}

// EnsureSchema 创建 history 表和索引，可重复执行，已有数据不受影响
func EnsureSchema(ctx context.Context, database db.DB) error {
	return database.WithConn(ctx, func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return xerrors.Wrap(err, "ensure history schema")
			}
		}
		return nil
	})
}
