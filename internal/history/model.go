// Package history 管理分片计算历史记录：建表、查询、保存、删除和清空。
package history

import "time"

// TableName 历史记录表名
const TableName = "history"

// DefaultListLimit List 未指定数量时返回的条数
const DefaultListLimit = 100

// Record 一条分片计算历史记录
//
// CreatedAt 由数据库在插入时写入，不会被更新。
type Record struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID          string    `gorm:"column:user_id;not null" json:"user_id"`
	HashCode        int64     `gorm:"column:hash_code;not null" json:"hash_code"`
	MySQLPrefix     *string   `gorm:"column:mysql_prefix" json:"mysql_prefix"`
	MySQLShardCount *int64    `gorm:"column:mysql_shard_count" json:"mysql_shard_count"`
	MySQLShardIndex *int64    `gorm:"column:mysql_shard_index" json:"mysql_shard_index"`
	MySQLTableName  *string   `gorm:"column:mysql_table_name" json:"mysql_table_name"`
	MongoPrefix     *string   `gorm:"column:mongo_prefix" json:"mongo_prefix"`
	MongoShardCount *int64    `gorm:"column:mongo_shard_count" json:"mongo_shard_count"`
	MongoShardIndex *int64    `gorm:"column:mongo_shard_index" json:"mongo_shard_index"`
	MongoTableName  *string   `gorm:"column:mongo_table_name" json:"mongo_table_name"`
	CreatedAt       time.Time `gorm:"column:created_at;<-:false" json:"created_at"`
}

// TableName 实现 gorm 的 Tabler 接口
func (Record) TableName() string {
	return TableName
}

// CreateInput 保存历史记录的请求体
//
// UserID 为空指针（缺失或 null）时拒绝保存；HashCode 不做校验，
// 缺失时由数据库的 NOT NULL 约束拒绝。
type CreateInput struct {
	UserID          *string `json:"user_id"`
	HashCode        *int64  `json:"hash_code"`
	MySQLPrefix     *string `json:"mysql_prefix"`
	MySQLShardCount *int64  `json:"mysql_shard_count"`
	MySQLShardIndex *int64  `json:"mysql_shard_index"`
	MySQLTableName  *string `json:"mysql_table_name"`
	MongoPrefix     *string `json:"mongo_prefix"`
	MongoShardCount *int64  `json:"mongo_shard_count"`
	MongoShardIndex *int64  `json:"mongo_shard_index"`
	MongoTableName  *string `json:"mongo_table_name"`
}

// insertRow 写入用的行结构，HashCode 保持可空以便交给数据库约束判定
type insertRow struct {
	ID              int64 `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          string
	HashCode        *int64
	MySQLPrefix     *string `gorm:"column:mysql_prefix"`
	MySQLShardCount *int64  `gorm:"column:mysql_shard_count"`
	MySQLShardIndex *int64  `gorm:"column:mysql_shard_index"`
	MySQLTableName  *string `gorm:"column:mysql_table_name"`
	MongoPrefix     *string
	MongoShardCount *int64
	MongoShardIndex *int64
	MongoTableName  *string
}

func (insertRow) TableName() string {
	return TableName
}

func newInsertRow(in *CreateInput) *insertRow {
	return &insertRow{
		UserID:          *in.UserID,
		HashCode:        in.HashCode,
		MySQLPrefix:     in.MySQLPrefix,
		MySQLShardCount: in.MySQLShardCount,
		MySQLShardIndex: in.MySQLShardIndex,
		MySQLTableName:  in.MySQLTableName,
		MongoPrefix:     in.MongoPrefix,
		MongoShardCount: in.MongoShardCount,
		MongoShardIndex: in.MongoShardIndex,
		MongoTableName:  in.MongoTableName,
	}
}
