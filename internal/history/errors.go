package history

import "github.com/ceyewan/shardmanager/xerrors"

var (
	// ErrMissingUserID 请求体缺少 user_id
	ErrMissingUserID = xerrors.Wrap(xerrors.ErrInvalidInput, "user_id is required")

	// ErrRecordNotFound 待删除的记录不存在
	ErrRecordNotFound = xerrors.Wrap(xerrors.ErrNotFound, "history record not found")
)
