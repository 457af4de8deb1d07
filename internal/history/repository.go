package history

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/db"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/xerrors"
)

const (
	// MetricOperationsTotal 历史记录操作次数 (Counter)
	MetricOperationsTotal = "history_operations_total"

	// MetricOperationDuration 历史记录操作耗时 (Histogram)
	MetricOperationDuration = "history_operation_duration_seconds"
)

const (
	OperationList   = "list"
	OperationCreate = "create"
	OperationDelete = "delete"
	OperationClear  = "clear"
)

// Store 历史记录仓储
//
// 每个方法只借用一次连接，返回前归还。
type Store interface {
	// List 按 created_at、id 倒序返回最近 limit 条记录，负数表示不限制
	List(ctx context.Context, limit int) ([]Record, error)

	// Create 保存一条记录并返回新 id
	Create(ctx context.Context, in *CreateInput) (int64, error)

	// Delete 删除指定 id 的记录，不存在时返回 ErrRecordNotFound
	Delete(ctx context.Context, id int64) error

	// Clear 删除全部记录，返回删除条数
	Clear(ctx context.Context) (int64, error)
}

// Option 仓储选项
type Option func(*repository)

// WithLogger 注入日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(r *repository) {
		if logger != nil {
			r.logger = logger.WithNamespace("history")
		}
	}
}

// WithMeter 注入指标收集器
func WithMeter(meter metrics.Meter) Option {
	return func(r *repository) {
		if meter != nil {
			r.meter = meter
		}
	}
}

type repository struct {
	db     db.DB
	logger clog.Logger
	meter  metrics.Meter

	operations metrics.Counter
	duration   metrics.Histogram
}

// New 创建历史记录仓储
func New(database db.DB, opts ...Option) (Store, error) {
	if database == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "history: db is required")
	}

	r := &repository{
		db:     database,
		logger: clog.Discard(),
		meter:  metrics.Discard(),
	}
	for _, o := range opts {
		o(r)
	}

	var err error
	r.operations, err = r.meter.Counter(MetricOperationsTotal, "Number of history operations.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create history operations counter")
	}
	r.duration, err = r.meter.Histogram(MetricOperationDuration, "History operation duration in seconds.", metrics.WithUnit("s"))
	if err != nil {
		return nil, xerrors.Wrap(err, "create history duration histogram")
	}

	return r, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]Record, error) {
	start := time.Now()
	var records []Record

	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		// gorm 对负数 limit 不生成 LIMIT 子句，与 SQLite 的负数语义一致
		return tx.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	})
	r.observe(ctx, OperationList, start, err)
	if err != nil {
		return nil, xerrors.Wrap(err, "list history")
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (r *repository) Create(ctx context.Context, in *CreateInput) (int64, error) {
	if in == nil || in.UserID == nil {
		r.observe(ctx, OperationCreate, time.Now(), ErrMissingUserID)
		return 0, ErrMissingUserID
	}

	start := time.Now()
	row := newInsertRow(in)

	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	r.observe(ctx, OperationCreate, start, err)
	if err != nil {
		return 0, xerrors.Wrap(err, "create history")
	}

	r.logger.DebugContext(ctx, "history record created",
		clog.Int64("id", row.ID),
		clog.String("user_id", row.UserID))
	return row.ID, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	var affected int64

	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&Record{})
		affected = res.RowsAffected
		return res.Error
	})
	if err == nil && affected == 0 {
		err = ErrRecordNotFound
	}
	r.observe(ctx, OperationDelete, start, err)

	switch {
	case err == nil:
		return nil
	case xerrors.Is(err, ErrRecordNotFound):
		return err
	default:
		return xerrors.Wrapf(err, "delete history %d", id)
	}
}

func (r *repository) Clear(ctx context.Context) (int64, error) {
	start := time.Now()
	var affected int64

	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{})
		affected = res.RowsAffected
		return res.Error
	})
	r.observe(ctx, OperationClear, start, err)
	if err != nil {
		return 0, xerrors.Wrap(err, "clear history")
	}

	r.logger.InfoContext(ctx, "history cleared", clog.Int64("count", affected))
	return affected, nil
}

func (r *repository) observe(ctx context.Context, operation string, start time.Time, err error) {
	labels := []metrics.Label{
		metrics.L(metrics.LabelOperation, operation),
		metrics.L(metrics.LabelOutcome, metrics.Outcome(err)),
	}
	r.operations.Inc(ctx, labels...)
	r.duration.Record(ctx, time.Since(start).Seconds(), labels...)
}
