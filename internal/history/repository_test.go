package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/shardmanager/connector"
	"github.com/ceyewan/shardmanager/db"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/testkit"
	"github.com/ceyewan/shardmanager/xerrors"
)

type fixture struct {
	conn  connector.SQLiteConnector
	db    db.DB
	store Store
	meter metrics.Meter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kit := testkit.NewKit(t)

	conn := testkit.NewSQLiteConnector(t)
	database, err := db.New(nil, db.WithSQLiteConnector(conn), db.WithLogger(kit.Logger), db.WithSilentMode())
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(kit.Ctx, database))

	store, err := New(database, WithLogger(kit.Logger), WithMeter(kit.Meter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kit.Meter.Shutdown(context.Background()) })

	return &fixture{conn: conn, db: database, store: store, meter: kit.Meter}
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func input(userID string, hash int64) *CreateInput {
	return &CreateInput{UserID: strPtr(userID), HashCode: intPtr(hash)}
}

// setCreatedAt 改写 created_at，用于构造确定的排序
func (f *fixture) setCreatedAt(t *testing.T, id int64, ts string) {
	t.Helper()
	err := f.db.DB(context.Background()).Exec("UPDATE history SET created_at = ? WHERE id = ?", ts, id).Error
	require.NoError(t, err)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.store.Create(ctx, input("u1", 1))
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, f.db))
	require.NoError(t, EnsureSchema(ctx, f.db))

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)

	var indexes []string
	err = f.db.DB(ctx).Raw("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'history' ORDER BY name").
		Scan(&indexes).Error
	require.NoError(t, err)
	assert.Contains(t, indexes, "idx_created_at")
	assert.Contains(t, indexes, "idx_user_id")
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := &CreateInput{
		UserID:          strPtr("user-42"),
		HashCode:        intPtr(-123456789),
		MySQLPrefix:     strPtr("t_order"),
		MySQLShardCount: intPtr(16),
		MySQLShardIndex: intPtr(5),
		MySQLTableName:  strPtr("t_order_05"),
	}
	before := time.Now().UTC().Add(-2 * time.Second)
	id, err := f.store.Create(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "user-42", rec.UserID)
	assert.Equal(t, int64(-123456789), rec.HashCode)
	require.NotNil(t, rec.MySQLPrefix)
	assert.Equal(t, "t_order", *rec.MySQLPrefix)
	assert.Equal(t, int64(16), *rec.MySQLShardCount)
	assert.Equal(t, int64(5), *rec.MySQLShardIndex)
	assert.Equal(t, "t_order_05", *rec.MySQLTableName)
	assert.Nil(t, rec.MongoPrefix)
	assert.Nil(t, rec.MongoShardCount)
	assert.Nil(t, rec.MongoShardIndex)
	assert.Nil(t, rec.MongoTableName)
	assert.True(t, rec.CreatedAt.After(before), "created_at %v should be assigned by the store", rec.CreatedAt)
}

func TestCreateIDsIncrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := f.store.Create(ctx, input("u", int64(i)))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestCreateRequiresUserID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, &CreateInput{HashCode: intPtr(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingUserID)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))

	_, err = f.store.Create(ctx, nil)
	assert.ErrorIs(t, err, ErrMissingUserID)

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateMissingHashCodeIsStorageError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, &CreateInput{UserID: strPtr("u1")})
	require.Error(t, err)
	assert.False(t, xerrors.Is(err, xerrors.ErrInvalidInput))
	assert.False(t, xerrors.Is(err, xerrors.ErrNotFound))
	assert.Contains(t, err.Error(), "NOT NULL")
}

func TestListOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idOld, err := f.store.Create(ctx, input("old", 1))
	require.NoError(t, err)
	idA, err := f.store.Create(ctx, input("a", 2))
	require.NoError(t, err)
	idB, err := f.store.Create(ctx, input("b", 3))
	require.NoError(t, err)

	f.setCreatedAt(t, idOld, "2020-01-01 00:00:00")
	f.setCreatedAt(t, idA, "2024-06-01 12:00:00")
	f.setCreatedAt(t, idB, "2024-06-01 12:00:00")

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// 相同 created_at 时 id 大的在前
	assert.Equal(t, []int64{idB, idA, idOld}, []int64{records[0].ID, records[1].ID, records[2].ID})
}

func TestListLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.store.Create(ctx, input("u", int64(i)))
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "limited", limit: 2, want: 2},
		{name: "larger than table", limit: 1000, want: 5},
		{name: "zero", limit: 0, want: 0},
		{name: "negative means unbounded", limit: -1, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := f.store.List(ctx, tt.limit)
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.store.Create(ctx, input("u1", 1))
	require.NoError(t, err)
	keep, err := f.store.Create(ctx, input("u2", 2))
	require.NoError(t, err)

	require.NoError(t, f.store.Delete(ctx, id))

	err = f.store.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))

	err = f.store.Delete(ctx, 999999)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, keep, records[0].ID)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	count, err := f.store.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 3; i++ {
		_, err := f.store.Create(ctx, input("u", int64(i)))
		require.NoError(t, err)
	}

	count, err = f.store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	records, err := f.store.List(ctx, DefaultListLimit)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestConcurrentCreateReleasesConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := f.store.Create(ctx, input("concurrent", int64(i)))
			assert.NoError(t, err)
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	sqlDB, err := f.conn.GetClient().DB()
	require.NoError(t, err)
	stats := sqlDB.Stats()
	assert.Zero(t, stats.InUse)
	assert.Zero(t, stats.Idle)
}

func TestStoreErrorAfterClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conn.Close())

	_, err := f.store.List(context.Background(), DefaultListLimit)
	require.Error(t, err)
	assert.False(t, xerrors.Is(err, xerrors.ErrNotFound))
}

func TestOperationMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, input("u1", 1))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, &CreateInput{})
	require.Error(t, err)
	_, err = f.store.List(ctx, 10)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	metrics.Handler(f.meter).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, MetricOperationsTotal)
	assert.Contains(t, body, `operation="create"`)
	assert.Contains(t, body, `operation="list"`)
	assert.Contains(t, body, `outcome="error"`)
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New(nil)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}
