package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var handled sync.Map // Val → *atomic.Int32

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) Name() string { return "echo" }

func (j *echoJob) Handle(context.Context) error {
	n, _ := handled.LoadOrStore(j.Val, &atomic.Int32{})
	n.(*atomic.Int32).Add(1)
	return nil
}

var failAttempts atomic.Int32

type failJob struct {
	Reason string `json:"reason"`
}

func (j *failJob) Name() string { return "fail" }

func (j *failJob) Handle(context.Context) error {
	failAttempts.Add(1)
	return errors.New(j.Reason)
}

func newManager(t *testing.T, opts ...queue.Option) *queue.Manager {
	t.Helper()
	q := queue.New(queue.NewMemoryDriver(), append([]queue.Option{queue.WithBackoff(time.Millisecond)}, opts...)...)
	q.Register("echo", func() queue.Job { return &echoJob{} })
	q.Register("fail", func() queue.Job { return &failJob{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Work(ctx, 2)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q
}

func count(val string) int32 {
	n, ok := handled.Load(val)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	q := newManager(t)

	require.NoError(t, q.Dispatch(context.Background(), &echoJob{Val: "hello"}))
	assert.Eventually(t, func() bool { return count("hello") == 1 }, time.Second, 10*time.Millisecond)
}

func TestFailedJobIsRecordedAfterRetries(t *testing.T) {
	failed := &queue.MemoryFailedStore{}
	q := newManager(t, queue.WithMaxRetry(2), queue.WithFailedStore(failed))
	before := failAttempts.Load()

	require.NoError(t, q.Dispatch(context.Background(), &failJob{Reason: "smtp down"}))

	require.Eventually(t, func() bool { return len(failed.Jobs()) == 1 }, 2*time.Second, 10*time.Millisecond)
	f := failed.Jobs()[0]
	assert.Equal(t, "fail", f.JobType)
	assert.Equal(t, 2, f.Attempts)
	assert.EqualError(t, f.Err, "smtp down")
	assert.JSONEq(t, `{"reason":"smtp down"}`, string(f.Payload))
	assert.Equal(t, before+2, failAttempts.Load())
}

func TestDispatchConcurrent(t *testing.T) {
	q := newManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, q.Dispatch(context.Background(), &echoJob{Val: "burst"}))
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return count("burst") == 20 }, 2*time.Second, 10*time.Millisecond)
}

func TestGormFailedStore(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, db.AutoMigrate(&queue.FailedJobRecord{}))

	store := queue.NewGormFailedStore(db)
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, queue.FailedJob{JobType: "a", Payload: []byte(`{}`), Err: errors.New("x"), FailedAt: older, Attempts: 3}))
	require.NoError(t, store.Record(ctx, queue.FailedJob{JobType: "b", Payload: []byte(`{}`), FailedAt: older.Add(time.Hour)}))

	rows, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].JobType)
	assert.Equal(t, "x", rows[1].Error)
}
