package persist

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/studyplanner/internal/db"
	"github.com/Joseda-hg/studyplanner/internal/model"
	"github.com/Joseda-hg/studyplanner/internal/task"
)

type memoryKV struct {
	values map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string][]byte{}}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func TestRoundTripThroughStore(t *testing.T) {
	kv := openSQLiteKV(t)
	bridge := New(kv, nil)

	store := task.New(bridge.Load(context.Background()), task.WithObserver(bridge.Observer()))
	for _, draft := range []model.Draft{
		{Text: "A", Category: model.CategoryStudy, Priority: model.PriorityHigh, DueDate: "2024-06-01"},
		{Text: "B"},
		{Text: "C", Category: model.CategoryPersonal, Priority: model.PriorityLow},
		{Text: "D", Category: model.CategoryWork, DueDate: "2024-07-15"},
	} {
		_, err := store.Create(draft)
		require.NoError(t, err)
	}
	require.NoError(t, store.ToggleComplete(2))
	require.NoError(t, store.Delete(1))
	require.NoError(t, bridge.Err())

	reloaded := New(kv, nil).Load(context.Background())
	require.Equal(t, store.Tasks(), reloaded)
}

func TestEmptyTextDoesNotSave(t *testing.T) {
	kv := newMemoryKV()
	bridge := New(kv, nil)
	store := task.New(bridge.Load(context.Background()), task.WithObserver(bridge.Observer()))

	_, err := store.Create(model.Draft{Text: ""})
	require.ErrorIs(t, err, task.ErrEmptyText)
	require.Zero(t, kv.sets)

	_, err = store.Create(model.Draft{Text: "real"})
	require.NoError(t, err)
	require.Equal(t, 1, kv.sets)
}

func TestLoadDegradesToEmpty(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	t.Run("absent", func(t *testing.T) {
		tasks := New(newMemoryKV(), logger).Load(context.Background())
		require.NotNil(t, tasks)
		require.Empty(t, tasks)
	})

	t.Run("malformed", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[Key] = []byte(`{not json`)
		require.Empty(t, New(kv, logger).Load(context.Background()))
		require.Contains(t, logs.String(), "malformed")
	})

	t.Run("null", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[Key] = []byte(`null`)
		tasks := New(kv, logger).Load(context.Background())
		require.NotNil(t, tasks)
		require.Empty(t, tasks)
	})

	t.Run("unavailable", func(t *testing.T) {
		kv := newMemoryKV()
		kv.getErr = errors.New("storage disabled")
		require.Empty(t, New(kv, logger).Load(context.Background()))
		require.Contains(t, logs.String(), "storage disabled")
	})
}

func TestLoadAcceptsLegacyRecords(t *testing.T) {
	kv := newMemoryKV()
	kv.values[Key] = []byte(`[{"text":"Old","category":"Study","priority":"Low","dueDate":"","timestamp":"6/1/2024, 8:00:00 AM","completed":true},{"text":"Partial"}]`)

	tasks := New(kv, nil).Load(context.Background())
	require.Len(t, tasks, 2)
	require.Equal(t, model.Task{Text: "Old", Category: model.CategoryStudy, Priority: model.PriorityLow, Timestamp: "6/1/2024, 8:00:00 AM", Completed: true}, tasks[0])
	require.Equal(t, model.Task{Text: "Partial"}, tasks[1])
}

func TestSaveFailureIsLoggedNotFatal(t *testing.T) {
	var logs bytes.Buffer
	kv := newMemoryKV()
	kv.setErr = errors.New("quota exceeded")
	bridge := New(kv, log.New(&logs, "", 0))
	store := task.New(nil, task.WithObserver(bridge.Observer()))

	created, err := store.Create(model.Draft{Text: "still works"})
	require.NoError(t, err)
	require.Equal(t, []model.Task{created}, store.Tasks())
	require.ErrorContains(t, bridge.Err(), "quota exceeded")
	require.Contains(t, logs.String(), "save snapshot")

	kv.setErr = nil
	require.NoError(t, store.ToggleComplete(0))
	require.NoError(t, bridge.Err())
}

func TestSaveWritesArrayForEmptyCollection(t *testing.T) {
	kv := newMemoryKV()
	require.NoError(t, New(kv, nil).Save(context.Background(), nil))
	require.Equal(t, `[]`, string(kv.values[Key]))
}

func openSQLiteKV(t *testing.T) *db.KVStore {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return db.NewKVStore(conn)
}
