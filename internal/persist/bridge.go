package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

// Key is the storage key holding the task snapshot.
const Key = "tasks"

type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Bridge moves whole-collection snapshots between the task store and a KV
// backend. Storage failures are logged and never reach the caller's action.
type Bridge struct {
	kv     KV
	logger *log.Logger

	mu      sync.Mutex
	lastErr error
}

func New(kv KV, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Bridge{kv: kv, logger: logger}
}

// Load returns the stored snapshot, or an empty collection when it is
// missing, unreadable or malformed.
func (b *Bridge) Load(ctx context.Context) []model.Task {
	data, ok, err := b.kv.Get(ctx, Key)
	if err != nil {
		b.logger.Printf("load snapshot: %v", err)
		return []model.Task{}
	}
	if !ok {
		return []model.Task{}
	}

	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		b.logger.Printf("load snapshot: malformed data: %v", err)
		return []model.Task{}
	}
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}

func (b *Bridge) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	err := b.save(ctx, tasks)

	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()

	if err != nil {
		b.logger.Printf("save snapshot: %v", err)
	}
	return err
}

func (b *Bridge) save(ctx context.Context, tasks []model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return b.kv.Set(ctx, Key, data)
}

// Err returns the outcome of the most recent save.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Observer adapts Save to the task store's observer hook.
func (b *Bridge) Observer() func([]model.Task) {
	return func(tasks []model.Task) {
		_ = b.Save(context.Background(), tasks)
	}
}
