package task

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

var (
	ErrEmptyText       = errors.New("task text is required")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDueDate  = errors.New("invalid due date")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrTaskNotFound    = errors.New("task not found")
)

// Store owns the ordered task collection and is its only mutator. After every
// successful mutation the observer receives a copy of the full collection.
type Store struct {
	mu       sync.Mutex
	tasks    []model.Task
	now      func() time.Time
	newID    func() string
	observer func([]model.Task)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithObserver(observer func([]model.Task)) Option {
	return func(s *Store) { s.observer = observer }
}

// New seeds a store from a loaded snapshot. Records without an id are given
// one here; nothing else on them is repaired.
func New(tasks []model.Task, opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = s.newID()
		}
		s.tasks = append(s.tasks, task)
	}
	return s
}

func (s *Store) SetObserver(observer func([]model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

func (s *Store) Create(draft model.Draft) (model.Task, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}

	category, err := model.ParseCategory(string(draft.Category))
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	priority, err := model.ParsePriority(string(draft.Priority))
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidPriority, err)
	}

	dueDate := strings.TrimSpace(draft.DueDate)
	if dueDate != "" {
		if _, err := time.Parse(model.DateLayout, dueDate); err != nil {
			return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, dueDate)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.Task{
		ID:        s.newID(),
		Text:      text,
		Category:  category,
		Priority:  priority,
		DueDate:   dueDate,
		Timestamp: s.now().Format(model.TimestampLayout),
	}
	s.tasks = append(s.tasks, created)
	s.notify()
	return created, nil
}

func (s *Store) ToggleComplete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks[index].Completed = !s.tasks[index].Completed
	s.notify()
	return nil
}

func (s *Store) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks[index].Completed = !s.tasks[index].Completed
	s.notify()
	return nil
}

func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.remove(index)
	return nil
}

func (s *Store) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.remove(index)
	return nil
}

// Tasks returns a copy of the collection in display order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[index], nil
}

func (s *Store) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) Stats() (done, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.Completed {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

func (s *Store) remove(index int) {
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.notify()
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.tasks) {
		return fmt.Errorf("%w: have %d, got %d", ErrIndexOutOfRange, len(s.tasks), index)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// notify runs with s.mu held so snapshots reach the observer in mutation order.
func (s *Store) notify() {
	if s.observer == nil {
		return
	}
	s.observer(s.snapshot())
}
