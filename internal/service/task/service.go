package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sanashii/Simple-CRUD-API/internal/model/task"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("title is required")
)

// Service runs every task operation as one read-modify-write against the
// store. The mutex keeps concurrent requests from losing each other's writes.
type Service struct {
	mu     sync.Mutex
	store  task.Store
	mode   task.UpdateMode
	logger logrus.FieldLogger
}

// NewService wires a store into the service. A nil logger discards output.
func NewService(store task.Store, mode task.UpdateMode, logger logrus.FieldLogger) *Service {
	if mode == "" {
		mode = task.UpdatePresence
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Service{
		store:  store,
		mode:   mode,
		logger: logger.WithField("component", "task_service"),
	}
}

// Mode reports the configured partial update semantics.
func (s *Service) Mode() task.UpdateMode {
	return s.mode
}

// Create appends a new incomplete task with the next free id.
func (s *Service) Create(ctx context.Context, title string) (task.Task, error) {
	if title == "" {
		return task.Task{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	created := task.Task{
		ID:        task.NextID(tasks),
		Title:     title,
		Completed: false,
	}
	tasks = append(tasks, created)

	if err := s.store.WriteAll(ctx, tasks); err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.logger.WithField("task_id", created.ID).Info("task created")
	return created, nil
}

// List returns the collection in stored order.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Get looks up a task by id.
func (s *Service) Get(ctx context.Context, id int) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}

	idx := task.IndexOf(tasks, id)
	if idx < 0 {
		return task.Task{}, ErrTaskNotFound
	}
	return tasks[idx], nil
}

// Update applies patch to the task with id and persists the collection.
func (s *Service) Update(ctx context.Context, id int, patch task.Patch) (task.Task, error) {
	if s.mode == task.UpdatePresence && patch.Title != nil && *patch.Title == "" {
		return task.Task{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	idx := task.IndexOf(tasks, id)
	if idx < 0 {
		return task.Task{}, ErrTaskNotFound
	}

	tasks[idx] = patch.Apply(tasks[idx], s.mode)
	if err := s.store.WriteAll(ctx, tasks); err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id":   id,
		"completed": tasks[idx].Completed,
	}).Info("task updated")
	return tasks[idx], nil
}

// Delete removes the task with id. A missing id leaves the store untouched.
func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	idx := task.IndexOf(tasks, id)
	if idx < 0 {
		return ErrTaskNotFound
	}

	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := s.store.WriteAll(ctx, tasks); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.WithField("task_id", id).Info("task deleted")
	return nil
}
