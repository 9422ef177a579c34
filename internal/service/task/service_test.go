package task_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/sanashii/Simple-CRUD-API/internal/model/task"
	taskservice "github.com/sanashii/Simple-CRUD-API/internal/service/task"
)

func boolPtr(b bool) *bool { return &b }

type failingStore struct {
	readErr  error
	writeErr error
}

func (f failingStore) ReadAll(context.Context) ([]model.Task, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return []model.Task{{ID: 1, Title: "existing"}}, nil
}

func (f failingStore) WriteAll(context.Context, []model.Task) error {
	return f.writeErr
}

func TestServiceCreateAssignsNextID(t *testing.T) {
	store := model.NewMemoryStore([]model.Task{{ID: 2, Title: "b"}, {ID: 7, Title: "c"}, {ID: 4, Title: "d"}})
	svc := taskservice.NewService(store, model.UpdatePresence, nil)

	created, err := svc.Create(context.Background(), "buy milk")
	require.NoError(t, err)
	assert.Equal(t, model.Task{ID: 8, Title: "buy milk", Completed: false}, created)

	tasks, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	assert.Equal(t, created, tasks[3], "new tasks are appended")
}

func TestServiceCreateOnEmptyStartsAtOne(t *testing.T) {
	svc := taskservice.NewService(model.NewMemoryStore(nil), "", nil)

	created, err := svc.Create(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestServiceCreateRequiresTitle(t *testing.T) {
	svc := taskservice.NewService(model.NewMemoryStore(nil), model.UpdatePresence, nil)

	_, err := svc.Create(context.Background(), "")
	assert.ErrorIs(t, err, taskservice.ErrTitleRequired)
}

func TestServiceRoundTrip(t *testing.T) {
	svc := taskservice.NewService(model.NewMemoryStore(nil), model.UpdatePresence, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "walk dog")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestServiceListEmpty(t *testing.T) {
	svc := taskservice.NewService(model.NewFileStore(filepath.Join(t.TempDir(), "db.json")), model.UpdatePresence, nil)

	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestServiceUpdatePresenceAppliesExplicitFalse(t *testing.T) {
	store := model.NewMemoryStore([]model.Task{{ID: 1, Title: "buy milk", Completed: true}})
	svc := taskservice.NewService(store, model.UpdatePresence, nil)

	updated, err := svc.Update(context.Background(), 1, model.Patch{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, model.Task{ID: 1, Title: "buy milk", Completed: false}, updated)
}

func TestServiceUpdateTruthyIgnoresExplicitFalse(t *testing.T) {
	store := model.NewMemoryStore([]model.Task{{ID: 1, Title: "buy milk", Completed: true}})
	svc := taskservice.NewService(store, model.UpdateTruthy, nil)

	updated, err := svc.Update(context.Background(), 1, model.Patch{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
}

func TestServiceUpdateOmittedFieldsUnchanged(t *testing.T) {
	store := model.NewMemoryStore([]model.Task{{ID: 1, Title: "buy milk", Completed: true}})
	svc := taskservice.NewService(store, model.UpdatePresence, nil)

	updated, err := svc.Update(context.Background(), 1, model.Patch{})
	require.NoError(t, err)
	assert.Equal(t, model.Task{ID: 1, Title: "buy milk", Completed: true}, updated)
}

func TestServiceUpdateRejectsEmptyTitle(t *testing.T) {
	store := model.NewMemoryStore([]model.Task{{ID: 1, Title: "buy milk"}})
	svc := taskservice.NewService(store, model.UpdatePresence, nil)

	empty := ""
	_, err := svc.Update(context.Background(), 1, model.Patch{Title: &empty})
	assert.ErrorIs(t, err, taskservice.ErrTitleRequired)
}

func TestServiceUpdateMissing(t *testing.T) {
	svc := taskservice.NewService(model.NewMemoryStore(nil), model.UpdatePresence, nil)

	_, err := svc.Update(context.Background(), 3, model.Patch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, taskservice.ErrTaskNotFound)
}

func TestServiceDeleteIsNotRepeatable(t *testing.T) {
	initial := []model.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}
	store := model.NewMemoryStore(initial)
	svc := taskservice.NewService(store, model.UpdatePresence, nil)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 2))
	assert.ErrorIs(t, svc.Delete(ctx, 2), taskservice.ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 42), taskservice.ErrTaskNotFound)

	tasks, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{ID: 1, Title: "a"}, {ID: 3, Title: "c"}}, tasks)
}

func TestServicePropagatesStorageErrors(t *testing.T) {
	readErr := &model.StorageError{Op: "decode", Err: errors.New("bad json")}
	svc := taskservice.NewService(failingStore{readErr: readErr}, model.UpdatePresence, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	var storageErr *model.StorageError
	require.ErrorAs(t, err, &storageErr)

	_, err = svc.Get(ctx, 1)
	assert.ErrorAs(t, err, &storageErr)

	writeErr := &model.StorageError{Op: "write", Err: errors.New("disk full")}
	svc = taskservice.NewService(failingStore{writeErr: writeErr}, model.UpdatePresence, nil)

	_, err = svc.Create(ctx, "x")
	assert.ErrorAs(t, err, &storageErr)
	assert.ErrorAs(t, svc.Delete(ctx, 1), &storageErr)
}

func TestServiceConcurrentCreatesKeepEveryWrite(t *testing.T) {
	store := model.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	svc := taskservice.NewService(store, model.UpdatePresence, nil)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, "parallel")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, workers)

	ids := make([]int, 0, len(tasks))
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
}
