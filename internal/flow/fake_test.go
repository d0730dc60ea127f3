// ABOUTME: Hand-written in-memory FieldRepository for flow tests
// ABOUTME: Records calls and lets tests inject failures or hold operations open

package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/harper/cropfit/internal/task"
)

type createCall struct {
	userID   string
	name     string
	center   models.Coordinate
	boundary []models.Coordinate
}

type fakeRepo struct {
	mu          sync.Mutex
	fields      map[string]*models.Field
	nextID      int
	createCalls []createCall
	listCalls   int

	createErr error
	listErr   error
	updateErr error
	deleteErr error

	// updateGate, when set, holds UpdateFavorite until it is closed.
	updateGate chan struct{}
}

func newFakeRepo(fields ...*models.Field) *fakeRepo {
	r := &fakeRepo{fields: map[string]*models.Field{}}
	for _, f := range fields {
		r.fields[f.ID] = f
	}
	return r
}

func (r *fakeRepo) CreateField(_ context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls = append(r.createCalls, createCall{userID, name, center, boundary})
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	f := &models.Field{
		ID:        fmt.Sprintf("field-%d", r.nextID),
		Name:      name,
		Center:    center,
		Boundary:  boundary,
		CreatedAt: time.Now().UnixMilli(),
	}
	r.fields[f.ID] = f
	return f, nil
}

func (r *fakeRepo) ListFields(_ context.Context, userID string) ([]*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*models.Field, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, f)
	}
	storage.SortFields(out)
	return out, nil
}

func (r *fakeRepo) UpdateFavorite(_ context.Context, _ string, id string, favorite bool) error {
	if r.updateGate != nil {
		<-r.updateGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	f, ok := r.fields[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.fields[id] = f.WithFavorite(favorite)
	return nil
}

func (r *fakeRepo) DeleteField(_ context.Context, _ string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.fields[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.fields, id)
	return nil
}

func (r *fakeRepo) creates() []createCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]createCall(nil), r.createCalls...)
}

// settle waits for every task of the scope and runs their continuations.
func settle(scope *task.Scope, loop *task.Loop) {
	scope.Wait()
	loop.Drain()
}

func newScope() (*task.Scope, *task.Loop) {
	loop := task.NewLoop()
	return task.NewScope(context.Background(), loop), loop
}
