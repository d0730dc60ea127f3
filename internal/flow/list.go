// ABOUTME: Field list flow: loads the user's fields and applies favourite and delete actions
// ABOUTME: The held result is replaced wholly; entries change only after the store confirms

package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/fetch"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/harper/cropfit/internal/task"
)

// Messages shown after list actions.
const (
	MsgFieldUpdated     = "Field updated successfully"
	MsgUpdateFailed     = "Failed to update the field. Please try again."
	MsgFieldDeleted     = "Field deleted"
	MsgDeleteFailed     = "Failed to delete field"
	msgFetchErrorPrefix = "Error fetching fields: "
)

// ErrNoSuchEntry is returned for an index outside the loaded list.
var ErrNoSuchEntry = errors.New("no such field in the list")

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// List holds the user's fields as a fetch.Result.
type List struct {
	scope  *task.Scope
	repo   storage.FieldRepository
	userID string
	notify Notifier

	mu       sync.Mutex
	result   fetch.Result[[]*models.Field]
	loads    int
	onChange []func()
}

// NewList creates a list flow in the Loading state. A nil notifier discards messages.
func NewList(scope *task.Scope, repo storage.FieldRepository, userID string, n Notifier) *List {
	if n == nil {
		n = NotifierFunc(func(string) {})
	}
	return &List{scope: scope, repo: repo, userID: userID, notify: n}
}

// OnChange registers fn to run after the held result changes.
func (l *List) OnChange(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Result returns the held result.
func (l *List) Result() fetch.Result[[]*models.Field] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Fields returns the loaded fields, or nil unless the result is Success.
func (l *List) Fields() []*models.Field {
	fields, _ := l.Result().Value()
	return fields
}

// Load replaces the result with Loading and fetches the fields again.
// Only the latest load may publish its outcome.
func (l *List) Load() {
	l.mu.Lock()
	l.loads++
	load := l.loads
	l.mu.Unlock()
	l.set(load, fetch.NewLoading[[]*models.Field]())

	userID := l.userID
	task.Run(l.scope, func(ctx context.Context) ([]*models.Field, error) {
		return l.repo.ListFields(ctx, userID)
	}, func(fields []*models.Field, err error) {
		if err != nil {
			log.Warn("list fields failed", "err", err)
			l.set(load, fetch.NewError[[]*models.Field](msgFetchErrorPrefix+err.Error()))
			return
		}
		if fields == nil {
			fields = []*models.Field{}
		}
		l.set(load, fetch.NewSuccess(fields))
	})
}

// NotifyCreated reloads the list after the capture flow stored a field.
func (l *List) NotifyCreated(*models.Field) {
	l.Load()
}

// ToggleFavorite flips the favourite flag of the entry at index.
func (l *List) ToggleFavorite(index int) error {
	field, err := l.entry(index)
	if err != nil {
		return err
	}

	want := !field.IsFavorite
	userID := l.userID
	task.Run(l.scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.repo.UpdateFavorite(ctx, userID, field.ID, want)
	}, func(_ struct{}, err error) {
		if err != nil {
			log.Warn("update favourite failed", "id", field.ID, "err", err)
			l.notify.Notify(MsgUpdateFailed)
			return
		}
		l.replace(index, field.ID, func(fields []*models.Field, i int) []*models.Field {
			fields[i] = fields[i].WithFavorite(want)
			return fields
		})
		l.notify.Notify(MsgFieldUpdated)
	})
	return nil
}

// Delete removes the entry at index from the store, then from the list.
func (l *List) Delete(index int) error {
	field, err := l.entry(index)
	if err != nil {
		return err
	}

	userID := l.userID
	task.Run(l.scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.repo.DeleteField(ctx, userID, field.ID)
	}, func(_ struct{}, err error) {
		if err != nil {
			log.Warn("delete field failed", "id", field.ID, "err", err)
			l.notify.Notify(MsgDeleteFailed)
			return
		}
		l.replace(index, field.ID, func(fields []*models.Field, i int) []*models.Field {
			return append(fields[:i], fields[i+1:]...)
		})
		l.notify.Notify(MsgFieldDeleted)
	})
	return nil
}

func (l *List) entry(index int) (*models.Field, error) {
	fields := l.Fields()
	if index < 0 || index >= len(fields) {
		return nil, ErrNoSuchEntry
	}
	return fields[index], nil
}

// replace applies edit to a copy of the loaded fields at the position of id.
// The index is tried first; a reload in between falls back to a lookup by id.
func (l *List) replace(index int, id string, edit func(fields []*models.Field, i int) []*models.Field) {
	l.mu.Lock()
	current, ok := l.result.Value()
	if !ok {
		l.mu.Unlock()
		return
	}
	i := -1
	if index >= 0 && index < len(current) && current[index].ID == id {
		i = index
	} else {
		for j, f := range current {
			if f.ID == id {
				i = j
				break
			}
		}
	}
	if i < 0 {
		l.mu.Unlock()
		return
	}

	fields := append([]*models.Field(nil), current...)
	l.result = fetch.NewSuccess(edit(fields, i))
	hooks := append([]func(){}, l.onChange...)
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (l *List) set(load int, r fetch.Result[[]*models.Field]) {
	l.mu.Lock()
	if load != l.loads {
		l.mu.Unlock()
		return
	}
	l.result = r
	hooks := append([]func(){}, l.onChange...)
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
