// ABOUTME: Field capture flow: tapped boundary points, marker removal, name validation and submit
// ABOUTME: Repository writes run as scoped tasks; completions update the state on the dispatcher

package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/harper/cropfit/internal/task"
)

// Capture errors. All of them leave the captured points untouched.
// ErrBlankName and ErrTooFewPoints also match models.ErrInvalid.
var (
	ErrBlankName     = fmt.Errorf("%w: field name is required", models.ErrInvalid)
	ErrTooFewPoints  = fmt.Errorf("%w: a field needs at least %d boundary points", models.ErrInvalid, models.MinBoundaryPoints)
	ErrBusy          = errors.New("a field is already being saved")
	ErrUnknownMarker = errors.New("no such marker")
	ErrClosed        = errors.New("screen closed")
)

// CaptureState is the state of a Capture.
type CaptureState int

const (
	Empty CaptureState = iota
	Collecting
	Submitting
	Succeeded
	Failed
)

func (s CaptureState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Collecting:
		return "collecting"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Marker is one tapped boundary point. Two taps on the same coordinate
// are still two markers.
type Marker struct {
	ID       string
	Position models.Coordinate
}

// CaptureView is a snapshot of a Capture for renderers.
type CaptureView struct {
	State      CaptureState
	Markers    []Marker
	Selected   string
	Name       string
	NameError  bool
	Err        string
	FieldAdded bool
}

// Capture collects a boundary and submits it as a new field.
type Capture struct {
	scope  *task.Scope
	repo   storage.FieldRepository
	userID string

	mu        sync.Mutex
	state     CaptureState
	markers   []Marker
	selected  string
	name      string
	nameError bool
	err       error
	added     bool
	gen       int
	onCreated []func(*models.Field)
}

// NewCapture creates an empty capture flow for userID.
func NewCapture(scope *task.Scope, repo storage.FieldRepository, userID string) *Capture {
	return &Capture{scope: scope, repo: repo, userID: userID}
}

// OnCreated registers fn to run after a field is stored.
func (c *Capture) OnCreated(fn func(*models.Field)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCreated = append(c.onCreated, fn)
}

// Tap appends a boundary point.
func (c *Capture) Tap(pos models.Coordinate) (Marker, error) {
	if err := models.ValidateCoordinates(pos.Latitude, pos.Longitude); err != nil {
		return Marker{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return Marker{}, ErrBusy
	}

	m := Marker{ID: uuid.NewString(), Position: pos}
	c.markers = append(c.markers, m)
	c.state = Collecting
	c.err = nil
	return m, nil
}

// Select marks one marker for removal.
func (c *Capture) Select(markerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(markerID) < 0 {
		return ErrUnknownMarker
	}
	c.selected = markerID
	return nil
}

// ClearSelection forgets the selected marker.
func (c *Capture) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

// DeleteSelected removes the selected marker and reports whether one was removed.
func (c *Capture) DeleteSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return false
	}
	i := c.indexOf(c.selected)
	c.selected = ""
	if i < 0 {
		return false
	}

	c.markers = append(c.markers[:i:i], c.markers[i+1:]...)
	return true
}

func (c *Capture) indexOf(markerID string) int {
	if markerID == "" {
		return -1
	}
	for i, m := range c.markers {
		if m.ID == markerID {
			return i
		}
	}
	return -1
}

// SetName updates the field name and clears the name validation flag.
func (c *Capture) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.nameError = false
}

// Submit validates the name, then the point count, and starts CreateField.
// The outcome arrives later through the scope's dispatcher.
func (c *Capture) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrBusy
	}
	if strings.TrimSpace(c.name) == "" {
		c.nameError = true
		return ErrBlankName
	}
	if err := models.ValidateName(c.name); err != nil {
		c.nameError = true
		return err
	}
	if len(c.markers) < models.MinBoundaryPoints {
		return ErrTooFewPoints
	}

	boundary := make([]models.Coordinate, len(c.markers))
	for i, m := range c.markers {
		boundary[i] = m.Position
	}
	center, err := models.Centroid(boundary)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.name)
	userID := c.userID
	c.gen++
	gen := c.gen

	started := task.Run(c.scope, func(ctx context.Context) (*models.Field, error) {
		return c.repo.CreateField(ctx, userID, name, center, boundary)
	}, func(field *models.Field, err error) {
		c.finish(gen, field, err)
	})
	if !started {
		return ErrClosed
	}

	c.state = Submitting
	c.selected = ""
	c.err = nil
	return nil
}

func (c *Capture) finish(gen int, field *models.Field, err error) {
	c.mu.Lock()
	current := gen == c.gen && c.state == Submitting
	if err != nil {
		if current {
			c.state = Failed
			c.err = err
		}
		c.mu.Unlock()
		log.Warn("create field failed", "err", err)
		return
	}

	if current {
		c.state = Succeeded
		c.markers = nil
		c.name = ""
		c.added = true
	}
	hooks := append([]func(*models.Field){}, c.onCreated...)
	c.mu.Unlock()

	log.Debug("field created", "id", field.ID, "points", len(field.Boundary))
	for _, fn := range hooks {
		fn(field)
	}
}

// Dismiss acknowledges a Succeeded or Failed outcome and goes back to
// Collecting, with no points after a success. Only Reset returns to Empty.
func (c *Capture) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Succeeded && c.state != Failed {
		return
	}
	c.err = nil
	c.state = Collecting
}

// Reset discards everything. A submit still in flight no longer changes
// the state when it completes.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Empty
	c.markers = nil
	c.selected = ""
	c.name = ""
	c.nameError = false
	c.err = nil
	c.added = false
}

// State returns the current state.
func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FieldAdded reports whether a field was stored since the last Reset.
func (c *Capture) FieldAdded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.added
}

// NameError reports whether the last submit was rejected for its name.
func (c *Capture) NameError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nameError
}

// Err returns the error of a failed submit.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Points returns the captured boundary in tap order.
func (c *Capture) Points() []models.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Coordinate, len(c.markers))
	for i, m := range c.markers {
		out[i] = m.Position
	}
	return out
}

// View returns a snapshot of the flow.
func (c *Capture) View() CaptureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := CaptureView{
		State:      c.state,
		Markers:    append([]Marker(nil), c.markers...),
		Selected:   c.selected,
		Name:       c.name,
		NameError:  c.nameError,
		FieldAdded: c.added,
	}
	if c.err != nil {
		v.Err = c.err.Error()
	}
	return v
}
