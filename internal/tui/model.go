// ABOUTME: Bubbletea field browser driven by the list and capture flows
// ABOUTME: Task continuations queue on a task.Loop that Update drains

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/cropfit/internal/fetch"
	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/harper/cropfit/internal/task"
	"github.com/harper/cropfit/internal/ui"
)

type mode int

const (
	browsing mode = iota
	confirming
	capturing
)

// workMsg wakes Update to drain queued continuations.
type workMsg struct{}

func waitForWork(loop *task.Loop) tea.Cmd {
	return func() tea.Msg {
		<-loop.Ready()
		return workMsg{}
	}
}

// notice holds the last message from the flows.
type notice struct{ text string }

func (n *notice) Notify(msg string) { n.text = msg }

// Model is the browse screen.
type Model struct {
	scope   *task.Scope
	loop    *task.Loop
	list    *flow.List
	capture *flow.Capture
	notice  *notice

	table      table.Model
	spinner    spinner.Model
	help       help.Model
	keys       browseKeys
	ckeys      captureKeys
	pointInput textinput.Model
	nameInput  textinput.Model

	mode     mode
	inputErr string
	width    int
}

// New creates the browse screen for userID. Call Close when the program exits.
func New(ctx context.Context, repo storage.FieldRepository, userID string) Model {
	loop := task.NewLoop()
	scope := task.NewScope(ctx, loop)
	n := &notice{}

	list := flow.NewList(scope, repo, userID, n)
	capture := flow.NewCapture(scope, repo, userID)
	capture.OnCreated(list.NotifyCreated)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: ui.FavouriteMark, Width: 2},
			{Title: "Name", Width: 24},
			{Title: "Center", Width: 24},
			{Title: "Points", Width: 7},
			{Title: "Created", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#22c55e")).Bold(true)
	t.SetStyles(styles)

	pi := textinput.New()
	pi.Placeholder = "lat,lng"
	pi.CharLimit = 48
	pi.Width = 30

	ni := textinput.New()
	ni.Placeholder = "field name"
	ni.CharLimit = models.MaxNameLength
	ni.Width = 30

	return Model{
		scope:      scope,
		loop:       loop,
		list:       list,
		capture:    capture,
		notice:     n,
		table:      t,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:       help.New(),
		keys:       newBrowseKeys(),
		ckeys:      newCaptureKeys(),
		pointInput: pi,
		nameInput:  ni,
	}
}

// Close cancels outstanding work and waits for it to stop.
func (m Model) Close() {
	m.scope.Close()
	m.scope.Wait()
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	m.list.Load()
	return tea.Batch(m.spinner.Tick, waitForWork(m.loop))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case workMsg:
		m.loop.Drain()
		m = m.sync()
		return m, waitForWork(m.loop)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case confirming:
			return m.updateConfirm(msg)
		case capturing:
			return m.updateCapture(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		m.notice.text = ""
		m.list.Load()
		return m.sync(), nil
	case key.Matches(msg, m.keys.Favourite):
		if err := m.list.ToggleFavorite(m.table.Cursor()); err != nil {
			m.notice.text = describe(err)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if len(m.list.Fields()) > 0 {
			m.mode = confirming
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.mode = capturing
		m.inputErr = ""
		m.nameInput.Blur()
		return m, m.pointInput.Focus()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = browsing
	if msg.String() == "y" || msg.String() == "Y" {
		if err := m.list.Delete(m.table.Cursor()); err != nil {
			m.notice.text = describe(err)
		}
	}
	return m, nil
}

// sync copies flow state into the widgets.
func (m Model) sync() Model {
	fields := m.list.Fields()
	rows := make([]table.Row, len(fields))
	for i, f := range fields {
		mark := ""
		if f.IsFavorite {
			mark = ui.FavouriteMark
		}
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		rows[i] = table.Row{mark, name, ui.FormatCoordinate(f.Center), fmt.Sprint(len(f.Boundary)), ui.FormatCreated(f)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	if m.mode == capturing {
		switch m.capture.State() {
		case flow.Succeeded:
			m.capture.Dismiss()
			m.notice.text = "Field added"
			m = m.leaveCapture()
		case flow.Failed:
			m.inputErr = describe(m.capture.Err())
			m.capture.Dismiss()
		}
	}
	return m
}

func describe(err error) string {
	switch {
	case errors.Is(err, flow.ErrNoSuchEntry):
		return "No field selected"
	case errors.Is(err, flow.ErrTooFewPoints):
		return fmt.Sprintf("Add at least %d points", models.MinBoundaryPoints)
	case errors.Is(err, flow.ErrBlankName):
		return "Name is required"
	default:
		return err.Error()
	}
}

// View renders the screen.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("cropfit · fields"))
	sb.WriteString("\n")

	r := m.list.Result()
	switch r.State() {
	case fetch.Loading:
		sb.WriteString(m.spinner.View() + " Loading fields...\n")
	case fetch.Error:
		msg, _ := r.Message()
		sb.WriteString(errorStyle.Render(msg) + "\n")
		sb.WriteString(faintStyle.Render("press r to retry") + "\n")
	default:
		if len(m.list.Fields()) == 0 {
			sb.WriteString(faintStyle.Render("No fields yet. Press a to add one.") + "\n")
		} else {
			sb.WriteString(m.table.View() + "\n")
		}
	}

	if m.mode == capturing {
		sb.WriteString(m.captureView())
		sb.WriteString("\n")
	}
	if m.mode == confirming {
		if fields := m.list.Fields(); m.table.Cursor() < len(fields) {
			sb.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %q? (y/n)", fields[m.table.Cursor()].Name)) + "\n")
		}
	}
	if m.notice.text != "" {
		sb.WriteString(noticeStyle.Render(m.notice.text) + "\n")
	}

	if m.mode == capturing {
		sb.WriteString(m.help.View(m.ckeys))
	} else {
		sb.WriteString(m.help.View(m.keys))
	}
	return sb.String()
}
