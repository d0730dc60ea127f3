// ABOUTME: Capture pane of the field browser
// ABOUTME: Points are typed as lat,lng; the capture flow validates and saves them

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/ui"
)

func (m Model) updateCapture(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ckeys.ForceOut):
		return m, tea.Quit
	case key.Matches(msg, m.ckeys.Cancel):
		m.capture.Reset()
		return m.leaveCapture(), nil
	case key.Matches(msg, m.ckeys.Switch):
		if m.pointInput.Focused() {
			m.pointInput.Blur()
			return m, m.nameInput.Focus()
		}
		m.nameInput.Blur()
		return m, m.pointInput.Focus()
	case key.Matches(msg, m.ckeys.Undo):
		m.removeLastPoint()
		return m, nil
	case key.Matches(msg, m.ckeys.Submit):
		return m.submit(), nil
	case key.Matches(msg, m.ckeys.Enter):
		if m.nameInput.Focused() {
			return m.submit(), nil
		}
		return m.addPoint(), nil
	}

	var cmd tea.Cmd
	if m.nameInput.Focused() {
		m.nameInput, cmd = m.nameInput.Update(msg)
		m.capture.SetName(m.nameInput.Value())
	} else {
		m.pointInput, cmd = m.pointInput.Update(msg)
	}
	return m, cmd
}

func (m Model) addPoint() Model {
	pos, err := ui.ParseCoordinate(m.pointInput.Value())
	if err != nil {
		m.inputErr = err.Error()
		return m
	}
	if _, err := m.capture.Tap(pos); err != nil {
		m.inputErr = describe(err)
		return m
	}
	m.inputErr = ""
	m.pointInput.Reset()
	return m
}

func (m Model) removeLastPoint() {
	markers := m.capture.View().Markers
	if len(markers) == 0 {
		return
	}
	if err := m.capture.Select(markers[len(markers)-1].ID); err == nil {
		m.capture.DeleteSelected()
	}
}

func (m Model) submit() Model {
	m.capture.SetName(m.nameInput.Value())
	if err := m.capture.Submit(); err != nil {
		m.inputErr = describe(err)
		return m
	}
	m.inputErr = ""
	return m
}

func (m Model) leaveCapture() Model {
	m.mode = browsing
	m.inputErr = ""
	m.pointInput.Reset()
	m.pointInput.Blur()
	m.nameInput.Reset()
	m.nameInput.Blur()
	return m
}

func (m Model) captureView() string {
	v := m.capture.View()

	var sb strings.Builder
	sb.WriteString("New field\n\n")
	for i, mk := range v.Markers {
		sb.WriteString(markerStyle.Render(fmt.Sprintf("  %d. %s", i+1, ui.FormatCoordinate(mk.Position))))
		sb.WriteString("\n")
	}
	if len(v.Markers) == 0 {
		sb.WriteString(faintStyle.Render("  no points yet") + "\n")
	}
	sb.WriteString("\nPoint: " + m.pointInput.View() + "\n")
	sb.WriteString("Name:  " + m.nameInput.View() + "\n")

	switch {
	case v.State == flow.Submitting:
		sb.WriteString("\n" + m.spinner.View() + " Saving...")
	case m.inputErr != "":
		sb.WriteString("\n" + errorStyle.Render(m.inputErr))
	case v.NameError:
		sb.WriteString("\n" + errorStyle.Render("Name is required"))
	}
	return paneStyle.Render(sb.String())
}
