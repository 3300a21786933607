package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/metarenamer/internal/config"
	"github.com/handiism/metarenamer/internal/rename"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_Options(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Mode = config.ModeMove
	m := NewModel(settings)

	if got := m.Mode(); got != config.ModeMove {
		t.Errorf("Mode() = %q, want %q", got, config.ModeMove)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Mode(); got != config.ModeCopy {
		t.Errorf("after tab Mode() = %q, want %q", got, config.ModeCopy)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Mode(); got != config.ModeDryRun {
		t.Errorf("after second tab Mode() = %q, want %q", got, config.ModeDryRun)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	rs := m.runSettings()
	if !rs.CreatePlaylist || rs.Mode != config.ModeDryRun {
		t.Errorf("runSettings() = %+v", rs)
	}
	if settings.Mode != config.ModeMove {
		t.Error("runSettings must not modify the loaded settings")
	}
}

func TestModel_ProgressFiltersVerbose(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, ProgressMsg{Event: rename.ProgressEvent{Message: "hidden", Level: rename.LevelVerbose}})
	if len(m.logs) != 0 {
		t.Errorf("verbose event logged without verbose mode: %v", m.logs)
	}

	for i := 0; i < 12; i++ {
		m = update(t, m, ProgressMsg{Event: rename.ProgressEvent{Message: "info", Level: rename.LevelInfo}})
	}
	if len(m.logs) != 10 {
		t.Errorf("len(logs) = %d, want 10", len(m.logs))
	}
}

func TestModel_RenameDone(t *testing.T) {
	m := NewModel(nil)
	m.state = StateRenaming

	m = update(t, m, RenameDoneMsg{Summary: rename.Summary{Done: 3, RunID: "abc"}, Files: 3, TotalF: 3})
	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	if view := m.View(); !strings.Contains(view, "abc") {
		t.Errorf("View() does not show the run id:\n%s", view)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput {
		t.Errorf("state after r = %v, want StateInput", m.state)
	}

	m.state = StateRenaming
	m = update(t, m, RenameDoneMsg{Err: errors.New("boom")})
	if m.state != StateError || m.err == nil {
		t.Errorf("state = %v, err = %v, want StateError", m.state, m.err)
	}
}
