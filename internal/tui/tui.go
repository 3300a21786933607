// Package tui provides a Bubble Tea terminal user interface for metarenamer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/handiism/metarenamer/internal/config"
	"github.com/handiism/metarenamer/internal/rename"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateRenaming
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   rename.ProgressLevel
}


// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	albums    []string
	summary   rename.Summary
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Rename manager reference
	manager *rename.Manager

	// Progress events from the manager
	events chan rename.ProgressEvent

	// Rename progress
	totalFiles     int32
	processedFiles int32
	totalBytes     int64
	processedBytes int64

	// Options
	modeIndex int
	playlist  bool
	verbose   bool

	width  int
	height int
}

var modes = []string{config.ModeDryRun, config.ModeMove, config.ModeCopy}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/unsorted/music"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	modeIndex := 0
	for i, mode := range modes {
		if mode == settings.Mode {
			modeIndex = i
		}
	}

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		events:    make(chan rename.ProgressEvent, 64),
		ctx:       ctx,
		cancel:    cancel,
		modeIndex: modeIndex,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg is sent when the manager reports progress.
	ProgressMsg struct {
		Event rename.ProgressEvent
	}

	// InitDoneMsg is sent when planning completes.
	InitDoneMsg struct {
		Albums  []string
		Manager *rename.Manager
		Err     error
	}

	// RenameDoneMsg is sent when all items are relocated.
	RenameDoneMsg struct {
		Summary   rename.Summary
		Processed int64
		Total     int64
		Files     int32
		TotalF    int32
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Mode returns the selected relocation mode.
func (m Model) Mode() string {
	return modes[m.modeIndex]
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRenaming || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeRename(), m.spinner.Tick)
			}

		case "tab":
			if m.state == StateInput {
				m.modeIndex = (m.modeIndex + 1) % len(modes)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.albums = nil
				m.err = nil
				m.summary = rename.Summary{}
				m.processedFiles = 0
				m.totalFiles = 0
				m.processedBytes = 0
				m.totalBytes = 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == rename.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.albums = msg.Albums
			m.manager = msg.Manager
			m.state = StateRenaming
			// Start relocating and tick for progress updates
			cmds = append(cmds, m.startRename(), m.tickProgress())
		}

	case RenameDoneMsg:
		m.summary = msg.Summary
		m.processedBytes = msg.Processed
		m.totalBytes = msg.Total
		m.processedFiles = msg.Files
		m.totalFiles = msg.TotalF
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateRenaming {
			processed, total, files, totalFiles := m.manager.GetProgress()
			m.processedBytes = processed
			m.totalBytes = total
			m.processedFiles = files
			m.totalFiles = totalFiles

			var percent float64
			if totalFiles > 0 {
				percent = float64(files) / float64(totalFiles)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 metarenamer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("File music by its tags"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateRenaming:
		b.WriteString(m.viewRenaming())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter source folder:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Mode: %s (tab)\n", albumStyle.Render(m.Mode())))
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", check(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+v)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Library: %s", m.settings.LibraryPath)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Pattern: %s", m.settings.Pattern)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading tags..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRenaming() string {
	var b strings.Builder

	if len(m.albums) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d album(s):", len(m.albums))))
		b.WriteString("\n")
		for _, album := range m.albums {
			b.WriteString(albumStyle.Render(fmt.Sprintf("  ♪ %s", album)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.processedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Relocated: %s of %s",
		m.processedFiles,
		m.totalFiles,
		humanize.Bytes(uint64(m.processedBytes)),
		humanize.Bytes(uint64(m.totalBytes)),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "✨ Rename Complete!"
	if m.Mode() == config.ModeDryRun {
		title = "✨ Dry Run Complete!"
	}
	box := boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Albums: %d\n"+
			"Relocated: %d\n"+
			"Planned: %d\n"+
			"Unchanged: %d\n"+
			"Failed: %d\n"+
			"Size: %s\n"+
			"Run: %s",
		title,
		len(m.albums),
		m.summary.Done,
		m.summary.Pending,
		m.summary.Skipped,
		m.summary.Failed,
		humanize.Bytes(uint64(m.summary.Bytes)),
		m.summary.RunID,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case rename.LevelError:
			style = errorStyle
			prefix = "✗"
		case rename.LevelWarning:
			style = warningStyle
			prefix = "!"
		case rename.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case rename.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: mode • ctrl+p: playlist • ctrl+v: verbose • esc: quit"
	case StateInitializing, StateRenaming:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// runSettings copies the settings with the options chosen in the UI.
func (m Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.Mode = m.Mode()
	settings.CreatePlaylist = m.playlist
	return &settings
}

// initializeRename plans the run and creates the manager.
func (m *Model) initializeRename() tea.Cmd {
	source := strings.TrimSpace(m.textInput.Value())
	settings := m.runSettings()
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		manager := rename.NewManager(settings, func(event rename.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})

		if err := manager.Initialize(ctx, source); err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Albums:  manager.GetAlbumNames(),
			Manager: manager,
		}
	}
}

// startRename relocates the planned items in the background.
func (m *Model) startRename() tea.Cmd {
	manager := m.manager
	ctx := m.ctx

	return func() tea.Msg {
		if manager == nil {
			return RenameDoneMsg{Err: fmt.Errorf("no manager")}
		}

		summary, err := manager.Start(ctx)
		processed, total, files, totalFiles := manager.GetProgress()

		return RenameDoneMsg{
			Summary:   summary,
			Processed: processed,
			Total:     total,
			Files:     files,
			TotalF:    totalFiles,
			Err:       err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
