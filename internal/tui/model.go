// Package tui renders a browse session in the terminal with bubbletea and
// forwards key presses to the session controller.
package tui

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/glorpus-work/modpick/pkg/session"
)

// ChangedMsg tells the model to re-read the controller snapshot.
type ChangedMsg struct{}

// handledMsg is returned by a finished controller call.
type handledMsg struct {
	key      session.Key
	accepted bool
}

// Menu receives control when the session is left. Leaving the browser ends
// the program, so it only records that it was asked to.
type Menu struct {
	returned atomic.Bool
}

// NewMenu creates a Menu.
func NewMenu() *Menu {
	return &Menu{}
}

// ReturnToMenu implements session.Menu.
func (m *Menu) ReturnToMenu() {
	m.returned.Store(true)
}

// Returned reports whether the session handed control back.
func (m *Menu) Returned() bool {
	return m.returned.Load()
}

// Controller is the part of session.Controller the view drives.
type Controller interface {
	Show(ctx context.Context) bool
	HandleKey(ctx context.Context, key session.Key) bool
	Snapshot() session.Snapshot
}

// Model is the bubbletea model of the browse view.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	menu    *Menu
	keys    KeyMap
	styles  *Styles
	help    help.Model
	spinner spinner.Model
	snap    session.Snapshot
	width   int
	done    bool
}

// New creates the browse view for ctrl. ctx bounds every controller call.
func New(ctx context.Context, ctrl Controller, menu *Menu) *Model {
	styles := DefaultStyles()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Status

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		menu:    menu,
		keys:    DefaultKeyMap(),
		styles:  styles,
		help:    help.New(),
		spinner: s,
	}
}

// Init shows the session, which loads the catalog on first display.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.show())
}

func (m *Model) show() tea.Cmd {
	return func() tea.Msg {
		return handledMsg{accepted: m.ctrl.Show(m.ctx)}
	}
}

func (m *Model) handle(k session.Key) tea.Cmd {
	return func() tea.Msg {
		return handledMsg{key: k, accepted: m.ctrl.HandleKey(m.ctx, k)}
	}
}

// Update handles messages and returns updated model and commands.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.done = true
			return m, tea.Quit
		}
		// Controller calls may block on the network, so they never run inside Update.
		return m, m.handle(m.keys.sessionKey(msg))
	case ChangedMsg, handledMsg:
		return m.refresh()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) refresh() (tea.Model, tea.Cmd) {
	m.snap = m.ctrl.Snapshot()
	if m.menu != nil && m.menu.Returned() {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// Done reports whether the view has finished.
func (m *Model) Done() bool {
	return m.done
}

// View renders the current snapshot.
func (m *Model) View() string {
	if m.done {
		return ""
	}

	var body strings.Builder
	for i, line := range m.snap.Lines {
		if i > 0 {
			body.WriteByte('\n')
		}
		body.WriteString(m.lineStyle(line.Kind).Render(line.Text))
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("modpick"))
	b.WriteByte('\n')
	b.WriteString(m.styles.Card.Render(body.String()))
	b.WriteByte('\n')
	if m.snap.Busy {
		b.WriteString(m.styles.Status.Render(m.spinner.View() + " " + m.snap.State.String() + "..."))
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteByte('\n')
	return b.String()
}

func (m *Model) lineStyle(kind session.LineKind) lipgloss.Style {
	switch kind {
	case session.LineSuccess:
		return m.styles.SuccessText
	case session.LineError:
		return m.styles.ErrorText
	case session.LineMuted:
		return m.styles.MutedText
	default:
		return m.styles.InfoText
	}
}
