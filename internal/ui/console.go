// Package ui renders a running kernel in the terminal and forwards typed
// keys to its keyboard device.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ember/internal/input"
	"ember/internal/kernel"
	"ember/internal/keyboard"
)

const refreshInterval = 50 * time.Millisecond

// Source supplies kernel state to draw.
type Source interface {
	Snapshot() (kernel.Snapshot, error)
}

type consoleModel struct {
	title   string
	src     Source
	inject  input.InjectFunc
	spinner spinner.Model
	queue   progress.Model
	snap    kernel.Snapshot
	err     error
	width   int
	done    bool
}

type refreshMsg struct{}

// NewConsoleModel returns a Bubble Tea model showing the kernel's screen
// and counters. Keys typed into it are injected as scancodes.
func NewConsoleModel(title string, src Source, inject input.InjectFunc) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return &consoleModel{
		title:   title,
		src:     src,
		inject:  inject,
		spinner: sp,
		queue:   bar,
		width:   80,
	}
}

// Run shows the console until the user quits or ctx is done.
func Run(ctx context.Context, title string, src Source, inject input.InjectFunc) error {
	p := tea.NewProgram(NewConsoleModel(title, src, inject), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll(), refresh())
}

func (m *consoleModel) poll() tea.Cmd {
	m.snap, m.err = m.src.Snapshot()
	if m.err != nil || m.snap.Keyboard.Capacity == 0 {
		return nil
	}
	return m.queue.SetPercent(float64(m.snap.Keyboard.Buffered) / float64(m.snap.Keyboard.Capacity))
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		}
		if codes := KeyScancodes(msg); len(codes) > 0 {
			m.inject(codes...)
		}
		return m, nil
	case refreshMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(m.poll(), refresh())
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.queue.Width = min(msg.Width-24, 60)
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.queue.Update(msg)
		m.queue = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	screenStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	haltStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (m *consoleModel) View() string {
	var b strings.Builder

	state := m.spinner.View() + " running"
	if m.snap.Halted {
		state = haltStyle.Render("■ halted")
	}
	b.WriteString(titleStyle.Render(m.title) + "  " + state)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(warnStyle.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	inner := m.width - 4
	lines := make([]string, len(m.snap.Screen))
	for i, l := range m.snap.Screen {
		lines[i] = truncate(l, inner)
	}
	b.WriteString(screenStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	ex, kb := m.snap.Executor, m.snap.Keyboard
	fmt.Fprintf(&b, "%s tasks %d  polls %d  halts %d  stale %d\n",
		labelStyle.Render("executor"), ex.Tasks, ex.Polls, ex.Halts, ex.StaleWakes)
	dropped := fmt.Sprintf("dropped %d", kb.Dropped)
	if kb.Dropped > 0 {
		dropped = warnStyle.Render(dropped)
	}
	fmt.Fprintf(&b, "%s keys %d  fast %d  recheck %d  parked %d  %s\n",
		labelStyle.Render("keyboard"), kb.Keys, kb.Stream.FastPath, kb.Stream.Recheck, kb.Stream.Pending, dropped)
	fmt.Fprintf(&b, "%s %s %d/%d\n", labelStyle.Render("scancodes"), m.queue.View(), kb.Buffered, kb.Capacity)
	b.WriteString(labelStyle.Render("esc to quit"))
	b.WriteString("\n")
	return b.String()
}

// KeyScancodes translates a terminal key press into set 1 scancodes.
func KeyScancodes(msg tea.KeyMsg) []byte {
	if msg.Type == tea.KeyRunes {
		b, err := input.TypeText(string(msg.Runes))
		if err != nil {
			return nil
		}
		return b
	}
	code, ok := namedKeys[msg.Type]
	if !ok {
		return nil
	}
	return append(keyboard.MakeCode(code), keyboard.BreakCode(code)...)
}

var namedKeys = map[tea.KeyType]keyboard.KeyCode{
	tea.KeyEnter:     keyboard.KeyEnter,
	tea.KeyBackspace: keyboard.KeyBackspace,
	tea.KeyTab:       keyboard.KeyTab,
	tea.KeySpace:     keyboard.KeySpace,
	tea.KeyDelete:    keyboard.KeyDelete,
	tea.KeyUp:        keyboard.KeyArrowUp,
	tea.KeyDown:      keyboard.KeyArrowDown,
	tea.KeyLeft:      keyboard.KeyArrowLeft,
	tea.KeyRight:     keyboard.KeyArrowRight,
	tea.KeyHome:      keyboard.KeyHome,
	tea.KeyEnd:       keyboard.KeyEnd,
	tea.KeyPgUp:      keyboard.KeyPageUp,
	tea.KeyPgDown:    keyboard.KeyPageDown,
	tea.KeyInsert:    keyboard.KeyInsert,
	tea.KeyF1:        keyboard.KeyF1,
	tea.KeyF2:        keyboard.KeyF2,
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
