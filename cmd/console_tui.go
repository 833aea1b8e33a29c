// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
	"github.com/gina-propulsion/standlink/pkg/stand"
)

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	tuiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	tuiStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	tuiPendingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	tuiIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	tuiStaleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	tuiLogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

const tuiMaxLogLines = 200

// eventBuffer collects console events emitted during a poll so the Update
// loop can fold them into the model afterwards. Single-goroutine access:
// poll runs inside Update.
type eventBuffer struct {
	events []interface{}
}

func (b *eventBuffer) add(ev interface{}) {
	b.events = append(b.events, ev)
}

func (b *eventBuffer) drain() []interface{} {
	evs := b.events
	b.events = nil
	return evs
}

type consoleTickMsg time.Time

// consoleModel is the Bubble Tea model for the operator console.
type consoleModel struct {
	c        *console
	buf      *eventBuffer
	connInfo string

	input    textinput.Model
	viewport viewport.Model
	logLines []string

	lastTelemetry *stand.Sample
	lastHeard     time.Time

	width    int
	height   int
	ready    bool
	quitting bool
}

func initialConsoleModel(c *console, buf *eventBuffer, connInfo string) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "V1:OPEN, OPEN_ALL, IGN, ..."
	ti.CharLimit = ginalink.MaxFrameSize
	ti.Focus()

	return consoleModel{
		c:         c,
		buf:       buf,
		connInfo:  connInfo,
		input:     ti,
		lastHeard: time.Now(),
		width:     80,
		height:    24,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, consoleTickCmd())
}

func consoleTickCmd() tea.Cmd {
	return tea.Tick(consoleTickInterval, func(t time.Time) tea.Msg {
		return consoleTickMsg(t)
	})
}

//////////////////////////////////////////////////////////////
// Update
//////////////////////////////////////////////////////////////

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.c.submit(m.input.Value())
			m.input.Reset()
			return m.consumeEvents(), nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 7
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(m.width-4, logHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width - 4
			m.viewport.Height = logHeight
		}
		m.refreshViewport()

	case consoleTickMsg:
		m.c.poll(time.Time(msg))
		return m.consumeEvents(), consoleTickCmd()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// consumeEvents folds buffered console events into the display state.
func (m consoleModel) consumeEvents() consoleModel {
	for _, ev := range m.buf.drain() {
		switch ev := ev.(type) {
		case logEvent:
			m.appendLog(ev.line)
		case ackEvent:
			m.appendLog(fmt.Sprintf("acknowledged %q #%d", ev.done.Text, ev.done.Seq))
		case telemetryEvent:
			sample := ev.sample
			m.lastTelemetry = &sample
			m.lastHeard = time.Now()
		case heartbeatEvent:
			// Status bar shows this live; no log line needed.
		}
	}
	m.refreshViewport()
	return m
}

func (m *consoleModel) appendLog(line string) {
	stamp := time.Now().Format("15:04:05.000")
	m.logLines = append(m.logLines, fmt.Sprintf("[%s] %s", stamp, line))
	if len(m.logLines) > tuiMaxLogLines {
		m.logLines = m.logLines[len(m.logLines)-tuiMaxLogLines:]
	}
}

func (m *consoleModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.logLines, "\n"))
	m.viewport.GotoBottom()
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m consoleModel) View() string {
	if m.quitting {
		return ""
	}

	title := tuiTitleStyle.Render("Standlink Console") + " " + m.connInfo

	var sendState string
	if pending, ok := m.c.sender.PendingCommand(); ok {
		sendState = tuiPendingStyle.Render(
			fmt.Sprintf("AWAITING-ACK #%d %q", pending.Seq, pending.Text))
	} else {
		sendState = tuiIdleStyle.Render(fmt.Sprintf("IDLE seq=%d", m.c.sender.Sequence()))
	}

	sinceLast := time.Since(m.c.lastHeard)
	heard := fmt.Sprintf("last heard %.1fs ago", sinceLast.Seconds())
	if sinceLast >= ginalink.DefaultWatchdogTimeout {
		heard = tuiStaleStyle.Render(heard + " - LINK SILENT")
	}

	telemetry := "telemetry: -"
	if m.lastTelemetry != nil {
		telemetry = fmt.Sprintf("fuel %.1f psi  ox %.1f psi", m.lastTelemetry.PsiFuel, m.lastTelemetry.PsiOx)
		if m.lastTelemetry.Load != nil {
			telemetry += fmt.Sprintf("  load %d g", *m.lastTelemetry.Load)
		}
	}

	status := tuiStatusStyle.Width(m.width).Render(
		sendState + "  |  " + heard + "  |  " + telemetry)

	logView := ""
	if m.ready {
		logView = tuiLogStyle.Render(m.viewport.View())
	}

	return strings.Join([]string{
		title,
		status,
		logView,
		m.input.View(),
		"enter: send   esc: quit",
	}, "\n")
}

//////////////////////////////////////////////////////////////
// Entry
//////////////////////////////////////////////////////////////

// runConsoleTUI runs the operator console as a full-screen TUI. The
// console loop is driven by tick messages, so all link state stays on the
// Bubble Tea goroutine.
func runConsoleTUI(ch ginalink.Channel, cfg stand.Config, connInfo string) error {
	buf := &eventBuffer{}
	c := newConsole(ch, cfg, buf.add)

	m := initialConsoleModel(c, buf, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	fmt.Println(c.stats.Summary())
	return nil
}
