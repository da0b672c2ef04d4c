package station

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/telemetry"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

type frameMsg struct{ FrameEvent }

type alertsMsg struct{ safety.Report }

type linkMsg struct{ LinkEvent }

// consoleMsg carries console output, including late assistant answers.
type consoleMsg struct{ text string }

type setConsoleMsg struct{ fn func(string) string }

const (
	maxLogLines     = 1000
	maxConsoleLines = 50
	consoleRows     = 4
)

// TUIWriter renders the flight dashboard using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. When the
// operator quits the UI the process receives an interrupt.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteFrame implements FrameWriter.
func (w *TUIWriter) WriteFrame(e FrameEvent) error {
	w.program.Send(frameMsg{e})
	w.program.Send(logMsg{line: frameLine(e)})
	return nil
}

// WriteAlerts implements AlertWriter.
func (w *TUIWriter) WriteAlerts(e AlertEvent) error {
	w.program.Send(alertsMsg{e.Report})
	return nil
}

// WriteLink implements LinkWriter.
func (w *TUIWriter) WriteLink(e LinkEvent) error {
	w.program.Send(linkMsg{e})
	w.program.Send(logMsg{line: linkLine(e)})
	return nil
}

// SetConsole registers the handler for console input. fn runs off the UI
// goroutine; its result is shown in the console pane.
func (w *TUIWriter) SetConsole(fn func(string) string) {
	w.program.Send(setConsoleMsg{fn: fn})
}

// Notify shows text in the console pane.
func (w *TUIWriter) Notify(text string) {
	w.program.Send(consoleMsg{text: text})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	table      table.Model
	vp         viewport.Model
	input      textinput.Model
	logs       []string
	console    []string
	state      telemetry.FlightState
	report     safety.Report
	link       LinkEvent
	submit     func(string) string
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Flight", Width: 14},
		{Title: "Value", Width: 16},
		{Title: "Status", Width: 14},
		{Title: "Value", Width: 16},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(9))
	in := textinput.New()
	in.Placeholder = "connect, motor_on, status, help or a question"
	in.Prompt = "> "
	m := tuiModel{
		table:      t,
		vp:         viewport.New(0, 0),
		input:      in,
		state:      *telemetry.NewFlightState(telemetry.DefaultEnvironment()),
		link:       LinkEvent{Status: link.StatusDisconnected, Message: "No Connection"},
		autoscroll: true,
	}
	m.table.SetRows(flightRows(m.state))
	return m
}

func flightRows(s telemetry.FlightState) []table.Row {
	gps := "--"
	if s.Satellites != nil {
		gps = fmt.Sprintf("%d sats", *s.Satellites)
		if s.HDOP != nil {
			gps += fmt.Sprintf(" %.1f", *s.HDOP)
		}
	}
	armed := "no"
	if s.Armed {
		armed = "yes"
	}
	return []table.Row{
		{"Mode", s.Mode, "Battery", batteryText(s.Battery)},
		{"Airspeed", fmt.Sprintf("%.1f km/h", s.Airspeed), "GPS", gps},
		{"Altitude", fmt.Sprintf("%.1f m", s.Altitude), "Safety", s.SafetyState},
		{"Heading", fmt.Sprintf("%.0f deg", s.Heading), "Armed", armed},
		{"Attitude", fmt.Sprintf("R%.1f P%.1f", s.Roll, s.Pitch), "Throttle", fmt.Sprintf("%d", s.Throttle)},
		{"Waypoint", fmt.Sprintf("%d", s.Waypoint), "Ground spd", fmt.Sprintf("%.1f km/h", s.GroundSpeed)},
		{"Flight time", s.FlightTime.Truncate(time.Second).String(), "Distance", fmt.Sprintf("%.2f km", s.DistanceTraveled)},
		{"Max speed", fmt.Sprintf("%.1f km/h", s.MaxSpeed), "Energy", humanize.SIWithDigits(s.Energy, 1, "J")},
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width / 2)
		m.vp.Width = msg.Width
		m.input.Width = msg.Width - 4
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case ":", "tab", "i":
			m.input.Focus()
			return m, textinput.Blink
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = !m.help
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case frameMsg:
		m.state = msg.State
		m.table.SetRows(flightRows(m.state))
	case alertsMsg:
		m.report = msg.Report
		m.updateViewportHeight()
	case linkMsg:
		m.link = msg.LinkEvent
	case consoleMsg:
		m.addConsole(msg.text)
	case setConsoleMsg:
		m.submit = msg.fn
	}
	return m, nil
}

func (m tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		m.addConsole("> " + text)
		if m.submit == nil {
			return m, nil
		}
		submit := m.submit
		return m, func() tea.Msg { return consoleMsg{text: submit(text)} }
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) addConsole(text string) {
	if text == "" {
		return
	}
	m.console = append(m.console, strings.Split(text, "\n")...)
	if len(m.console) > maxConsoleLines {
		m.console = m.console[len(m.console)-maxConsoleLines:]
	}
}

func (m *tuiModel) updateViewportHeight() {
	header := lipgloss.Height(m.renderHeader())
	bottom := lipgloss.Height(m.renderBottom())
	h := m.height - header - bottom - consoleRows - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) logContent() string {
	if !m.wrap || m.vp.Width <= 0 {
		return strings.Join(m.logs, "\n")
	}
	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		lines = append(lines, wordwrap.String(l, m.vp.Width))
	}
	return strings.Join(lines, "\n")
}

func (m *tuiModel) refreshViewport() {
	m.vp.SetContent(m.logContent())
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	adviceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m tuiModel) renderAlerts() string {
	var b strings.Builder
	b.WriteString("Safety\n")
	r := m.report
	if r.Len() == 0 {
		b.WriteString(infoStyle.Render("no alerts"))
		return b.String()
	}
	tiers := []struct {
		lines []string
		style lipgloss.Style
	}{
		{r.Critical, criticalStyle},
		{r.Warning, warningStyle},
		{r.Recommendation, adviceStyle},
		{r.Info, infoStyle},
	}
	var lines []string
	for _, t := range tiers {
		for _, l := range t.lines {
			if m.width > 0 {
				l = wordwrap.String(l, m.width/2-2)
			}
			lines = append(lines, t.style.Render(l))
		}
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (m tuiModel) renderHeader() string {
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), sep, m.renderAlerts())
}

func (m tuiModel) renderConsole() string {
	lines := m.console
	if len(lines) > consoleRows {
		lines = lines[len(lines)-consoleRows:]
	}
	out := make([]string, consoleRows)
	copy(out[consoleRows-len(lines):], lines)
	return strings.Join(out, "\n") + "\n" + m.input.View()
}

func (m tuiModel) renderBottom() string {
	linkColor := lipgloss.Color("9")
	switch m.link.Status {
	case link.StatusReceiving:
		linkColor = lipgloss.Color("10")
	case link.StatusConnected, link.StatusNoData:
		linkColor = lipgloss.Color("11")
	}
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	linkIndicator := lipgloss.NewStyle().Foreground(linkColor).Render("●")
	return fmt.Sprintf("Link %s %s %s | Frames %d | Wrap %s | Scroll %s | Help %s",
		linkIndicator, m.link.Status, m.link.Message, m.state.Frames,
		indicator(m.wrap), indicator(m.autoscroll), indicator(m.help))
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.renderHeader(),
		divider,
		m.vp.View(),
		divider,
		m.renderConsole(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q        quit",
		" : or tab focus the console (esc to leave)",
		" w        toggle wrap for the log",
		" s        toggle auto-scroll",
		" h/?      toggle this help view",
		"",
		"Console:",
		" connect [device]  open the serial link",
		" disconnect        close the link",
		" status            show link and flight status",
		" motor_on, motor_off, takeoff_start, landing_start, go_around, reset",
		" anything ending in ? is sent to the flight assistant",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
