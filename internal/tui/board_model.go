package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"invigil/internal/cache"
	"invigil/internal/db"
	"invigil/internal/engine"
	"invigil/internal/models"
)

// processStart anchors the monotonic clock. time.Since reads the runtime's
// monotonic clock, so readings never run backward within a process.
var processStart = time.Now()

// MonotonicNowMs is the monotonic-clock reading handed to the engine on
// every call. Only deltas between readings from the same process mean
// anything.
func MonotonicNowMs() int64 {
	return time.Since(processStart).Milliseconds()
}

// boardTickMsg is sent every second to refresh the countdown display
type boardTickMsg struct{}

// BoardModel is the invigilation board: it owns the authoritative
// (Session, TimerState) pair, feeds current wall/monotonic time into the
// engine, and persists after every mutation.
type BoardModel struct {
	width  int
	height int

	session    *models.Session
	state      models.TimerState
	timerCache cache.TimerCache // nil when restart recovery is disabled

	// Selection is tracked by desk id so it survives re-sorting after a
	// D.P. grant
	selectedDeskID string

	// D.P. grant prompt state
	granting bool
	dpInput  textinput.Model

	statusMsg string
	err       error
}

// NewBoardModel creates the board for a loaded session
func NewBoardModel(session *models.Session, state models.TimerState, timerCache cache.TimerCache) BoardModel {
	dpInput := textinput.New()
	dpInput.Placeholder = "minutes"
	dpInput.CharLimit = 3
	dpInput.Width = 10
	dpInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	selected := ""
	if len(session.Desks) > 0 {
		selected = engine.SortDesks(session)[0].ID
	}

	return BoardModel{
		session:        session,
		state:          state,
		timerCache:     timerCache,
		selectedDeskID: selected,
		dpInput:        dpInput,
	}
}

// Init starts the once-per-second display tick
func (m BoardModel) Init() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return boardTickMsg{}
	})
}

// persist saves the session to the record store and caches the timer state
// for restart recovery. Cache failures are swallowed: recovery is
// best-effort.
func (m *BoardModel) persist() {
	if err := db.SaveSession(m.session); err != nil {
		m.err = err
		return
	}
	if m.timerCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.timerCache.Set(ctx, m.session.ID, cache.CachedTimerState{
			State:           m.state,
			WallClockSaveMs: time.Now().UnixMilli(),
			MonotonicSaveMs: MonotonicNowMs(),
		})
	}
}

// pollTransitions applies the driver-side automatic steps: the
// reading→active transition once reading time runs out, and the one-shot
// finish event for each desk that has reached zero.
func (m *BoardModel) pollTransitions(nowEpochMs, nowMonotonicMs int64) {
	dirty := false

	if m.state.Phase == models.PhaseReadingTime &&
		engine.ReadingRemainingMs(m.session, m.state, nowMonotonicMs) == 0 {
		m.state = engine.TransitionToExamActive(m.session, m.state, nowEpochMs, nowMonotonicMs)
		m.statusMsg = "Reading time over — exam started"
		dirty = true
	}

	if m.state.ExamActive() && !m.state.IsPaused {
		for i := range m.session.Desks {
			desk := &m.session.Desks[i]
			remaining := engine.DeskRemainingMs(m.session, desk, m.state, nowMonotonicMs)
			if engine.IsFinished(remaining) && engine.MarkDeskFinished(desk, nowEpochMs) {
				dirty = true
			}
		}
	}

	if dirty {
		m.persist()
	}
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardTickMsg:
		m.pollTransitions(time.Now().UnixMilli(), MonotonicNowMs())
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return boardTickMsg{}
		})

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.granting {
			return m.updateGrantPrompt(msg)
		}
		return m.updateBoardKeys(msg)
	}

	return m, nil
}

// updateBoardKeys handles keys in normal board mode
func (m BoardModel) updateBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nowEpoch := time.Now().UnixMilli()
	nowMono := MonotonicNowMs()

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		m.moveSelection(-1)
		return m, nil

	case "down", "j":
		m.moveSelection(1)
		return m, nil

	case "s", "S":
		if m.state.Phase != models.PhasePreExam {
			m.statusMsg = "Session already started"
			return m, nil
		}
		m.state = engine.ActivateExamStart(m.session, m.state, nowEpoch, nowMono)
		if m.state.Phase == models.PhaseReadingTime {
			m.statusMsg = "Reading time started"
		} else {
			m.statusMsg = "Exam started"
		}
		m.persist()
		return m, nil

	case "p", "P":
		if !m.state.Running() {
			m.statusMsg = "Nothing to pause yet"
			return m, nil
		}
		if m.state.IsPaused {
			m.statusMsg = "Already paused"
			return m, nil
		}
		m.state = engine.PauseTimers(m.session, m.state, nowEpoch, nowMono)
		m.statusMsg = "Paused"
		m.persist()
		return m, nil

	case "r", "R":
		if !m.state.IsPaused {
			m.statusMsg = "Not paused"
			return m, nil
		}
		m.state = engine.ResumeTimers(m.session, m.state, nowEpoch, nowMono)
		m.statusMsg = "Resumed"
		m.persist()
		return m, nil

	case "g", "G", "enter":
		if m.state.Phase == models.PhasePreExam {
			m.statusMsg = "Start the session before granting D.P. time"
			return m, nil
		}
		if m.selectedDeskID == "" {
			return m, nil
		}
		m.granting = true
		m.dpInput.SetValue("")
		m.dpInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// updateGrantPrompt handles keys while the D.P. minutes prompt is open.
// Input validation lives here, at the collection boundary: only a positive
// integer ever reaches the engine.
func (m BoardModel) updateGrantPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.granting = false
		m.dpInput.Blur()
		return m, nil

	case "enter":
		raw := strings.TrimSpace(m.dpInput.Value())
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			m.statusMsg = "D.P. minutes must be a positive whole number"
			return m, nil
		}

		desk := m.session.DeskByID(m.selectedDeskID)
		if desk == nil {
			m.granting = false
			m.dpInput.Blur()
			return m, nil
		}

		nowEpoch := time.Now().UnixMilli()
		if engine.ApplyDPTime(desk, minutes, nowEpoch) {
			// Grant and finish-time refresh are two explicit steps
			engine.RefreshAdjustedFinish(m.session, desk)
			m.statusMsg = fmt.Sprintf("Granted %d min D.P. to desk %d (total %d)",
				minutes, desk.DeskNumber, desk.DPTimeTakenMinutes)
			m.persist()
		}

		m.granting = false
		m.dpInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.dpInput, cmd = m.dpInput.Update(msg)
	return m, cmd
}

// moveSelection moves the cursor within the current sorted desk order
func (m *BoardModel) moveSelection(delta int) {
	sorted := engine.SortDesks(m.session)
	if len(sorted) == 0 {
		return
	}

	index := 0
	for i := range sorted {
		if sorted[i].ID == m.selectedDeskID {
			index = i
			break
		}
	}

	index += delta
	if index < 0 {
		index = 0
	}
	if index > len(sorted)-1 {
		index = len(sorted) - 1
	}
	m.selectedDeskID = sorted[index].ID
}

// View renders the invigilation board
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	nowMono := MonotonicNowMs()

	var b strings.Builder
	b.WriteString(m.renderHeader(nowMono))
	b.WriteString("\n\n")
	b.WriteString(m.renderDeskTable(nowMono))
	b.WriteString("\n")

	if m.granting {
		promptStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Padding(0, 1)
		desk := m.session.DeskByID(m.selectedDeskID)
		label := "D.P. minutes to grant"
		if desk != nil {
			label = fmt.Sprintf("D.P. minutes for desk %d", desk.DeskNumber)
		}
		b.WriteString(promptStyle.Render(label+": "+m.dpInput.View()) + "\n")
	}

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
		b.WriteString(errStyle.Render(fmt.Sprintf("Save failed: %v", m.err)) + "\n")
	} else if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString(m.renderHelpBar())
	return b.String()
}

// renderHeader shows the session-level clocks
func (m BoardModel) renderHeader(nowMono int64) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true)

	var parts []string
	parts = append(parts, titleStyle.Render(m.session.Name))

	phase := string(m.state.Phase)
	if m.state.IsPaused {
		phase += " (PAUSED)"
	}
	parts = append(parts, labelStyle.Render("Phase: ")+valueStyle.Render(phase))

	if m.state.Phase == models.PhaseReadingTime {
		reading := engine.ReadingRemainingMs(m.session, m.state, nowMono)
		parts = append(parts, labelStyle.Render("Reading: ")+valueStyle.Render(engine.FormatCountdown(reading)))
	}

	general := engine.GeneralRemainingMs(m.session, m.state, nowMono)
	parts = append(parts, labelStyle.Render("Exam: ")+valueStyle.Render(engine.FormatCountdown(general)))
	parts = append(parts, labelStyle.Render("Ends: ")+valueStyle.Render(engine.FormatClockTime(engine.GeneralFinishEpochMs(m.session))))

	return strings.Join(parts, "   ")
}

// renderDeskTable shows desks sorted by adjusted finish time
func (m BoardModel) renderDeskTable(nowMono int64) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDisabledText)).
		Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-6s %-20s %10s %10s %8s",
		"DESK", "STUDENT", "REMAINING", "FINISH", "D.P.")))
	b.WriteString("\n")

	for _, desk := range engine.SortDesks(m.session) {
		remaining := engine.DeskRemainingMs(m.session, &desk, m.state, nowMono)
		finish := engine.DeskAdjustedFinishEpochMs(m.session, &desk)

		rowColor := ColorSuccess
		switch engine.ClassifyUrgency(remaining) {
		case engine.UrgencyAmber:
			rowColor = ColorWarning
		case engine.UrgencyRed:
			rowColor = ColorError
		}

		remainingText := engine.FormatCountdown(remaining)
		if engine.IsFinished(remaining) && m.state.ExamActive() {
			remainingText = "DONE"
		}

		student := desk.StudentName
		if student == "" {
			student = "—"
		}
		if len(student) > 20 {
			student = student[:17] + "..."
		}

		cursor := "  "
		rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(rowColor))
		if desk.ID == m.selectedDeskID {
			cursor = "> "
			rowStyle = rowStyle.Bold(true).Background(lipgloss.Color(ColorCardBackground))
		}

		dp := ""
		if desk.DPTimeTakenMinutes > 0 {
			dp = fmt.Sprintf("+%dm", desk.DPTimeTakenMinutes)
		}

		row := fmt.Sprintf("%s%-6d %-20s %10s %10s %8s",
			cursor, desk.DeskNumber, student, remainingText,
			engine.FormatClockTime(finish), dp)
		b.WriteString(rowStyle.Render(row))
		b.WriteString("\n")
	}

	return b.String()
}

// renderHelpBar renders the help bar at the bottom
func (m BoardModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true)

	if m.granting {
		return helpStyle.Render("enter grant · esc cancel")
	}
	return helpStyle.Render("s start · p pause · r resume · g/enter grant D.P. · ↑/↓ select desk · q quit")
}
