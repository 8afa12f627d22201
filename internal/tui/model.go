// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tiertype/internal/achievement"
	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/progression"
	"github.com/verte-zerg/tiertype/internal/session"
	"github.com/verte-zerg/tiertype/internal/stats"
	"github.com/verte-zerg/tiertype/internal/store"
	"github.com/verte-zerg/tiertype/internal/texts"
)

// tickMsg is one second of session time. gen ties it to the session that
// scheduled it so ticks from a restarted session are dropped.
type tickMsg struct {
	gen int
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	store  *store.Store
	user   *model.User
	picker *texts.Picker
	bell   io.Writer

	width  int
	height int

	session *session.Session
	input   []rune
	tier    model.Difficulty
	gen     int
	ticking bool

	result     *model.SessionResult
	unlocked   []string
	promotion  model.Difficulty
	canPromote bool
	errMsg     string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	accentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a typing TUI model. user is nil for guests, whose
// results are not saved.
func NewModel(cfg model.Config, st *store.Store, user *model.User, picker *texts.Picker) *Model {
	m := &Model{
		config: cfg,
		store:  st,
		user:   user,
		picker: picker,
		tier:   cfg.Difficulty,
	}
	if cfg.Bell {
		m.bell = os.Stderr
	}
	if user != nil && st != nil && !cfg.DifficultySet {
		d, err := st.ProgressedDifficulty(context.Background(), user.ID)
		if err != nil {
			logErrf("failed to load progress: %v\n", err)
		} else {
			m.tier = d
		}
	}
	m.session = session.New("", m.tier)
	m.restart()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	view := m.session.View()
	var content string
	if view.Phase == session.Finished {
		content = m.renderResult()
	} else {
		styledRunes := buildStyledRunes(view.Chars, view.Caret)
		if m.width == 0 || m.height == 0 {
			return renderStyledRunes(styledRunes)
		}
		contentWidth := int(float64(m.width) * 0.70)
		if contentWidth < 1 {
			contentWidth = 1
		}
		wrapped := wrapStyledRunes(styledRunes, contentWidth)
		content = lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyCtrlR:
		m.restart()
		return m, nil
	}

	phase := m.session.Phase()
	if phase != session.Running {
		switch msg.Type {
		case tea.KeyLeft:
			m.selectTier(m.tier - 1)
			return m, nil
		case tea.KeyRight:
			m.selectTier(m.tier + 1)
			return m, nil
		}
	}
	if phase == session.Finished {
		return m, m.handleFinishedKey(msg)
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.input) == 0 {
			return m, nil
		}
		m.input = m.input[:len(m.input)-1]
		return m, m.submit()
	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, m.submit()
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return m, m.submit()
	default:
		return m, nil
	}
}

func (m *Model) handleFinishedKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		m.restart()
		return nil
	}
	if msg.Type != tea.KeyRunes {
		return nil
	}
	switch msg.String() {
	case "1":
		m.selectTier(model.Easy)
	case "2":
		m.selectTier(model.Medium)
	case "3":
		m.selectTier(model.Hard)
	case "n":
		if m.canPromote {
			m.selectTier(m.promotion)
		}
	case "q":
		return tea.Quit
	}
	return nil
}

// submit feeds the whole input buffer to the session and reacts to the
// phase it ends up in.
func (m *Model) submit() tea.Cmd {
	before := m.session.Mistakes()
	m.session.SubmitText(string(m.input))
	if n := m.session.Caret(); len(m.input) > n {
		m.input = m.input[:n]
	}

	var cmds []tea.Cmd
	if m.session.Mistakes() > before && m.bell != nil {
		cmds = append(cmds, ringBell(m.bell))
	}
	switch m.session.Phase() {
	case session.Running:
		if !m.ticking {
			m.ticking = true
			cmds = append(cmds, m.tick())
		}
	case session.Finished:
		m.finish()
	}
	return tea.Batch(cmds...)
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.gen || m.session.Phase() != session.Running {
		return nil
	}
	m.session.Tick()
	if m.session.Phase() == session.Finished {
		m.finish()
		return nil
	}
	return m.tick()
}

func (m *Model) selectTier(d model.Difficulty) {
	if !d.Valid() {
		return
	}
	m.tier = d
	m.restart()
}

func (m *Model) restart() {
	m.gen++
	m.ticking = false
	m.input = nil
	m.result = nil
	m.unlocked = nil
	m.canPromote = false
	m.errMsg = ""
	m.session.Start(m.picker.Pick(m.tier), m.tier)
}

func (m *Model) finish() {
	m.ticking = false
	res, err := m.session.Finalize()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.result = &res
	m.promotion, m.canPromote = progression.Next(res.Difficulty, res.Accuracy)
	if m.user == nil || m.store == nil {
		return
	}
	if err := m.save(res); err != nil {
		m.errMsg = fmt.Sprintf("failed to save result: %v", err)
		logErrf("failed to save result: %v\n", err)
	}
}

func (m *Model) save(res model.SessionResult) error {
	ctx := context.Background()
	if _, err := m.store.InsertResult(ctx, m.user.ID, res); err != nil {
		return err
	}
	history, _, err := m.store.ListResults(ctx, m.user.ID)
	if err != nil {
		return err
	}
	fresh, _, err := stats.SyncAchievements(ctx, m.store, m.user.ID, history)
	if err != nil {
		return err
	}
	m.unlocked = fresh
	if m.canPromote {
		if _, err := m.store.AdvanceDifficulty(ctx, m.user.ID, m.promotion); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return errorStyle.Render(m.errMsg)
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s finished: %d WPM · Accuracy %d%%", m.result.Difficulty.Title(), m.result.WPM, m.result.Accuracy)),
	}
	for _, id := range m.unlocked {
		if a, ok := achievement.Lookup(id); ok {
			lines = append(lines, accentStyle.Render(fmt.Sprintf("Achievement unlocked: %s %s", a.Icon, a.Name)))
		}
	}
	if m.canPromote {
		lines = append(lines, accentStyle.Render(fmt.Sprintf("%s unlocked! Press n to play it.", m.promotion.Title())))
	} else if m.result.Difficulty != model.Hard {
		lines = append(lines, footerStyle.Render(fmt.Sprintf("Reach %d%% accuracy to unlock the next tier.", progression.PromotionAccuracy)))
	}
	if m.user == nil {
		lines = append(lines, footerStyle.Render("Playing as guest: log in to save scores."))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render("enter: again  1/2/3: tier  tab: restart  esc: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	view := m.session.View()
	if len(view.Chars) == 0 {
		return ""
	}
	player := "guest"
	if m.user != nil {
		player = m.user.Username
	}
	segments := []string{
		m.tier.Title(),
		fmt.Sprintf("Time %ds", view.Remaining),
		fmt.Sprintf("WPM %d", view.WPM),
		fmt.Sprintf("Accuracy %d%%", view.Accuracy),
		fmt.Sprintf("Progress %d%%", view.Progress()),
		player,
	}
	if view.Phase == session.Idle {
		segments = append(segments, "←/→ tier")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		if _, err := io.WriteString(w, "\a"); err != nil {
			// Best-effort bell.
			_ = err
		}
		return nil
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
