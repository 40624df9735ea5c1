// Package tui implements the interactive journal browser.
package tui

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logshelf/logshelf/internal/buffers"
	"github.com/logshelf/logshelf/internal/journal"
)

type browseTickMsg time.Time

func browseTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return browseTickMsg(t)
	})
}

// Model is the bubbletea model for the journal browser. Entries come from a
// ring the command layer fills: once for a static browse, continuously from
// a tailer in follow mode. The model polls the ring's version on a tick and
// re-reads only when it changed.
type Model struct {
	ring *buffers.EntryRing
	path string

	// log display
	all         []journal.Entry
	lines       []journal.Entry
	scrollOff   int
	follow      bool
	ringVersion int

	// level cycling
	level  string   // active filter, "" shows all
	levels []string // distinct levels in the ring, sorted

	// search
	searching   bool
	searchInput string
	searchRegex *regexp.Regexp
	searchIdx   int
	matches     []int

	// gg detection
	lastGPress time.Time

	// terminal size
	width  int
	height int

	// quit signal
	quitting bool
}

// NewModel creates a browse model over the given ring. initialLevel
// preselects a level filter; follow starts the model tailing the bottom.
func NewModel(ring *buffers.EntryRing, path, initialLevel string, follow bool) Model {
	m := Model{
		ring:   ring,
		path:   path,
		level:  strings.ToUpper(initialLevel),
		follow: follow,
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// Init starts the tick timer.
func (m Model) Init() tea.Cmd {
	return browseTickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case browseTickMsg:
		if m.ring.Version() != m.ringVersion {
			m.refresh()
		}
		return m, browseTickCmd()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.follow = false
		m.scrollOff = clamp(m.scrollOff+1, 0, m.maxScroll())

	case "k", "up":
		m.follow = false
		m.scrollOff = clamp(m.scrollOff-1, 0, m.maxScroll())

	case "d":
		m.follow = false
		half := m.logPaneHeight() / 2
		m.scrollOff = clamp(m.scrollOff+half, 0, m.maxScroll())

	case "u":
		m.follow = false
		half := m.logPaneHeight() / 2
		m.scrollOff = clamp(m.scrollOff-half, 0, m.maxScroll())

	case "G":
		m.follow = true
		m.scrollToBottom()

	case "g":
		now := time.Now()
		if now.Sub(m.lastGPress) < 500*time.Millisecond {
			m.follow = false
			m.scrollOff = 0
			m.lastGPress = time.Time{}
		} else {
			m.lastGPress = now
		}

	case "f":
		m.follow = !m.follow
		if m.follow {
			m.scrollToBottom()
		}

	case "l":
		m.cycleLevel()

	case "/":
		m.searching = true
		m.searchInput = ""

	case "n":
		m.nextMatch(1)

	case "N":
		m.nextMatch(-1)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		re, err := regexp.Compile(m.searchInput)
		if err == nil {
			m.searchRegex = re
			m.updateSearchMatches()
			m.searchIdx = 0
			if len(m.matches) > 0 {
				m.follow = false
				m.scrollOff = clamp(m.matches[0]-m.logPaneHeight()/2, 0, m.maxScroll())
			}
		}

	case "esc":
		m.searching = false
		m.searchInput = ""
		m.searchRegex = nil
		m.matches = nil

	case "backspace":
		if len(m.searchInput) > 0 {
			m.searchInput = m.searchInput[:len(m.searchInput)-1]
		}

	default:
		if len(msg.String()) == 1 {
			m.searchInput += msg.String()
		}
	}

	return m, nil
}

// refresh re-reads the ring and rebuilds the filtered view.
func (m *Model) refresh() {
	m.all = m.ring.Snapshot()
	m.ringVersion = m.ring.Version()

	seen := make(map[string]bool, 4)
	for _, e := range m.all {
		seen[strings.ToUpper(e.Level)] = true
	}
	m.levels = m.levels[:0]
	for lv := range seen {
		m.levels = append(m.levels, lv)
	}
	sort.Strings(m.levels)

	m.rebuildLines()
	if m.follow {
		m.scrollToBottom()
	}
}

// rebuildLines applies the level filter and refreshes search matches.
func (m *Model) rebuildLines() {
	if m.level == "" {
		m.lines = m.all
	} else {
		m.lines = nil
		for _, e := range m.all {
			if strings.EqualFold(e.Level, m.level) {
				m.lines = append(m.lines, e)
			}
		}
	}
	m.scrollOff = clamp(m.scrollOff, 0, m.maxScroll())
	m.updateSearchMatches()
}

// cycleLevel steps through the levels present in the ring: all entries,
// then each level in sorted order, then back to all.
func (m *Model) cycleLevel() {
	if len(m.levels) == 0 {
		m.level = ""
		return
	}
	next := 0
	if m.level != "" {
		for i, lv := range m.levels {
			if lv == m.level {
				next = i + 1
				break
			}
		}
	}
	if next >= len(m.levels) {
		m.level = ""
	} else {
		m.level = m.levels[next]
	}
	m.rebuildLines()
	if m.follow {
		m.scrollToBottom()
	}
}

func (m *Model) updateSearchMatches() {
	m.matches = nil
	if m.searchRegex == nil {
		return
	}
	for i, entry := range m.lines {
		if m.searchRegex.MatchString(entry.Message) {
			m.matches = append(m.matches, i)
		}
	}
}

func (m *Model) nextMatch(dir int) {
	if len(m.matches) == 0 {
		return
	}
	m.searchIdx = (m.searchIdx + dir + len(m.matches)) % len(m.matches)
	target := m.matches[m.searchIdx]
	m.follow = false
	m.scrollOff = clamp(target-m.logPaneHeight()/2, 0, m.maxScroll())
}

func (m *Model) scrollToBottom() {
	m.scrollOff = m.maxScroll()
}

func (m Model) logPaneHeight() int {
	// header(1) + blank(1) + separator(1) + status(1) = 4 lines overhead
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) maxScroll() int {
	max := len(m.lines) - m.logPaneHeight()
	if max < 0 {
		return 0
	}
	return max
}

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// header
	count := fmt.Sprintf("%d entries", len(m.all))
	if m.level != "" {
		count = fmt.Sprintf("%d/%d entries", len(m.lines), len(m.all))
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("logshelf browse | %s | %s", m.path, count)))
	b.WriteString("\n\n")

	// separator
	b.WriteString(sepStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// log pane
	paneH := m.logPaneHeight()
	end := m.scrollOff + paneH
	if end > len(m.lines) {
		end = len(m.lines)
	}
	start := m.scrollOff
	if start < 0 {
		start = 0
	}

	matchSet := make(map[int]bool, len(m.matches))
	for _, idx := range m.matches {
		matchSet[idx] = true
	}

	for i := start; i < end; i++ {
		entry := m.lines[i]
		line := entry.String()
		if len(line) > m.width {
			line = line[:m.width]
		}

		if matchSet[i] {
			b.WriteString(matchStyle.Render(line))
		} else {
			b.WriteString(levelStyle(entry.Level).Render(line))
		}
		b.WriteString("\n")
	}

	// pad remaining lines
	for i := end - start; i < paneH; i++ {
		b.WriteString("\n")
	}

	// status bar
	var status strings.Builder
	if m.searching {
		status.WriteString(searchBadge.Render(fmt.Sprintf("/%s", m.searchInput)))
	} else if m.searchRegex != nil {
		status.WriteString(searchBadge.Render(fmt.Sprintf("[%d/%d] /%s", m.searchIdx+1, len(m.matches), m.searchRegex.String())))
	}
	if m.level != "" {
		if status.Len() > 0 {
			status.WriteString(" ")
		}
		status.WriteString(levelBadge.Render("LEVEL: " + m.level))
	}
	if m.follow {
		if status.Len() > 0 {
			status.WriteString(" ")
		}
		status.WriteString(followBadge.Render("FOLLOW"))
	}
	if status.Len() > 0 {
		b.WriteString(padLeft(status.String(), m.width))
	}

	return b.String()
}

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "ERROR", "FATAL":
		return errorLineStyle
	case "WARNING", "WARN":
		return warnLineStyle
	case "DEBUG", "TRACE":
		return faintLineStyle
	default:
		return logLineStyle
	}
}

// styles
var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	sepStyle       = lipgloss.NewStyle().Faint(true)
	logLineStyle   = lipgloss.NewStyle()
	errorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faintLineStyle = lipgloss.NewStyle().Faint(true)
	matchStyle     = lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0"))
	searchBadge    = lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	levelBadge     = lipgloss.NewStyle().Background(lipgloss.Color("33")).Foreground(lipgloss.Color("15")).Padding(0, 1)
	followBadge    = lipgloss.NewStyle().Background(lipgloss.Color("34")).Foreground(lipgloss.Color("15")).Padding(0, 1)
)

// helpers

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func padLeft(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}
	return strings.Repeat(" ", w-n) + s
}
