package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logshelf/logshelf/internal/buffers"
	"github.com/logshelf/logshelf/internal/journal"
)

func newTestModel() Model {
	ring := buffers.NewEntryRing(100)
	m := NewModel(ring, "logs.txt", "", false)
	m.width = 120
	m.height = 30
	return m
}

func sendKey(m Model, key string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return updated.(Model)
}

func sendSpecialKey(m Model, key tea.KeyType) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model)
}

func applyTick(m Model) Model {
	updated, _ := m.Update(browseTickMsg(time.Now()))
	return updated.(Model)
}

func feedEntries(m *Model, n int) {
	for i := 0; i < n; i++ {
		m.ring.Push(journal.Entry{
			Timestamp: "2024-01-15 10:00:00",
			Level:     "INFO",
			Message:   "line",
		})
	}
	// simulate tick to pick up ring changes
	*m = applyTick(*m)
}

func TestBrowseInitialState(t *testing.T) {
	m := newTestModel()
	if m.follow {
		t.Error("expected follow off by default")
	}
	if m.searching {
		t.Error("expected not searching initially")
	}
	if m.quitting {
		t.Error("expected not quitting initially")
	}
}

func TestBrowseFollowFlag(t *testing.T) {
	ring := buffers.NewEntryRing(10)
	m := NewModel(ring, "logs.txt", "", true)
	if !m.follow {
		t.Error("expected follow on when requested")
	}
}

func TestBrowseInitialEntriesVisible(t *testing.T) {
	ring := buffers.NewEntryRing(10)
	ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: "INFO", Message: "preloaded"})
	m := NewModel(ring, "logs.txt", "", false)
	if len(m.lines) != 1 {
		t.Fatalf("lines = %d, want 1 (constructor should snapshot the ring)", len(m.lines))
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestModel()
	m = sendKey(m, "q")
	if !m.quitting {
		t.Error("expected quitting after 'q'")
	}
}

func TestBrowseCtrlCQuit(t *testing.T) {
	m := newTestModel()
	m = sendSpecialKey(m, tea.KeyCtrlC)
	if !m.quitting {
		t.Error("expected quitting after ctrl+c")
	}
}

func TestBrowseScrollDown(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = 0
	m.follow = false

	m = sendKey(m, "j")
	if m.scrollOff != 1 {
		t.Errorf("scrollOff = %d, want 1", m.scrollOff)
	}
	if m.follow {
		t.Error("follow should be disabled on scroll")
	}
}

func TestBrowseScrollUp(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = 5
	m.follow = false

	m = sendKey(m, "k")
	if m.scrollOff != 4 {
		t.Errorf("scrollOff = %d, want 4", m.scrollOff)
	}
}

func TestBrowseHalfPageDown(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = 0
	m.follow = false

	m = sendKey(m, "d")
	half := m.logPaneHeight() / 2
	if m.scrollOff != half {
		t.Errorf("scrollOff = %d, want %d", m.scrollOff, half)
	}
}

func TestBrowseHalfPageUp(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = 20
	m.follow = false

	m = sendKey(m, "u")
	half := m.logPaneHeight() / 2
	expected := 20 - half
	if m.scrollOff != expected {
		t.Errorf("scrollOff = %d, want %d", m.scrollOff, expected)
	}
}

func TestBrowseJumpToBottom(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = 0
	m.follow = false

	m = sendKey(m, "G")
	if !m.follow {
		t.Error("expected follow after G")
	}
	if m.scrollOff != m.maxScroll() {
		t.Errorf("scrollOff = %d, want %d", m.scrollOff, m.maxScroll())
	}
}

func TestBrowseJumpToTop(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = m.maxScroll()

	// double g within the window jumps to top
	m = sendKey(m, "g")
	m = sendKey(m, "g")
	if m.scrollOff != 0 {
		t.Errorf("scrollOff = %d, want 0 after gg", m.scrollOff)
	}
}

func TestBrowseToggleFollow(t *testing.T) {
	m := newTestModel()
	m.follow = true

	m = sendKey(m, "f")
	if m.follow {
		t.Error("expected follow off after toggle")
	}

	m = sendKey(m, "f")
	if !m.follow {
		t.Error("expected follow on after second toggle")
	}
}

func TestBrowseSearchMode(t *testing.T) {
	m := newTestModel()

	m = sendKey(m, "/")
	if !m.searching {
		t.Error("expected searching after '/'")
	}

	// type search term
	for _, c := range "hello" {
		m = sendKey(m, string(c))
	}
	if m.searchInput != "hello" {
		t.Errorf("searchInput = %q, want %q", m.searchInput, "hello")
	}

	// backspace
	m = sendSpecialKey(m, tea.KeyBackspace)
	if m.searchInput != "hell" {
		t.Errorf("searchInput = %q after backspace, want %q", m.searchInput, "hell")
	}
}

func TestBrowseSearchEscape(t *testing.T) {
	m := newTestModel()
	m = sendKey(m, "/")
	m = sendKey(m, "a")

	m = sendSpecialKey(m, tea.KeyEscape)
	if m.searching {
		t.Error("expected not searching after Esc")
	}
	if m.searchRegex != nil {
		t.Error("expected nil searchRegex after Esc")
	}
}

func TestBrowseSearchEnterAndNav(t *testing.T) {
	m := newTestModel()
	for i := 0; i < 30; i++ {
		msg := "normal line"
		if i == 5 || i == 15 || i == 25 {
			msg = "MATCH here"
		}
		m.ring.Push(journal.Entry{
			Timestamp: "2024-01-15 10:00:00",
			Level:     "INFO",
			Message:   msg,
		})
	}
	m = applyTick(m)

	m = sendKey(m, "/")
	for _, c := range "MATCH" {
		m = sendKey(m, string(c))
	}
	m = sendSpecialKey(m, tea.KeyEnter)

	if m.searchRegex == nil {
		t.Fatal("expected searchRegex after enter")
	}
	if len(m.matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(m.matches))
	}

	// navigate forward
	m = sendKey(m, "n")
	if m.searchIdx != 1 {
		t.Errorf("searchIdx = %d, want 1", m.searchIdx)
	}

	// navigate backward
	m = sendKey(m, "N")
	if m.searchIdx != 0 {
		t.Errorf("searchIdx = %d, want 0", m.searchIdx)
	}

	// wrap around backward
	m = sendKey(m, "N")
	if m.searchIdx != 2 {
		t.Errorf("searchIdx = %d, want 2 (wrap)", m.searchIdx)
	}
}

func TestBrowseLevelCycle(t *testing.T) {
	m := newTestModel()
	levels := []string{"INFO", "ERROR", "WARNING", "INFO"}
	for _, lv := range levels {
		m.ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: lv, Message: "m"})
	}
	m = applyTick(m)

	if len(m.lines) != 4 {
		t.Fatalf("unfiltered lines = %d, want 4", len(m.lines))
	}

	// sorted distinct levels: ERROR, INFO, WARNING
	m = sendKey(m, "l")
	if m.level != "ERROR" {
		t.Fatalf("level = %q, want ERROR", m.level)
	}
	if len(m.lines) != 1 {
		t.Errorf("lines = %d, want 1", len(m.lines))
	}

	m = sendKey(m, "l")
	if m.level != "INFO" {
		t.Fatalf("level = %q, want INFO", m.level)
	}
	if len(m.lines) != 2 {
		t.Errorf("lines = %d, want 2", len(m.lines))
	}

	m = sendKey(m, "l")
	if m.level != "WARNING" {
		t.Fatalf("level = %q, want WARNING", m.level)
	}

	// wraps back to all
	m = sendKey(m, "l")
	if m.level != "" {
		t.Fatalf("level = %q, want all after wrap", m.level)
	}
	if len(m.lines) != 4 {
		t.Errorf("lines = %d, want 4", len(m.lines))
	}
}

func TestBrowseInitialLevelFilter(t *testing.T) {
	ring := buffers.NewEntryRing(10)
	ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: "INFO", Message: "a"})
	ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:01", Level: "error", Message: "b"})
	m := NewModel(ring, "logs.txt", "error", false)

	if len(m.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(m.lines))
	}
	if m.lines[0].Message != "b" {
		t.Errorf("message = %q, want b", m.lines[0].Message)
	}
}

func TestBrowseFollowAutoScrolls(t *testing.T) {
	m := newTestModel()
	m.follow = true
	feedEntries(&m, 50)

	if m.scrollOff != m.maxScroll() {
		t.Errorf("scrollOff = %d, want %d (auto-scroll)", m.scrollOff, m.maxScroll())
	}
}

func TestBrowseTickPicksUpNewEntries(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 3)
	if len(m.lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(m.lines))
	}

	m.ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: "INFO", Message: "late"})
	m = applyTick(m)
	if len(m.lines) != 4 {
		t.Errorf("lines = %d, want 4 after tick", len(m.lines))
	}
}

func TestBrowseScrollClampAtZero(t *testing.T) {
	m := newTestModel()
	m.scrollOff = 0
	m.follow = false

	m = sendKey(m, "k")
	if m.scrollOff != 0 {
		t.Errorf("scrollOff = %d, want 0 (clamped)", m.scrollOff)
	}
}

func TestBrowseScrollClampAtMax(t *testing.T) {
	m := newTestModel()
	feedEntries(&m, 50)
	m.scrollOff = m.maxScroll()
	m.follow = false

	m = sendKey(m, "j")
	if m.scrollOff != m.maxScroll() {
		t.Errorf("scrollOff = %d, want %d (clamped)", m.scrollOff, m.maxScroll())
	}
}

func TestBrowseViewRenders(t *testing.T) {
	m := newTestModel()
	m.ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: "ERROR", Message: "disk failure"})
	m = applyTick(m)

	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}
	if !strings.Contains(view, "logshelf browse") {
		t.Error("expected header in view")
	}
	if !strings.Contains(view, "disk failure") {
		t.Error("expected entry message in view")
	}
}

func TestBrowseViewShowsFilterCount(t *testing.T) {
	m := newTestModel()
	m.ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:00", Level: "INFO", Message: "a"})
	m.ring.Push(journal.Entry{Timestamp: "2024-01-15 10:00:01", Level: "ERROR", Message: "b"})
	m = applyTick(m)

	m = sendKey(m, "l") // ERROR
	view := m.View()
	if !strings.Contains(view, "1/2 entries") {
		t.Error("expected filtered count in header")
	}
	if !strings.Contains(view, "LEVEL: ERROR") {
		t.Error("expected level badge in view")
	}
}

func TestBrowseViewQuitting(t *testing.T) {
	m := newTestModel()
	m.quitting = true
	if m.View() != "" {
		t.Error("expected empty view when quitting")
	}
}

func TestBrowseWindowResize(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	m = updated.(Model)
	if m.width != 200 || m.height != 50 {
		t.Errorf("size = %dx%d, want 200x50", m.width, m.height)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
