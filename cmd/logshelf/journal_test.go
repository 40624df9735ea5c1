package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logshelf/logshelf/internal/config"
)

func TestRunAdd_AppendsAndSaves(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = nil

	path := filepath.Join(t.TempDir(), "logs.txt")

	var buf bytes.Buffer
	if err := runAdd(&buf, path, "info", "service started"); err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if got := buf.String(); got != "Entry added.\n" {
		t.Errorf("output = %q, want %q", got, "Entry added.\n")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	line := strings.TrimSpace(string(data))
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		t.Fatalf("journal line = %q, want 3 fields", line)
	}
	if parts[1] != "INFO" {
		t.Errorf("level = %q, want INFO", parts[1])
	}
	if parts[2] != "service started" {
		t.Errorf("message = %q, want service started", parts[2])
	}
}

func TestRunAdd_KeepsExistingEntries(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = nil

	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path, "2026-01-02 15:04:05|ERROR|disk full")

	var buf bytes.Buffer
	if err := runAdd(&buf, path, "INFO", "recovered"); err != nil {
		t.Fatalf("runAdd: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "2026-01-02 15:04:05|ERROR|disk full" {
		t.Errorf("first line changed: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "|INFO|recovered") {
		t.Errorf("second line = %q, want |INFO|recovered suffix", lines[1])
	}
}

func TestRunAdd_Redacts(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{}
	cfg.Redact.Enabled = true

	path := filepath.Join(t.TempDir(), "logs.txt")

	var buf bytes.Buffer
	if err := runAdd(&buf, path, "warning", "login failed for alice@example.com"); err != nil {
		t.Fatalf("runAdd: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[REDACTED:email]") {
		t.Errorf("expected redacted email, got %q", data)
	}
	if strings.Contains(string(data), "alice@example.com") {
		t.Error("raw email leaked into the journal")
	}
}

func TestRunList_PrintsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|service started",
		"2026-01-02 15:04:06|ERROR|disk full",
	)

	var buf bytes.Buffer
	if err := runList(&buf, path); err != nil {
		t.Fatalf("runList: %v", err)
	}
	want := "[2026-01-02 15:04:05] INFO - service started\n" +
		"[2026-01-02 15:04:06] ERROR - disk full\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRunList_MissingJournal(t *testing.T) {
	var buf bytes.Buffer
	if err := runList(&buf, filepath.Join(t.TempDir(), "missing.txt")); err != nil {
		t.Fatalf("runList: %v", err)
	}
	if buf.String() != "(no entries)\n" {
		t.Errorf("output = %q, want (no entries)", buf.String())
	}
}

func TestRunList_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|ok",
		"not a journal line",
		"2026-01-02 15:04:06|WARNING|low disk",
	)

	var buf bytes.Buffer
	if err := runList(&buf, path); err != nil {
		t.Fatalf("runList: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "not a journal line") {
		t.Error("malformed line leaked into output")
	}
	if !strings.Contains(out, "INFO - ok") || !strings.Contains(out, "WARNING - low disk") {
		t.Errorf("missing valid entries in output: %q", out)
	}
}

func TestRunFilter_CaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|service started",
		"2026-01-02 15:04:06|ERROR|disk full",
		"2026-01-02 15:04:07|INFO|retry scheduled",
	)

	var buf bytes.Buffer
	if err := runFilter(&buf, path, "error"); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	if got := buf.String(); got != "[2026-01-02 15:04:06] ERROR - disk full\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunFilter_NoMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path, "2026-01-02 15:04:05|INFO|service started")

	var buf bytes.Buffer
	if err := runFilter(&buf, path, "FATAL"); err != nil {
		t.Fatalf("runFilter: %v", err)
	}
	if buf.String() != "(no entries)\n" {
		t.Errorf("output = %q, want (no entries)", buf.String())
	}
}

func TestRunSearch_CaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|Disk usage at 40%",
		"2026-01-02 15:04:06|ERROR|disk full",
		"2026-01-02 15:04:07|INFO|network flap",
	)

	var buf bytes.Buffer
	if err := runSearch(&buf, path, "DISK"); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Disk usage at 40%") || !strings.Contains(out, "disk full") {
		t.Errorf("missing matches: %q", out)
	}
	if strings.Contains(out, "network flap") {
		t.Errorf("unexpected match: %q", out)
	}
}

func TestRunStats_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|one",
		"2026-01-02 15:04:06|ERROR|two",
		"2026-01-02 15:04:07|INFO|three",
	)

	var buf bytes.Buffer
	if err := runStats(&buf, path, false); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	want := "Total: 3\n  ERROR: 1\n  INFO: 2\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRunStats_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|one",
		"2026-01-02 15:04:06|ERROR|two",
	)

	var buf bytes.Buffer
	if err := runStats(&buf, path, true); err != nil {
		t.Fatalf("runStats: %v", err)
	}

	var got struct {
		Total  int            `json:"total"`
		Levels map[string]int `json:"levels"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Total != 2 {
		t.Errorf("total = %d, want 2", got.Total)
	}
	if got.Levels["INFO"] != 1 || got.Levels["ERROR"] != 1 {
		t.Errorf("levels = %v", got.Levels)
	}
}

func TestRunRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|one",
		"2026-01-02 15:04:06|INFO|two",
		"2026-01-02 15:04:07|INFO|three",
	)

	var buf bytes.Buffer
	if err := runRecent(&buf, path, 2); err != nil {
		t.Fatalf("runRecent: %v", err)
	}
	want := "[2026-01-02 15:04:06] INFO - two\n" +
		"[2026-01-02 15:04:07] INFO - three\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRunRecent_CountExceedsTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path, "2026-01-02 15:04:05|INFO|only one")

	var buf bytes.Buffer
	if err := runRecent(&buf, path, 50); err != nil {
		t.Fatalf("runRecent: %v", err)
	}
	if buf.String() != "[2026-01-02 15:04:05] INFO - only one\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|one",
		"2026-01-02 15:04:06|INFO|two",
		"2026-01-02 15:04:07|INFO|three",
	)

	var buf bytes.Buffer
	if err := runClear(&buf, path); err != nil {
		t.Fatalf("runClear: %v", err)
	}
	if buf.String() != "Journal cleared (3 entries dropped).\n" {
		t.Errorf("output = %q", buf.String())
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("cleared journal should still exist: %v", err)
	}
	if fi.Size() != 0 {
		t.Errorf("cleared journal size = %d, want 0", fi.Size())
	}
}

func TestRunMerge(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	src1 := filepath.Join(dir, "src1.txt")
	src2 := filepath.Join(dir, "src2.txt")
	out := filepath.Join(dir, "merged.txt")

	writeJournalFile(t, base,
		"2026-01-02 15:04:05|INFO|base one",
		"2026-01-02 15:04:06|INFO|base two",
	)
	writeJournalFile(t, src1, "2026-01-02 15:04:07|ERROR|src1 entry")
	writeJournalFile(t, src2, "2026-01-02 15:04:08|WARNING|src2 entry")

	var buf bytes.Buffer
	if err := runMerge(&buf, base, []string{src1, src2}, out); err != nil {
		t.Fatalf("runMerge: %v", err)
	}
	if !strings.Contains(buf.String(), "Merged: 2 sources") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "(4 entries)") {
		t.Errorf("output = %q, want 4 entries", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("merged journal has %d lines, want 4", len(lines))
	}
	// base entries first, then sources in argument order
	if !strings.HasSuffix(lines[0], "base one") ||
		!strings.HasSuffix(lines[2], "src1 entry") ||
		!strings.HasSuffix(lines[3], "src2 entry") {
		t.Errorf("unexpected merge order: %v", lines)
	}

	// base stays untouched when writing elsewhere
	baseData, err := os.ReadFile(base)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Split(strings.TrimSpace(string(baseData)), "\n")); got != 2 {
		t.Errorf("base journal has %d lines, want 2", got)
	}
}

func TestRunMerge_DropsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	src := filepath.Join(dir, "src.txt")
	out := filepath.Join(dir, "merged.txt")

	writeJournalFile(t, base, "2026-01-02 15:04:05|INFO|ok")
	writeJournalFile(t, src,
		"garbage line",
		"2026-01-02 15:04:06|ERROR|valid",
	)

	var buf bytes.Buffer
	if err := runMerge(&buf, base, []string{src}, out); err != nil {
		t.Fatalf("runMerge: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "garbage") {
		t.Error("malformed line survived the merge")
	}
	if !strings.Contains(buf.String(), "(2 entries)") {
		t.Errorf("output = %q, want 2 entries", buf.String())
	}
}

func TestRunReport_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|service started",
		"2026-01-02 15:04:06|ERROR|disk full",
	)

	var buf bytes.Buffer
	if err := runReport(&buf, path, 5, false); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Journal: "+path) {
		t.Errorf("missing journal header in report: %q", out)
	}
}

func TestRunReport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	writeJournalFile(t, path,
		"2026-01-02 15:04:05|INFO|one",
		"2026-01-02 15:04:06|ERROR|two",
	)

	var buf bytes.Buffer
	if err := runReport(&buf, path, 5, true); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}
