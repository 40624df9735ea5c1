package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/journal"
	"github.com/logshelf/logshelf/internal/shell"
)

// runShell starts the interactive menu over the configured journal. The
// shell owns load and save; this just wires the line editor in.
func runShell(out io.Writer) error {
	redactor, err := newRedactor()
	if err != nil {
		return err
	}
	var redactFn func(string) string
	if redactor != nil {
		redactFn = redactor.Redact
	}

	in := newLinerReader()
	defer in.Close()

	recent := 0
	if cfg != nil {
		recent = cfg.Journal.Recent
	}

	sh := shell.New(journal.New(), journalPath(), in, out, shell.Options{
		Recent: recent,
		Redact: redactFn,
	})
	if err := sh.Run(); err != nil {
		return cli.NewIOError(err.Error())
	}
	return nil
}

// linerReader adapts the liner editor to shell.LineReader, persisting
// prompt history under ~/.logshelf.
type linerReader struct {
	state   *liner.State
	history string
}

func newLinerReader() *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)

	r := &linerReader{state: st}
	if home, err := os.UserHomeDir(); err == nil {
		r.history = filepath.Join(home, ".logshelf", "history")
		if f, err := os.Open(r.history); err == nil {
			_, _ = st.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

// ReadLine reads one line. Ctrl+C reads as end of input so the shell
// saves and exits instead of dropping the session.
func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close writes history back and restores the terminal state.
func (r *linerReader) Close() {
	if r.history != "" {
		if err := os.MkdirAll(filepath.Dir(r.history), 0o755); err == nil {
			if f, err := os.Create(r.history); err == nil {
				_, _ = r.state.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	_ = r.state.Close()
}
