package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/journal"
	"github.com/logshelf/logshelf/internal/redact"
	"github.com/logshelf/logshelf/internal/shell"
)

// fileFlag is the persistent --file override for the journal path.
var fileFlag string

// remoteTimeout bounds a single push or pull against object storage.
const remoteTimeout = 60 * time.Second

// journalPath resolves the journal file: --file flag, then config and
// environment (config.Load folds LOGSHELF_FILE in), then logs.txt.
func journalPath() string {
	if fileFlag != "" {
		return fileFlag
	}
	if cfg != nil && cfg.Journal.File != "" {
		return cfg.Journal.File
	}
	return journal.DefaultFile
}

// recentCount resolves the default count for the recent view.
func recentCount() int {
	if cfg != nil && cfg.Journal.Recent > 0 {
		return cfg.Journal.Recent
	}
	return shell.DefaultRecent
}

// remoteURL resolves the object storage URL from the positional argument
// or the configured backup remote.
func remoteURL(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg != nil && cfg.Backup.Remote != "" {
		return cfg.Backup.Remote, nil
	}
	return "", cli.NewUsageError("remote URL required (or set backup.remote in config)")
}

// loadStore reads the journal at path into a fresh store. A missing file
// yields an empty store.
func loadStore(path string) (*journal.Store, error) {
	store := journal.New()
	if err := store.Load(path); err != nil {
		return nil, cli.NewIOError(err.Error())
	}
	return store, nil
}

// saveStore writes the store back to path.
func saveStore(store *journal.Store, path string) error {
	if err := store.Save(path); err != nil {
		return cli.NewIOError(err.Error())
	}
	return nil
}

// newRedactor builds the configured redactor, or nil when redaction is off.
func newRedactor() (*redact.Redactor, error) {
	if cfg == nil || !cfg.Redact.Enabled {
		return nil, nil
	}
	r, err := redact.NewRedactor(nil)
	if err != nil {
		return nil, err
	}
	if cfg.Redact.PatternsFile != "" {
		if err := r.LoadCustomPatterns(cfg.Redact.PatternsFile); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// printEntries writes entries one per line, matching the interactive view.
func printEntries(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(no entries)")
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
}

// applyConfigDefaults sets flag values from config when the flag was not
// explicitly set on the command line. Flags > env > config > defaults.
// The config package already handles env > config, so we just need to
// check if the flag was changed and apply config if not.
func applyConfigDefaults(cmd *cobra.Command) {
	if cfg == nil {
		return
	}

	setDefault := func(name, value string) {
		if value != "" && !cmd.Flags().Changed(name) {
			if f := cmd.Flags().Lookup(name); f != nil {
				_ = f.Value.Set(value)
			}
		}
	}

	// serve defaults
	setDefault("listen", cfg.Serve.Listen)
	setDefault("audit-log", cfg.Serve.AuditLog)
}
