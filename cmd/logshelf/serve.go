package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/logshelf/logshelf/internal/cli"
	"github.com/logshelf/logshelf/internal/journal"
	"github.com/logshelf/logshelf/internal/rotate"
	"github.com/logshelf/logshelf/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		listen         string
		auditDir       string
		auditMaxFile   string
		auditMaxDisk   string
		webhookURLs    []string
		webhookEvents  string
		webhookAuth    string
		alertRulesPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal over HTTP",
		Long:  "Expose the journal on an HTTP API with Prometheus metrics, an optional rotated audit trail, webhooks, and alert rules. The journal is saved on shutdown.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(journalPath(), listen, auditDir, auditMaxFile, auditMaxDisk,
				webhookURLs, webhookEvents, webhookAuth, alertRulesPath)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().StringVar(&auditDir, "audit-log", "", "directory for the rotated audit trail")
	cmd.Flags().StringVar(&auditMaxFile, "audit-max-file", "64MB", "max audit segment size before rotation")
	cmd.Flags().StringVar(&auditMaxDisk, "audit-max-disk", "1GB", "max total audit trail size on disk")
	cmd.Flags().StringSliceVar(&webhookURLs, "webhook", nil, "webhook URLs to notify on lifecycle events (repeatable)")
	cmd.Flags().StringVar(&webhookEvents, "webhook-events", "", "comma-separated event filter (server_started,server_stopped,entries_added,journal_cleared,alert)")
	cmd.Flags().StringVar(&webhookAuth, "webhook-auth", "", "webhook auth (bearer:TOKEN or hmac-sha256:SECRET)")
	cmd.Flags().StringVar(&alertRulesPath, "alert-rules", "", "path to alert rules YAML file")

	return cmd
}

func runServe(path, listen, auditDir, auditMaxFileStr, auditMaxDiskStr string, webhookURLs []string, webhookEvents, webhookAuth, alertRulesPath string) error {
	store := journal.New()
	if err := store.Load(path); err != nil {
		return cli.NewIOError(err.Error())
	}

	// config webhook URLs apply only when the CLI provided none
	if len(webhookURLs) == 0 && cfg != nil && len(cfg.Serve.Webhooks) > 0 {
		webhookURLs = cfg.Serve.Webhooks
	}
	var eventFilter []string
	if webhookEvents != "" {
		eventFilter = strings.Split(webhookEvents, ",")
	}
	dispatcher, err := server.NewWebhookDispatcher(webhookURLs, eventFilter, webhookAuth)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}

	// metrics on a private registry so /metrics carries journal metrics only
	reg := prometheus.NewRegistry()
	metrics := server.NewMetrics(reg)
	metrics.JournalEntries.Set(float64(store.Total()))

	srv := server.NewServer(listen, store, path, metrics, reg)
	srv.SetVersion(version)
	srv.SetWebhooks(dispatcher)

	// audit trail
	var rot *rotate.Rotator
	if auditDir != "" {
		maxFile, err := parseByteSize(auditMaxFileStr)
		if err != nil {
			return cli.NewUsageError(fmt.Sprintf("invalid --audit-max-file: %v", err))
		}
		maxDisk, err := parseByteSize(auditMaxDiskStr)
		if err != nil {
			return cli.NewUsageError(fmt.Sprintf("invalid --audit-max-disk: %v", err))
		}
		rot, err = rotate.New(rotate.Config{
			Dir:      auditDir,
			MaxFile:  maxFile,
			MaxDisk:  maxDisk,
			Compress: true,
		})
		if err != nil {
			return cli.NewIOError(fmt.Sprintf("init audit trail: %v", err))
		}
		rot.SetOnRotate(func(reason string) { metrics.AuditRotations.Inc() })
		rot.SetOnError(func() { metrics.AuditRotationErrors.Inc() })
		srv.SetAuditLogger(server.NewAuditLogger(rot))
	}

	// alert engine
	var alertEngine *server.AlertEngine
	if alertRulesPath != "" {
		rules, err := server.LoadAlertRules(alertRulesPath)
		if err != nil {
			return cli.NewUsageError(err.Error())
		}
		alertEngine = server.NewAlertEngine(rules, dispatcher)
	}

	dispatcher.Fire(server.WebhookEvent{Event: "server_started", Journal: path})

	// shutdown performs graceful teardown and the final journal save
	shutdown := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)

		if err := srv.SaveJournal(); err != nil {
			fmt.Fprintf(os.Stderr, "save journal: %v\n", err)
		}
		if rot != nil {
			if err := rot.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "audit close: %v\n", err)
			}
		}

		snap := srv.StatsSnapshot()
		dispatcher.Fire(server.WebhookEvent{
			Event:   "server_stopped",
			Journal: path,
			Stats:   &server.WebhookStats{Total: snap.Total, Levels: snap.Levels},
		})
	}

	// alert evaluation loop
	stopAlerts := make(chan struct{})
	if alertEngine != nil {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					alertEngine.Evaluate(srv.StatsSnapshot())
				case <-stopAlerts:
					return
				}
			}
		}()
	}

	// start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "logshelf serving %s on %s\n", path, listen)

	select {
	case <-sigCh:
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			close(stopAlerts)
			return err
		}
	}

	close(stopAlerts)
	fmt.Fprintln(os.Stderr, "shutting down...")
	shutdown()

	snap := srv.StatsSnapshot()
	fmt.Fprintf(os.Stderr, "done: %d entries saved, %d accepted this session\n", snap.Total, snap.Added)
	return nil
}

var byteSizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(KB|MB|GB|TB|B)?$`)

func parseByteSize(s string) (int64, error) {
	m := byteSizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	unit := strings.ToUpper(m[2])
	switch unit {
	case "TB":
		val *= 1 << 40
	case "GB":
		val *= 1 << 30
	case "MB":
		val *= 1 << 20
	case "KB":
		val *= 1 << 10
	case "B", "":
		// bytes
	}
	return int64(val), nil
}
