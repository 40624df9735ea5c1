package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AlertRule defines a threshold alert evaluated against journal snapshots.
type AlertRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"` // entries_total, add_rate, level_count
	Level     string  `yaml:"level"`  // level_count only, matched ignoring case
	Op        string  `yaml:"op"`     // gt, lt, gte, lte
	Threshold float64 `yaml:"threshold"`
	Detail    string  `yaml:"detail"`
}

// AlertRulesFile is the YAML structure for alert rules.
type AlertRulesFile struct {
	Rules []AlertRule `yaml:"rules"`
}

// AlertEngine evaluates alert rules against journal snapshots and fires
// webhook events when thresholds are crossed.
type AlertEngine struct {
	rules      []AlertRule
	dispatcher *WebhookDispatcher
	lastSnap   *Snapshot
	fired      map[string]bool // per-rule dedup (hysteresis)
}

// NewAlertEngine creates an engine with the given rules and webhook dispatcher.
func NewAlertEngine(rules []AlertRule, dispatcher *WebhookDispatcher) *AlertEngine {
	return &AlertEngine{
		rules:      rules,
		dispatcher: dispatcher,
		fired:      make(map[string]bool),
	}
}

// LoadAlertRules loads alert rules from a YAML file.
func LoadAlertRules(path string) ([]AlertRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert rules: %w", err)
	}
	var f AlertRulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alert rules: %w", err)
	}
	for _, r := range f.Rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
	}
	return f.Rules, nil
}

func validateRule(r AlertRule) error {
	switch r.Metric {
	case "entries_total", "add_rate":
	case "level_count":
		if r.Level == "" {
			return fmt.Errorf("alert rule %q: level_count needs a level", r.Name)
		}
	default:
		return fmt.Errorf("unknown alert metric: %s", r.Metric)
	}
	switch r.Op {
	case "gt", "lt", "gte", "lte":
	default:
		return fmt.Errorf("unknown alert operator: %s", r.Op)
	}
	if r.Name == "" {
		return fmt.Errorf("alert rule missing name")
	}
	return nil
}

// Evaluate checks all rules against the current snapshot. Call this every
// tick (e.g. 1s). add_rate is the delta of accepted entries between the
// current and previous snapshots. Rules fire with hysteresis: once fired,
// a rule won't re-fire until its condition resolves.
func (e *AlertEngine) Evaluate(snap Snapshot) {
	var addRate float64
	if e.lastSnap != nil {
		addRate = float64(snap.Added - e.lastSnap.Added)
		if addRate < 0 {
			addRate = 0
		}
	}

	for _, rule := range e.rules {
		var val float64
		switch rule.Metric {
		case "entries_total":
			val = float64(snap.Total)
		case "add_rate":
			val = addRate
		case "level_count":
			// level buckets are case-sensitive; the rule matches them all
			var n int
			for level, count := range snap.Levels {
				if strings.EqualFold(level, rule.Level) {
					n += count
				}
			}
			val = float64(n)
		}

		triggered := compare(val, rule.Op, rule.Threshold)
		if triggered && !e.fired[rule.Name] {
			e.fired[rule.Name] = true
			detail := rule.Detail
			if detail == "" {
				detail = rule.Name
			}
			e.dispatcher.Fire(WebhookEvent{
				Event:     "alert",
				Timestamp: time.Now(),
				Detail:    detail,
			})
		} else if !triggered && e.fired[rule.Name] {
			e.fired[rule.Name] = false
		}
	}

	snapCopy := snap
	e.lastSnap = &snapCopy
}

// Fired returns the names of rules currently in the fired state.
func (e *AlertEngine) Fired() []string {
	var names []string
	for name, f := range e.fired {
		if f {
			names = append(names, name)
		}
	}
	return names
}

func compare(val float64, op string, threshold float64) bool {
	switch op {
	case "gt":
		return val > threshold
	case "lt":
		return val < threshold
	case "gte":
		return val >= threshold
	case "lte":
		return val <= threshold
	}
	return false
}
