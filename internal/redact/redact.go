// Package redact scrubs secrets and PII from journal messages before they
// are stored.
package redact

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logshelf/logshelf/internal/luhn"
)

// Pattern defines a named PII pattern with its compiled regex.
type Pattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	re          *regexp.Regexp
	validate    func(string) bool // optional post-match validation (e.g. Luhn)
}

// Redactor holds active patterns and rewrites matching content.
type Redactor struct {
	patterns []Pattern
	onRedact func(pattern string) // optional callback for each redaction hit
}

var builtinPatterns = []Pattern{
	{
		Name:        "credit_card",
		Pattern:     `\b(\d[ -]*?){13,19}\b`,
		Replacement: "[REDACTED:cc]",
	},
	{
		Name:        "email",
		Pattern:     `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`,
		Replacement: "[REDACTED:email]",
	},
	{
		Name:        "jwt",
		Pattern:     `eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`,
		Replacement: "[REDACTED:jwt]",
	},
	{
		Name:        "bearer",
		Pattern:     `(?i)(?:Bearer\s+|Authorization:\s*Bearer\s+)[A-Za-z0-9_\-.]+`,
		Replacement: "[REDACTED:bearer]",
	},
	{
		Name:        "ip_v4",
		Pattern:     `\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]\d|\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]\d|\d)\b`,
		Replacement: "[REDACTED:ip]",
	},
	{
		Name:        "ssn",
		Pattern:     `\b\d{3}-\d{2}-\d{4}\b`,
		Replacement: "[REDACTED:ssn]",
	},
	{
		Name:        "phone",
		Pattern:     `(?:\+\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`,
		Replacement: "[REDACTED:phone]",
	},
}

// NewRedactor creates a Redactor with the specified patterns enabled.
// If names is empty, all built-in patterns are enabled.
func NewRedactor(names []string) (*Redactor, error) {
	var selected []Pattern
	if len(names) == 0 {
		selected = append(selected, builtinPatterns...)
	} else {
		byName := make(map[string]Pattern)
		for _, p := range builtinPatterns {
			byName[p.Name] = p
		}
		for _, n := range names {
			p, ok := byName[n]
			if !ok {
				return nil, fmt.Errorf("unknown redaction pattern: %s", n)
			}
			selected = append(selected, p)
		}
	}
	return compilePatterns(selected)
}

// LoadCustomPatterns loads additional patterns from a YAML file.
func (r *Redactor) LoadCustomPatterns(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read patterns file: %w", err)
	}
	var customs []Pattern
	if err := yaml.Unmarshal(data, &customs); err != nil {
		return fmt.Errorf("parse patterns file: %w", err)
	}
	compiled, err := compilePatterns(customs)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, compiled.patterns...)
	return nil
}

// SetOnRedact sets a callback invoked for each redaction hit with the
// pattern name.
func (r *Redactor) SetOnRedact(fn func(pattern string)) {
	r.onRedact = fn
}

// Redact replaces all matching secrets in msg with redaction markers.
func (r *Redactor) Redact(msg string) string {
	for _, p := range r.patterns {
		if p.validate != nil {
			name := p.Name
			msg = p.re.ReplaceAllStringFunc(msg, func(match string) string {
				if p.validate(match) {
					if r.onRedact != nil {
						r.onRedact(name)
					}
					return p.Replacement
				}
				return match
			})
		} else {
			before := msg
			msg = p.re.ReplaceAllString(msg, p.Replacement)
			if msg != before && r.onRedact != nil {
				r.onRedact(p.Name)
			}
		}
	}
	return msg
}

// PatternNames returns the names of active patterns.
func (r *Redactor) PatternNames() []string {
	names := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		names[i] = p.Name
	}
	return names
}

func compilePatterns(patterns []Pattern) (*Redactor, error) {
	compiled := make([]Pattern, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %s: %w", p.Name, err)
		}
		compiled[i] = p
		compiled[i].re = re
		if p.Name == "credit_card" {
			compiled[i].validate = cardValid
		}
	}
	return &Redactor{patterns: compiled}, nil
}

// cardValid gates credit_card matches on digit count and the Luhn check,
// so version strings and counters survive.
func cardValid(s string) bool {
	n := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n++
		}
	}
	if n < 13 || n > 19 {
		return false
	}
	return luhn.Validate(s)
}

// ParseFlag parses the --redact flag value. "" means disabled, "true"
// means all built-in patterns, "a,b" means a subset.
func ParseFlag(val string) (enabled bool, names []string) {
	if val == "" {
		return false, nil
	}
	if val == "true" {
		return true, nil
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return true, parts
}
