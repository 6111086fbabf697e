package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

type redactRule struct {
	re   *regexp.Regexp
	repl string
}

// Rules run in order: ids first so the phone rule never bites into a UUID,
// and resident registration numbers before the looser phone rule.
var defaultRedactRules = []redactRule{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b\d{6}-[1-4]\d{6}\b`), "[REDACTED:rrn]"},
	{regexp.MustCompile(`(?:\+\d{1,3}[ .-]?)?\(?\b\d{2,4}\)?[ .-]?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// Redactor scrubs personal data from strings and request headers before
// they are logged.
type Redactor struct {
	rules  []redactRule
	masked map[string]struct{}
}

// NewRedactor returns a Redactor that fully masks Authorization, Cookie,
// Set-Cookie and any extra header names (case-insensitive).
func NewRedactor(maskHeaders ...string) *Redactor {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range maskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	return &Redactor{rules: defaultRedactRules, masked: masked}
}

// String replaces UUIDs, emails, resident registration numbers and phone
// numbers in s.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	for _, rule := range r.rules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}

// Headers flattens h into a loggable map with masked and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}
